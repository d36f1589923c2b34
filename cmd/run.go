package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli"

	"github.com/warpdl/knot/cmd/common"
)

// signalContext is replaced in tests.
var signalContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func run(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no script provided"))
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return fail(ctx, "run", "resolve_path", err)
	}
	s, err := newSession()
	if err != nil {
		return fail(ctx, "run", "load_config", err)
	}
	sctx, stop := signalContext()
	defer stop()
	if watchMode {
		return fail(ctx, "run", "watch", s.watch(sctx, path))
	}
	return fail(ctx, "run", "execute", s.runFile(sctx, path))
}

func eval(ctx *cli.Context) error {
	source := ctx.Args().First()
	if source == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no source provided"))
	}
	s, err := newSession()
	if err != nil {
		return fail(ctx, "eval", "load_config", err)
	}
	sctx, stop := signalContext()
	defer stop()
	return fail(ctx, "eval", "execute", s.runSource(sctx, source))
}
