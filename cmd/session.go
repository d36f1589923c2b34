package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/warpdl/knot/cmd/common"
	"github.com/warpdl/knot/internal/config"
	"github.com/warpdl/knot/internal/eventloop"
	"github.com/warpdl/knot/internal/knot"
	"github.com/warpdl/knot/pkg/logger"
)

// ErrRunFailed is returned by an action that has already printed why it
// failed. main exits non-zero without printing it again.
var ErrRunFailed = errors.New("run failed")

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// session carries what every run of one command invocation shares.
// Each run gets its own runtime, logger and run id.
type session struct {
	cfg    config.Config
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
}

// newSession resolves the config file and the flag overrides on top of it.
func newSession() (*session, error) {
	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, configPath, configPath != "")
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if minInterval != 0 {
		cfg.MinInterval = config.Duration(minInterval)
	}
	if strictMode {
		cfg.Strict = true
	}
	if traceFile != "" {
		cfg.TraceFile = traceFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &session{cfg: cfg, fs: fs, stdout: stdout, stderr: stderr}, nil
}

func (s *session) newLogger(runID string) logger.Logger {
	if s.cfg.LogFormat == config.FormatJSON {
		return logger.NewZerologLogger(s.stderr, s.cfg.Level(), "run", runID)
	}
	prefix := fmt.Sprintf("knot %s ", runID[:8])
	return logger.NewStandardLogger(
		log.New(s.stderr, prefix, log.LstdFlags|log.Lmsgprefix),
	).SetLevel(s.cfg.Level())
}

// runFile runs the script at path on a fresh runtime. Relative require()
// calls resolve against the script's directory.
func (s *session) runFile(ctx context.Context, path string) error {
	return s.start(ctx, filepath.Dir(path), func(rt *knot.Runtime) error {
		return rt.RunFile(ctx, path)
	})
}

// runSource runs inline source on a fresh runtime rooted at the current
// directory.
func (s *session) runSource(ctx context.Context, source string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	return s.start(ctx, wd, func(rt *knot.Runtime) error {
		return rt.RunSource(ctx, knot.DEF_EVAL_SCRIPT_NAME, source)
	})
}

func (s *session) start(ctx context.Context, wd string, fn func(*knot.Runtime) error) error {
	runID := uuid.NewString()
	l := s.newLogger(runID)
	if s.cfg.TraceFile != "" {
		f, err := s.fs.OpenFile(s.cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer f.Close()
		l = logger.NewMultiLogger(l, logger.NewZerologLogger(f, logger.LevelDebug, "run", runID))
	}
	defer l.Close()

	rt, err := knot.NewRuntime(knot.Options{
		Logger:      l,
		Fs:          s.fs,
		WorkDir:     wd,
		Stdout:      s.stdout,
		Stderr:      s.stderr,
		MinInterval: s.cfg.MinInterval.Std(),
		Strict:      s.cfg.Strict,
	})
	if err != nil {
		return err
	}
	return s.report(l, fn(rt))
}

// report turns the outcome of a run into the command's error. An
// uncaught script exception prints its diagnostic and fails the run;
// cancellation is a clean stop.
func (s *session) report(l logger.Logger, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		l.Info("Run interrupted: %v", err)
		return nil
	}
	var engErr *eventloop.EngineError
	if errors.As(err, &engErr) {
		fmt.Fprintln(s.stderr, engErr.Diagnostic)
		l.Error("Uncaught exception in %s task %d", engErr.Kind, engErr.TaskID)
		return ErrRunFailed
	}
	return err
}

// fail prints err unless it was already reported and maps it to
// ErrRunFailed.
func fail(ctx *cli.Context, cmd, action string, err error) error {
	if err == nil || errors.Is(err, ErrRunFailed) {
		return err
	}
	common.PrintRuntimeErr(ctx, cmd, action, err)
	return ErrRunFailed
}
