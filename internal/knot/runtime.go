// Package knot embeds a goja JavaScript runtime driven by the knot event
// loop. A Runtime is the script engine of the loop and exposes the timer
// host functions (setTimeout, setInterval and friends) that register work
// with its scheduler.
package knot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	requirePkg "github.com/dop251/goja_nodejs/require"
	"github.com/spf13/afero"

	"github.com/warpdl/knot/internal/eventloop"
	"github.com/warpdl/knot/internal/scheduler"
	"github.com/warpdl/knot/pkg/logger"
)

type Options struct {
	Logger logger.Logger
	// Fs is where scripts and required modules are read from.
	// Defaults to the OS filesystem.
	Fs afero.Fs
	// WorkDir is the base for relative require() paths.
	WorkDir string
	// Stdout receives Knot.log and console.log output.
	Stdout io.Writer
	// Stderr receives console.warn and console.error output.
	Stderr      io.Writer
	MinInterval time.Duration
	// Strict compiles every script in strict mode.
	Strict bool
}

type Runtime struct {
	*requirePkg.RequireModule
	*goja.Runtime
	l      logger.Logger
	fs     afero.Fs
	wd     string
	stdout io.Writer
	stderr io.Writer
	strict bool

	sched *scheduler.Scheduler
	loop  *eventloop.Loop

	rejections *rejectionTracker
	// imported is an array consisting all the required modules.
	imported []string
}

func NewRuntime(opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	r := &Runtime{
		Runtime:    goja.New(),
		l:          opts.Logger,
		fs:         opts.Fs,
		wd:         opts.WorkDir,
		stdout:     opts.Stdout,
		stderr:     opts.Stderr,
		strict:     opts.Strict,
		rejections: newRejectionTracker(),
		imported:   []string{},
	}
	r.sched = scheduler.New(scheduler.Options{
		MinInterval: opts.MinInterval,
		Logger:      opts.Logger,
	})
	r.loop = eventloop.New(r.sched, r, opts.Logger)

	registry := requirePkg.NewRegistry(requirePkg.WithLoader(r.loadSource))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&printer{
		out: r.stdout,
		err: r.stderr,
	}))
	r.RequireModule = registry.Enable(r.Runtime)
	console.Enable(r.Runtime)
	r.SetPromiseRejectionTracker(r.rejections.track)

	if err := r.Set("require", r.require()); err != nil {
		return nil, err
	}
	if err := r.installHostFunctions(); err != nil {
		return nil, err
	}
	return r, nil
}

// Scheduler returns the scheduler the host functions register work with.
func (r *Runtime) Scheduler() *scheduler.Scheduler {
	return r.sched
}

// Loop returns the event loop driving this runtime.
func (r *Runtime) Loop() *eventloop.Loop {
	return r.loop
}

// Imported lists the modules loaded through require, in load order.
func (r *Runtime) Imported() []string {
	return append([]string(nil), r.imported...)
}

// RunFile reads path from the runtime's filesystem and runs it like
// RunSource.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	b, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return err
	}
	return r.RunSource(ctx, path, string(b))
}

// RunSource queues source as the entry script and runs the event loop
// until no future work can occur. It must be called from the goroutine
// that owns the runtime. When ctx is done the running script is
// interrupted and ctx.Err() is returned.
func (r *Runtime) RunSource(ctx context.Context, name, source string) error {
	stop := context.AfterFunc(ctx, func() {
		r.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		r.ClearInterrupt()
	}()

	r.l.Info("Running %s", name)
	r.sched.ScheduleScript(name, source)
	err := r.loop.Run(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}
	r.l.Debug("Finished %s: dispatched=%d stale=%d", name, r.loop.Dispatched(), r.loop.Stale())
	return nil
}

// loadSource backs require(): module files are read from the runtime's
// filesystem.
func (r *Runtime) loadSource(p string) ([]byte, error) {
	p = filepath.FromSlash(p)
	if fi, err := r.fs.Stat(p); err == nil && fi.IsDir() {
		return nil, requirePkg.ModuleFileDoesNotExistError
	}
	b, err := afero.ReadFile(r.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, requirePkg.ModuleFileDoesNotExistError
		}
		return nil, err
	}
	return b, nil
}

// require resolves relative module names against the working directory
// and passes everything else (native modules) through unchanged.
func (r *Runtime) require() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		modName := call.Argument(0).String()
		modPath := modName
		if strings.HasPrefix(modName, "./") || strings.HasPrefix(modName, "../") {
			modPath = filepath.ToSlash(filepath.Join(r.wd, modName))
		}
		v, err := r.RequireModule.Require(modPath)
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				// the module itself threw; rethrow to the caller
				panic(ex)
			}
			r.l.Warning("require: failed to import module %s: %v", modName, err)
			panic(r.NewGoError(fmt.Errorf("cannot find module '%s'", modName)))
		}
		r.imported = append(r.imported, modName)
		return v
	}
}
