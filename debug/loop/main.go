// debug/loop is a cli tool to debug the knot event loop.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/warpdl/knot/internal/knot"
	"github.com/warpdl/knot/internal/scheduler"
	"github.com/warpdl/knot/pkg/logger"
)

const HELP = `debug/loop is a cli tool to debug the knot event loop.

Usage:
  debug/loop [command]
  
Commands:
  help    Show this help message and exit.
  run     Run a script with debug logging and print loop counters.
  cron    Print the delay until the next match of a cron expression.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		fmt.Fprintf(stdout, "%s\n", HELP)
		return nil
	}
	switch args[0] {
	case "run":
		if len(args) < 2 {
			return fmt.Errorf("run: missing script path")
		}
		l := logger.NewStandardLogger(log.New(stderr, "", log.Lmicroseconds)).SetLevel(logger.LevelDebug)
		rt, err := knot.NewRuntime(knot.Options{
			Logger: l,
			Stdout: stdout,
			Stderr: stderr,
		})
		if err != nil {
			return err
		}
		start := time.Now()
		err = rt.RunFile(context.Background(), args[1])
		st := rt.Scheduler().Stats()
		fmt.Fprintf(stdout, "elapsed=%s dispatched=%d stale=%d registered=%d queued=%d live=%d\n",
			time.Since(start).Round(time.Millisecond),
			rt.Loop().Dispatched(), rt.Loop().Stale(),
			st.Registered, st.Queued, st.Live,
		)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
	case "cron":
		if len(args) < 2 {
			return fmt.Errorf("cron: missing expression")
		}
		d, err := scheduler.NextCronDelay(args[1], time.Now())
		if err != nil {
			return fmt.Errorf("cron: %w", err)
		}
		fmt.Fprintf(stdout, "next in %s\n", d.Round(time.Second))
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
