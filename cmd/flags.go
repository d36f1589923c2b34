package cmd

import (
	"time"

	"github.com/urfave/cli"
)

var (
	configPath  string
	logLevel    string
	logFormat   string
	minInterval time.Duration
	strictMode  bool
	watchMode   bool
	traceFile   string
)

var evalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "config, c",
		Usage:       "path to the config file (default: knot.yaml if present)",
		Destination: &configPath,
	},
	cli.StringFlag{
		Name:        "log-level, l",
		Usage:       "minimum log level: debug, info, warning or error",
		Destination: &logLevel,
	},
	cli.StringFlag{
		Name:        "log-format",
		Usage:       "log output format: text or json",
		Destination: &logFormat,
	},
	cli.DurationFlag{
		Name:        "min-interval",
		Usage:       "lower bound for setInterval periods",
		Destination: &minInterval,
	},
	cli.BoolFlag{
		Name:        "strict",
		Usage:       "compile every script in strict mode",
		Destination: &strictMode,
	},
	cli.StringFlag{
		Name:        "trace-file",
		Usage:       "append a JSON debug trace of the run to this file",
		Destination: &traceFile,
	},
}

var runFlags = append([]cli.Flag{
	cli.BoolFlag{
		Name:        "watch, w",
		Usage:       "run the script again whenever the file changes",
		Destination: &watchMode,
	},
}, evalFlags...)
