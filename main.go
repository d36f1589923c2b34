package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/warpdl/knot/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
	if err != nil {
		if !errors.Is(err, cmd.ErrRunFailed) {
			fmt.Fprintf(os.Stderr, "knot: %s\n", err.Error())
		}
		os.Exit(1)
	}
}
