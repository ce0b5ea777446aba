package main

import (
	"fmt"
	"os"

	"github.com/todostudio/todostudio/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

// osExit is swapped in tests.
var osExit = os.Exit

func main() {
	osExit(runMain(os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}

func runMain(args []string, execute func([]string) error) int {
	if err := execute(args); err != nil {
		fmt.Printf("todostudio: %s\n", err.Error())
		return 1
	}
	return 0
}
