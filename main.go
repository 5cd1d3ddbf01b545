package main

import (
	"fmt"
	"os"

	"github.com/temirov/profile_scripts/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main runs the profile-scripts command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
