// Package main provides the entry point for the syncer CLI.
package main

import (
	"errors"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if !ee.reported {
				printError("%v", ee.err)
			}
			os.Exit(ee.code)
		}
		printError("%v", err)
		os.Exit(1)
	}
}
