package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/containerbuild/testenv/pkg/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
