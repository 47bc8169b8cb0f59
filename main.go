package main

import (
	"os"

	"github.com/firefly-engineering/repolens/cmd"
	"github.com/firefly-engineering/repolens/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
