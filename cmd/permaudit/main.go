package main

import (
	"os"

	"github.com/blackwell-systems/permaudit/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		app.ReportError(os.Stdout, os.Stderr, err)
		os.Exit(app.ExitCode(err))
	}
}
