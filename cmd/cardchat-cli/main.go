package main

import (
	"fmt"
	"os"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
