package main

import (
	"os"

	"pmctrack/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
