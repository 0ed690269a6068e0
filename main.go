package main

import (
	"os"

	"shellgate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
