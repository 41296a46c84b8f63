package main

import (
	"os"

	"grammarfsa/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
