package main

import (
	"os"

	"github.com/okhi/okcollect/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
