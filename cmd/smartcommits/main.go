package main

import (
	"os"

	"github.com/dshills/smartcommits/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
