package main

import (
	"os"

	"github.com/dshills/aireview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
