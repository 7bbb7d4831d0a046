package main

import (
	"os"

	"github.com/avelar/critique/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
