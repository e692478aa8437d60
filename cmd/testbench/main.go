package main

import (
	"os"

	"github.com/labbench/testbench/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
