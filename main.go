package main

import (
	"os"

	"github.com/TWRT/join-board/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
