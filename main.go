package main

import (
	"os"

	"github.com/matveld/bms/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
