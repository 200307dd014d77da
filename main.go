package main

import (
	"os"

	"github.com/abhisek/phraseweaver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
