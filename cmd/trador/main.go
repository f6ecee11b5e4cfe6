package main

import (
	"os"

	"github.com/bogdanmosica/trador/cmd/trador/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
