package main

import (
	"os"

	"github.com/maastricht-university/asr-bias/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
