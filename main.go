package main

import (
	"os"

	"github.com/blogem/contacts/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
