package main

import (
	"os"

	"github.com/odyssey-erp/odyssey-books/cmd/booksctl/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
