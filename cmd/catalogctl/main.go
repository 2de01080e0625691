package main

import (
	"os"

	"shop-catalog/cmd/catalogctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
