package main

import (
	"os"

	"Folio/cmd/contact/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
