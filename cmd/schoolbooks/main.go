package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/schoolbooks-dev/schoolbooks/internal/commands"
)

func main() {
	// A .env file is optional; environment overrides still apply without it.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
