package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Best effort: endpoint addresses usually arrive via the environment,
	// and a .env file is a convenient way to provide them locally.
	_ = godotenv.Load()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
