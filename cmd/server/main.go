// Package main implements the entry point for the kotoba server, which
// tracks vocabulary study progress and serves generated quiz questions.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment and defaults cover
	// everything.
	_ = godotenv.Load()

	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
