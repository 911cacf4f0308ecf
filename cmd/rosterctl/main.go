// Command rosterctl browses and edits the employee directory from a
// terminal. It uses the same configuration as the server: with
// DATABASE_URL set it edits the Postgres snapshot, otherwise an in-memory
// copy of the seed data.
package main

import (
	"context"
	"log"
	"os"

	"roster/internal/app/server"
	"roster/internal/console"
	"roster/internal/domain/directory"
	"roster/internal/platform/config"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, pool, err := server.OpenDirectory(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	session := console.New(directory.NewService(store), os.Stdin, os.Stdout)
	if err := session.Run(ctx); err != nil {
		log.Printf("console: %v", err)
	}
}
