// Seed inserts the sample tasks. Run from project root: go run ./scripts/seed
// Set SEED_RESET=1 to delete existing tasks first.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/repository"
)

type sample struct {
	title       string
	description string
	completed   bool
}

var samples = []sample{
	{"Complete the todo application", "Build a full-stack todo application with a task API and web UI", false},
	{"Write unit tests", "Add comprehensive test coverage for backend and frontend", false},
	{"Setup Docker deployment", "Create Docker containers for all services", true},
	{"Design the user interface", "Create a clean and modern UI design", true},
	{"Implement API endpoints", "Build RESTful API with proper error handling", false},
}

func main() {
	config.LoadEnvFile(".env")
	cfg := config.Get()

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Store not available:", err)
		os.Exit(1)
	}
	defer closeStore()

	existing, err := store.FindAll(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "List failed:", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		if os.Getenv("SEED_RESET") != "1" {
			fmt.Printf("Store already has %d tasks; set SEED_RESET=1 to replace them\n", len(existing))
			return
		}
		for _, t := range existing {
			if err := store.Delete(ctx, t.ID); err != nil {
				fmt.Fprintln(os.Stderr, "Delete failed:", err)
				os.Exit(1)
			}
		}
	}

	start := time.Now()
	for _, s := range samples {
		desc := s.description
		t, err := store.Insert(ctx, s.title, &desc)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Insert failed:", err)
			os.Exit(1)
		}
		if s.completed {
			if _, err := store.MarkCompleted(ctx, t.ID); err != nil {
				fmt.Fprintln(os.Stderr, "Complete failed:", err)
				os.Exit(1)
			}
		}
	}
	fmt.Printf("Done: %d tasks in %v\n", len(samples), time.Since(start))
}
