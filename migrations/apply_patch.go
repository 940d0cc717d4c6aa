// Applies a single SQL migration: go run migrations/apply_patch.go [file]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arikb/bloxs/internal/db"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	file := "migrations/001_settlement_runs.sql"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlFile, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Failed to read sql file: %v\n", err)
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx, string(sqlFile)); err != nil {
		fmt.Printf("Migration %s failed: %v\n", file, err)
		os.Exit(1)
	}
	fmt.Printf("Migration %s applied.\n", file)
}
