package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/flowsend/aegis/internal/audit"
	"github.com/flowsend/aegis/internal/infra/storage/postgres"
)

// One-shot manual retention sweep, for operators running outside the
// scheduled loop.
func main() {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := postgres.NewDB(ctx, postgres.Config{URL: url})
	if err != nil {
		panic(err)
	}
	defer db.Close()

	sweeper := audit.NewSweeper(postgres.NewAuditRepo(db), nil, 0, nil)
	result, err := sweeper.Cleanup(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Swept audit events: normal=%d admin=%d total=%d\n",
		result.NormalDeleted, result.AdminDeleted, result.TotalDeleted)
}
