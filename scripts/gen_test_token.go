package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/config"
	"codeberg.org/iburba/server/internal/storage"
)

func main() {
	email := flag.String("email", "test@iburba.dev", "account email")
	planName := flag.String("plan", "free", "plan for a newly created account")
	flag.Parse()

	plan, err := accounts.ParsePlan(*planName)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open account store: %v", err)
	}
	defer closeStore()

	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize account store: %v", err)
	}

	// create or find test account
	account, err := store.FindByEmail(ctx, *email)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		hash, err := auth.HashPassword("test-password")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		account, err = store.Create(ctx, *email, hash, plan)
		if err != nil {
			log.Fatalf("Failed to create test account: %v", err)
		}
		fmt.Printf("✅ Created test account: %s (ID: %s, plan: %s)\n", account.Email, account.ID, account.Plan)
	case err != nil:
		log.Fatalf("Failed to look up test account: %v", err)
	default:
		fmt.Printf("✅ Using existing test account (ID: %s, plan: %s)\n", account.ID, account.Plan)
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL})
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	token, err := tokens.Generate(account.ID, account.Email)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\n🔑 Test JWT Token (valid for %s):\n%s\n\n", tokens.TTL(), token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}

func openStore(ctx context.Context, cfg *config.Config) (accounts.Store, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return accounts.NewRepository(pool), pool.Close, nil
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return accounts.NewSQLiteStore(db), closeDB(db), nil
	default:
		return nil, nil, fmt.Errorf("driver %q keeps no accounts between runs", cfg.DatabaseDriver)
	}
}

func closeDB(db *sql.DB) func() {
	return func() { db.Close() } //nolint:errcheck,gosec // best-effort cleanup
}
