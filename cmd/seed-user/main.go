package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/config"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/store"
)

const (
	// MinPasswordLength is the minimum password length requirement
	MinPasswordLength = 8
	// BcryptCost is the cost factor for bcrypt hashing (10 = ~100ms)
	BcryptCost = 10
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func main() {
	name := flag.String("name", "", "Full name of the user (required)")
	email := flag.String("email", "", "Email address (required)")
	password := flag.String("password", "", "Password (required, min 8 chars)")
	flag.Parse()

	if err := validateInputs(*name, *email, *password); err != nil {
		log.Fatalf("Validation error: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to PostgreSQL database")

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	user, err := seedUser(ctx, st, *name, *email, *password)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("✓ Successfully created user")
	log.Printf("  ID: %s", user)
	log.Printf("  Name: %s", *name)
	log.Printf("  Email: %s", *email)
}

// validateInputs validates user input according to security requirements
func validateInputs(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required and cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}
	return nil
}

// seedUser hashes the password and inserts the account.
func seedUser(ctx context.Context, st *store.Store, name, email, password string) (string, error) {
	tracer := otel.Tracer("seed-user")
	ctx, span := tracer.Start(ctx, "create_user")
	defer span.End()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := st.CreateUser(ctx, name, strings.ToLower(strings.TrimSpace(email)), string(hashedPassword))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return "", fmt.Errorf("user with email %s already exists", email)
		}
		return "", err
	}
	return user.ID, nil
}
