package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/store"
)

// GetTestDatabasePool creates a database connection pool for testing
func GetTestDatabasePool(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(buildDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// buildDatabaseURL constructs the database URL from environment variables
func buildDatabaseURL() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("POSTGRES_DB")
	if dbname == "" {
		dbname = "doc_orchestrator_test"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=prefer",
		user, password, host, port, dbname)
}

// TestDatabase provides database utilities for testing
type TestDatabase struct {
	Pool  *pgxpool.Pool
	Store *store.Store
	ctx   context.Context
}

// NewTestDatabase connects to the test database and ensures the schema
// exists. Tests are skipped when no database is reachable.
func NewTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := GetTestDatabasePool(ctx)
	if err != nil {
		t.Skipf("test database not reachable, skipping: %v", err)
	}

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	return &TestDatabase{
		Pool:  pool,
		Store: st,
		ctx:   context.Background(),
	}
}

// Close closes the database connection
func (db *TestDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// CreateTestUser creates a user with a bcrypt-hashed password and returns it
func (db *TestDatabase) CreateTestUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user, err := db.Store.CreateUser(db.ctx, "Test User", email, string(hashed))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Pool.Exec(db.ctx, "DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

// CreateTestProject inserts a project owned by the given user and returns it
func (db *TestDatabase) CreateTestProject(t *testing.T, userID, title string, files []models.FileRecord) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:       title,
		Description: "Integration test project",
		Files:       files,
		CreatedBy:   &userID,
	}
	if err := db.Store.CreateProject(db.ctx, project); err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	t.Cleanup(func() {
		db.Pool.Exec(db.ctx, "DELETE FROM projects WHERE id = $1", project.ID)
	})
	return project
}

// DeleteProject removes a project directly, bypassing the API
func (db *TestDatabase) DeleteProject(t *testing.T, id string) {
	t.Helper()
	if _, err := db.Pool.Exec(db.ctx, "DELETE FROM projects WHERE id = $1", id); err != nil {
		t.Logf("Warning: failed to delete project %s: %v", id, err)
	}
}
