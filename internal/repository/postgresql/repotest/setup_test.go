package repotest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds the connection used by repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies db/schema.sql.
// It returns nil without error when the variable is unset.
func NewTestDatabase(ctx context.Context) (*TestDatabaseSetup, error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	schema, err := os.ReadFile(schemaPath())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, nil
}

func schemaPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "schema.sql")
}

// TruncateAllTables removes test data; seeded lookup tables are kept
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"payroll_bonus",
		"payroll_deduction",
		"payroll_entry",
		"payroll_run",
		"leave_request",
		"user_role",
		"user_account",
		"attendance_record",
		"employment_assignment",
		"department",
		"position",
		"employee",
	}

	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := t.DB.Pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
