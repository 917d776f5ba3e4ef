package repotest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSetup *TestDatabaseSetup

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	setup, err := NewTestDatabase(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	testSetup = setup

	code := m.Run()
	if testSetup != nil {
		testSetup.Close()
	}
	os.Exit(code)
}

// setupTestData skips without a database and leaves empty tables behind
func setupTestData(t *testing.T) context.Context {
	t.Helper()
	if testSetup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, testSetup.TruncateAllTables(ctx))
	return ctx
}

func createTestEmployee(t *testing.T, ctx context.Context, code, first, last string) int64 {
	t.Helper()
	var id int64
	err := testSetup.DB.QueryRow(ctx, `
		INSERT INTO employee (employee_code, first_name, last_name, hire_date, status)
		VALUES ($1, $2, $3, '2024-01-15', 'ACTIVE')
		RETURNING employee_id
	`, code, first, last).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestDepartment(t *testing.T, ctx context.Context, name string) int64 {
	t.Helper()
	var id int64
	err := testSetup.DB.QueryRow(ctx,
		"INSERT INTO department (name, budget) VALUES ($1, 0) RETURNING department_id", name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestPosition(t *testing.T, ctx context.Context, title string) int64 {
	t.Helper()
	var id int64
	err := testSetup.DB.QueryRow(ctx,
		"INSERT INTO position (title) VALUES ($1) RETURNING position_id", title,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestAssignment(t *testing.T, ctx context.Context, employeeID, departmentID, positionID int64, salary decimal.Decimal) int64 {
	t.Helper()
	var id int64
	err := testSetup.DB.QueryRow(ctx, `
		INSERT INTO employment_assignment (employee_id, department_id, position_id, start_date, start_salary, reference_salary, status)
		VALUES ($1, $2, $3, '2024-01-15', $4, $4, 'ACTIVE')
		RETURNING assignment_id
	`, employeeID, departmentID, positionID, salary).Scan(&id)
	require.NoError(t, err)
	return id
}

func roleID(t *testing.T, ctx context.Context, name string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, testSetup.DB.QueryRow(ctx, "SELECT role_id FROM role WHERE name = $1", name).Scan(&id))
	return id
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	created, err := repo.Create(ctx, user.User{
		Username:     "hr.jane",
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		Status:       user.StatusActive,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hr.jane", got.Username)
	assert.Empty(t, got.Roles)
	assert.Nil(t, got.LastLogin)

	byEmail, err := repo.GetActiveByLogin(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	_, err := repo.Create(ctx, user.User{Username: "a", Email: "a@example.com", PasswordHash: "x", Status: user.StatusActive})
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.User{Username: "a", Email: "b@example.com", PasswordHash: "x", Status: user.StatusActive})
	assert.ErrorIs(t, err, user.ErrUsernameExists)

	_, err = repo.Create(ctx, user.User{Username: "b", Email: "a@example.com", PasswordHash: "x", Status: user.StatusActive})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	missing := int64(999)
	_, err = repo.Create(ctx, user.User{Username: "c", Email: "c@example.com", PasswordHash: "x", EmployeeID: &missing, Status: user.StatusActive})
	assert.ErrorIs(t, err, user.ErrEmployeeNotFound)
}

func TestUserRepository_AssignRoleRevokesOpenGrants(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	created, err := repo.Create(ctx, user.User{Username: "officer", Email: "o@example.com", PasswordHash: "x", Status: user.StatusActive})
	require.NoError(t, err)

	require.NoError(t, repo.AssignRole(ctx, created.ID, roleID(t, ctx, "HR_MANAGER")))
	require.NoError(t, repo.AssignRole(ctx, created.ID, roleID(t, ctx, "PAYROLL_OFFICER")))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"PAYROLL_OFFICER"}, got.Roles)

	var open, total int
	require.NoError(t, testSetup.DB.QueryRow(ctx,
		"SELECT COUNT(*) FILTER (WHERE revoked_on IS NULL), COUNT(*) FROM user_role WHERE user_id = $1", created.ID,
	).Scan(&open, &total))
	assert.Equal(t, 1, open)
	assert.Equal(t, 2, total)

	assert.ErrorIs(t, repo.AssignRole(ctx, created.ID, 9999), user.ErrRoleNotFound)
}

func TestUserRepository_DepartmentFromActiveAssignment(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	empID := createTestEmployee(t, ctx, "EMP-1", "Ana", "Putri")
	deptID := createTestDepartment(t, ctx, "Finance")
	posID := createTestPosition(t, ctx, "Accountant")
	createTestAssignment(t, ctx, empID, deptID, posID, decimal.NewFromInt(8000000))

	created, err := repo.Create(ctx, user.User{Username: "ana", Email: "ana@example.com", PasswordHash: "x", EmployeeID: &empID, Status: user.StatusActive})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, deptID, *got.DepartmentID)
}

func TestUserRepository_InactiveCannotLogin(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	created, err := repo.Create(ctx, user.User{Username: "gone", Email: "gone@example.com", PasswordHash: "x", Status: user.StatusActive})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, created.ID, user.StatusInactive))

	_, err = repo.GetActiveByLogin(ctx, "gone")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	require.NoError(t, repo.TouchLastLogin(ctx, created.ID))
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, created.ID+1, user.StatusActive), user.ErrUserNotFound)
}

func TestUserRepository_ListRoles(t *testing.T) {
	ctx := setupTestData(t)
	repo := postgresql.NewUserRepository(testSetup.DB)

	roles, err := repo.ListRoles(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"ADMIN", "EMPLOYEE", "HR_MANAGER", "PAYROLL_OFFICER"}, names)
}
