package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	usernameConstraint  = "uq_user_account_username"
	userEmailConstraint = "uq_user_account_email"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}

// userSelect aggregates open role grants and the department of the linked employee's ACTIVE assignment.
const userSelect = `
	SELECT ua.user_id, ua.username, ua.email, ua.password_hash, ua.employee_id, ua.status, ua.last_login,
		COALESCE(ARRAY_AGG(DISTINCT r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles,
		MIN(ea.department_id) AS department_id
	FROM user_account ua
	LEFT JOIN user_role ur ON ur.user_id = ua.user_id AND ur.revoked_on IS NULL
	LEFT JOIN role r ON r.role_id = ur.role_id
	LEFT JOIN employment_assignment ea ON ea.employee_id = ua.employee_id AND ea.status = 'ACTIVE'
`

const userGroupBy = " GROUP BY ua.user_id"

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.EmployeeID, &u.Status, &u.LastLogin,
		&u.Roles, &u.DepartmentID,
	)
	return u, err
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, userSelect+where+userGroupBy, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, userSelect+userGroupBy+" ORDER BY ua.username")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, " WHERE ua.user_id = $1", id)
}

func (r *userRepository) GetActiveByLogin(ctx context.Context, login string) (user.User, error) {
	return r.getOne(ctx, " WHERE (ua.username = $1 OR ua.email = $1) AND ua.status = 'ACTIVE'", login)
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_account (username, email, password_hash, employee_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id
	`

	err := q.QueryRow(ctx, query, newUser.Username, newUser.Email, newUser.PasswordHash, newUser.EmployeeID, newUser.Status).
		Scan(&newUser.ID)
	if err != nil {
		return user.User{}, mapUserWriteError("create", err)
	}
	return newUser, nil
}

func (r *userRepository) Update(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		"UPDATE user_account SET username = $2, email = $3, status = $4 WHERE user_id = $1",
		u.ID, u.Username, u.Email, u.Status,
	)
	if err != nil {
		return mapUserWriteError("update", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id int64, status user.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "UPDATE user_account SET status = $2 WHERE user_id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "UPDATE user_account SET last_login = NOW() WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx,
		"UPDATE user_role SET revoked_on = NOW() WHERE user_id = $1 AND revoked_on IS NULL",
		userID,
	); err != nil {
		return fmt.Errorf("failed to revoke roles: %w", err)
	}

	if _, err := q.Exec(ctx,
		"INSERT INTO user_role (user_id, role_id, assigned_on) VALUES ($1, $2, NOW())",
		userID, roleID,
	); err != nil {
		if database.IsForeignKeyViolation(err) {
			return user.ErrRoleNotFound
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func (r *userRepository) ListRoles(ctx context.Context) ([]user.RoleRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT role_id, name, description FROM role ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]user.RoleRecord, 0)
	for rows.Next() {
		var role user.RoleRecord
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return roles, nil
}

func mapUserWriteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, usernameConstraint):
		return user.ErrUsernameExists
	case database.IsUniqueViolation(err, userEmailConstraint):
		return user.ErrUserEmailExists
	case database.IsForeignKeyViolation(err):
		return user.ErrEmployeeNotFound
	default:
		return fmt.Errorf("failed to %s user: %w", op, err)
	}
}
