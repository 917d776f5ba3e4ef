package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT lr.leave_request_id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
		lr.reason, lr.submitted_on, lr.status, lr.approved_by_user_id,
		e.first_name || ' ' || e.last_name AS employee_name,
		lt.name AS leave_type_name
	FROM leave_request lr
	JOIN employee e ON e.employee_id = lr.employee_id
	JOIN leave_type lt ON lt.leave_type_id = lr.leave_type_id
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate,
		&lr.Reason, &lr.SubmittedOn, &lr.Status, &lr.ApprovedByUserID,
		&lr.EmployeeName, &lr.LeaveTypeName,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_request (employee_id, leave_type_id, start_date, end_date, reason, submitted_on, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING leave_request_id
	`

	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.LeaveTypeID, request.StartDate, request.EndDate,
		request.Reason, request.SubmittedOn, request.Status,
	).Scan(&request.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, leaveRequestSelect+" WHERE lr.leave_request_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := make([]interface{}, 0)
	argIndex := 1

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND lr.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND lr.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}

	query := fmt.Sprintf("%s %s ORDER BY lr.submitted_on DESC, lr.status", leaveRequestSelect, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, nil
}

// UpdateStatus always sets the status; approver and reason only when supplied.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, request leave.UpdateLeaveRequestRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{"status = $1"}
	args := []interface{}{request.Status}
	argIdx := 2

	if request.ApprovedByUserID != nil {
		updates = append(updates, fmt.Sprintf("approved_by_user_id = $%d", argIdx))
		args = append(args, *request.ApprovedByUserID)
		argIdx++
	}
	if request.Reason != nil {
		updates = append(updates, fmt.Sprintf("reason = $%d", argIdx))
		args = append(args, *request.Reason)
		argIdx++
	}

	query := fmt.Sprintf("UPDATE leave_request SET %s WHERE leave_request_id = $%d", strings.Join(updates, ", "), argIdx)
	args = append(args, request.ID)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}
