package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveTypes struct{ types []leave.LeaveType }

func (f *fakeLeaveTypes) List(ctx context.Context) ([]leave.LeaveType, error) {
	return f.types, nil
}

type fakeLeaveRequests struct {
	rows       map[int64]leave.LeaveRequest
	nextID     int64
	lastFilter leave.LeaveRequestFilter
}

func newFakeLeaveRequests() *fakeLeaveRequests {
	return &fakeLeaveRequests{rows: map[int64]leave.LeaveRequest{}}
}

func (f *fakeLeaveRequests) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	if r.LeaveTypeID == 404 {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeNotFound
	}
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = r
	return r, nil
}

func (f *fakeLeaveRequests) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	r, ok := f.rows[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeLeaveRequests) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	f.lastFilter = filter
	var out []leave.LeaveRequest
	for _, r := range f.rows {
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeLeaveRequests) UpdateStatus(ctx context.Context, req leave.UpdateLeaveRequestRequest) error {
	r, ok := f.rows[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	r.Status = leave.RequestStatus(req.Status)
	if req.ApprovedByUserID != nil {
		r.ApprovedByUserID = req.ApprovedByUserID
	}
	if req.Reason != nil {
		r.Reason = req.Reason
	}
	f.rows[req.ID] = r
	return nil
}

func newTestService() (*LeaveServiceImpl, *fakeLeaveRequests) {
	requests := newFakeLeaveRequests()
	svc := NewLeaveService(&fakeLeaveTypes{types: []leave.LeaveType{{ID: 1, Name: "Annual"}}}, requests).(*LeaveServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 11, 14, 22, 45, 0, 0, time.UTC) }
	return svc, requests
}

func validCreate() leave.CreateLeaveRequestRequest {
	return leave.CreateLeaveRequestRequest{
		EmployeeID:  3,
		LeaveTypeID: 1,
		StartDate:   "2025-12-01",
		EndDate:     "2025-12-05",
	}
}

func TestCreateLeaveRequest_PendingSubmittedToday(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.CreateLeaveRequest(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, leave.StatusPending, resp.Status)
	assert.Equal(t, "2025-11-14", resp.SubmittedOn)
	assert.Equal(t, "2025-12-01", resp.StartDate)
	stored := repo.rows[resp.ID]
	assert.Equal(t, time.UTC, stored.SubmittedOn.Location())
	assert.Zero(t, stored.SubmittedOn.Hour())
}

func TestCreateLeaveRequest_Validation(t *testing.T) {
	svc, repo := newTestService()

	req := validCreate()
	req.EndDate = "2025-11-30"
	_, err := svc.CreateLeaveRequest(context.Background(), req)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "end_date must not be before start_date", verrs.ToMap()["end_date"])

	_, err = svc.CreateLeaveRequest(context.Background(), leave.CreateLeaveRequestRequest{})
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.ToMap(), 4)
	assert.Empty(t, repo.rows)
}

func TestCreateLeaveRequest_UnknownType(t *testing.T) {
	svc, _ := newTestService()

	req := validCreate()
	req.LeaveTypeID = 404
	_, err := svc.CreateLeaveRequest(context.Background(), req)
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestUpdateLeaveRequest(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.CreateLeaveRequest(context.Background(), validCreate())
	require.NoError(t, err)

	approver := int64(2)
	resp, err := svc.UpdateLeaveRequest(context.Background(), leave.UpdateLeaveRequestRequest{
		ID:               created.ID,
		Status:           " approved ",
		ApprovedByUserID: &approver,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedByUserID)
	assert.Equal(t, approver, *resp.ApprovedByUserID)
}

func TestUpdateLeaveRequest_InvalidStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateLeaveRequest(context.Background(), leave.UpdateLeaveRequestRequest{ID: 1, Status: "MAYBE"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = svc.UpdateLeaveRequest(context.Background(), leave.UpdateLeaveRequestRequest{ID: 1})
	assert.True(t, errors.As(err, &verrs))
}

func TestUpdateLeaveRequest_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateLeaveRequest(context.Background(), leave.UpdateLeaveRequestRequest{ID: 9, Status: "REJECTED"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestListLeaveRequests_NormalizesStatusFilter(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.CreateLeaveRequest(context.Background(), validCreate())
	require.NoError(t, err)

	status := "pending"
	list, err := svc.ListLeaveRequests(context.Background(), leave.LeaveRequestFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, "PENDING", *repo.lastFilter.Status)

	bad := "unknown"
	_, err = svc.ListLeaveRequests(context.Background(), leave.LeaveRequestFilter{Status: &bad})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestListLeaveRequests_EmptyIsNotNil(t *testing.T) {
	svc, _ := newTestService()

	list, err := svc.ListLeaveRequests(context.Background(), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
}

func TestListLeaveTypes(t *testing.T) {
	svc, _ := newTestService()

	types, err := svc.ListLeaveTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Annual", types[0].Name)
}
