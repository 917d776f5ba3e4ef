package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Import reads a spreadsheet and upserts one record per valid row
	Import(ctx context.Context, file ImportFile) (ImportSummary, error)

	List(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error)
	Get(ctx context.Context, id int64) (AttendanceResponse, error)
	Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id int64) error
}
