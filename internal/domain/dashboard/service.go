package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetStats returns the headline counters and payroll trend using goroutines
	GetStats(ctx context.Context) (*StatsResponse, error)

	// GetDepartmentHeadcounts returns staff per department ordered by name
	GetDepartmentHeadcounts(ctx context.Context) ([]DepartmentHeadcountResponse, error)
}
