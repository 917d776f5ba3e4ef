package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	sf  *singleflight.Group
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		sf:                  &singleflight.Group{},
		now:                 time.Now,
	}
}

// monthStart returns the first day of the month holding t, shifted by offset months.
func monthStart(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
}

// GetStats returns combined dashboard data. Concurrent callers for the same
// month share one load.
func (s *DashboardServiceImpl) GetStats(ctx context.Context) (*dashboard.StatsResponse, error) {
	now := s.now()
	v, err, _ := s.sf.Do("stats:"+now.Format("2006-01"), func() (interface{}, error) {
		return s.loadStats(ctx, now)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dashboard.StatsResponse), nil
}

// loadStats fans the independent counters out over an errgroup.
func (s *DashboardServiceImpl) loadStats(ctx context.Context, now time.Time) (*dashboard.StatsResponse, error) {
	thisMonth := monthStart(now, 0)
	nextMonth := monthStart(now, 1)
	trendSince := monthStart(now, -(dashboard.TrendMonths - 1))

	resp := &dashboard.StatsResponse{}
	var trends []dashboard.PayrollTrend

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Active employees
	g.Go(func() error {
		n, err := s.CountActiveEmployees(gCtx)
		resp.ActiveEmployees = n
		return err
	})

	// 2. Departments
	g.Go(func() error {
		n, err := s.CountDepartments(gCtx)
		resp.TotalDepartments = n
		return err
	})

	// 3. Pending leave
	g.Go(func() error {
		n, err := s.CountPendingLeave(gCtx)
		resp.ActiveLeaveCount = n
		return err
	})

	// 4. Finalized payroll of the current month
	g.Go(func() error {
		total, err := s.TotalNetPayroll(gCtx, thisMonth, nextMonth)
		resp.TotalPayroll = total
		return err
	})

	// 5. Payroll trend
	g.Go(func() error {
		var err error
		trends, err = s.PayrollTrends(gCtx, trendSince)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.PayrollTrends = make([]dashboard.PayrollTrendResponse, 0, len(trends))
	for _, t := range trends {
		resp.PayrollTrends = append(resp.PayrollTrends, dashboard.PayrollTrendResponse{
			Year:  t.Year,
			Month: t.Month,
			Total: t.Total,
		})
	}

	return resp, nil
}

// GetDepartmentHeadcounts returns staff per department
func (s *DashboardServiceImpl) GetDepartmentHeadcounts(ctx context.Context) ([]dashboard.DepartmentHeadcountResponse, error) {
	rows, err := s.DepartmentHeadcounts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dashboard.DepartmentHeadcountResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, dashboard.DepartmentHeadcountResponse{Name: r.Name, Staff: r.Staff})
	}
	return result, nil
}
