package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/pdf"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx               database.Transactor
	runRepo          payroll.RunRepository
	entryRepo        payroll.EntryRepository
	workforceRepo    payroll.WorkforceRepository
	variance         *VarianceCalculator
	defaultCreatedBy int64
	events           sse.Publisher
	now              func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	runRepo payroll.RunRepository,
	entryRepo payroll.EntryRepository,
	workforceRepo payroll.WorkforceRepository,
	variance *VarianceCalculator,
	defaultCreatedBy int64,
	events sse.Publisher,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:               tx,
		runRepo:          runRepo,
		entryRepo:        entryRepo,
		workforceRepo:    workforceRepo,
		variance:         variance,
		defaultCreatedBy: defaultCreatedBy,
		events:           events,
		now:              time.Now,
	}
}

func (s *PayrollServiceImpl) publish(name string, data interface{}) {
	if s.events != nil {
		s.events.Publish(sse.TopicPayroll, sse.Event{Name: name, Data: data})
	}
}

// today is the current calendar date at UTC midnight, the shape DATE columns round-trip as.
func (s *PayrollServiceImpl) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// createdBy prefers an explicit id, then the authenticated user, then the configured default.
func (s *PayrollServiceImpl) createdBy(ctx context.Context, explicit *int64) int64 {
	if explicit != nil && *explicit > 0 {
		return *explicit
	}
	if userID, err := jwt.UserIDFromContext(ctx); err == nil && userID > 0 {
		return userID
	}
	return s.defaultCreatedBy
}

// ========== PERIOD VIEW ==========

func (s *PayrollServiceImpl) GetEmployeesForPayroll(ctx context.Context, month, year int) ([]payroll.EmployeePayrollResponse, error) {
	period, err := payroll.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	employees, err := s.workforceRepo.ListActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	mainRun, err := s.runRepo.FindMain(ctx, period)
	hasMain := err == nil
	if err != nil && !errors.Is(err, payroll.ErrPayrollRunNotFound) {
		return nil, err
	}

	individualRuns, err := s.individualRunsByEmployee(ctx, period)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	type runAssignment struct{ runID, assignmentID int64 }
	latest := make(map[int64]payroll.PayrollEntry)
	byRun := make(map[runAssignment]payroll.PayrollEntry)
	for _, e := range entries {
		if _, ok := latest[e.AssignmentID]; !ok {
			latest[e.AssignmentID] = e
		}
		byRun[runAssignment{e.RunID, e.AssignmentID}] = e
	}

	type row struct {
		emp        payroll.PayrollEmployee
		existing   *payroll.PayrollEntry
		individual *payroll.PayrollRun
	}
	rows := make([]row, 0, len(employees))
	var entryIDs []int64
	for _, emp := range employees {
		if !emp.EligibleFor(period) {
			continue
		}
		r := row{emp: emp}
		if e, ok := latest[emp.AssignmentID]; ok {
			r.existing = &e
		}
		if run, ok := individualRuns[emp.EmployeeID]; ok {
			r.individual = &run
			if e, ok := byRun[runAssignment{run.ID, emp.AssignmentID}]; ok {
				r.existing = &e
			}
		}
		if r.existing != nil {
			entryIDs = append(entryIDs, r.existing.ID)
		}
		rows = append(rows, r)
	}

	deductionsByEntry := make(map[int64][]payroll.Deduction)
	if len(entryIDs) > 0 {
		deductions, err := s.entryRepo.ListDeductions(ctx, entryIDs)
		if err != nil {
			return nil, err
		}
		for _, d := range deductions {
			deductionsByEntry[d.EntryID] = append(deductionsByEntry[d.EntryID], d)
		}
	}

	expected := ExpectedHours(year, month)
	result := make([]payroll.EmployeePayrollResponse, 0, len(rows))
	for _, r := range rows {
		status := payroll.RunStatusDraft
		var payDate *time.Time
		var runID *int64
		switch {
		case r.individual != nil:
			status, payDate, runID = r.individual.Status, r.individual.PayDate, &r.individual.ID
		case r.existing != nil:
			status, payDate, runID = r.existing.RunStatus, r.existing.RunPayDate, &r.existing.RunID
		case hasMain:
			status, payDate, runID = mainRun.Status, mainRun.PayDate, &mainRun.ID
		}

		var deductions []payroll.Deduction
		var entryID *int64
		var notes *string
		if r.existing != nil {
			deductions = deductionsByEntry[r.existing.ID]
			entryID = &r.existing.ID
			notes = r.existing.Notes
		}

		calculated := 0
		if r.existing == nil || !r.existing.HourVarianceOverride {
			calculated = s.variance.Calculate(ctx, r.emp.EmployeeID, month, year)
		}

		composed := Compose(ComposeInput{
			Entry:              r.existing,
			StartSalary:        r.emp.StartSalary,
			Deductions:         deductionAmounts(deductions),
			CalculatedVariance: calculated,
			ExpectedHours:      expected,
			RunStatus:          status,
		})

		variance := composed.HourVariance
		deductionResponses := make([]payroll.DeductionResponse, 0, len(deductions))
		for _, d := range deductions {
			deductionResponses = append(deductionResponses, payroll.NewDeductionResponse(d))
		}

		result = append(result, payroll.EmployeePayrollResponse{
			EmployeeID:            r.emp.EmployeeID,
			EmployeeName:          r.emp.EmployeeName,
			AssignmentID:          r.emp.AssignmentID,
			GrossSalary:           composed.GrossSalary,
			BonusAmount:           composed.BonusAmount,
			DepartmentName:        r.emp.DepartmentName,
			PositionTitle:         r.emp.PositionTitle,
			HireDate:              payroll.FormatDate(r.emp.HireDate),
			AssignmentStartDate:   payroll.FormatDate(r.emp.AssignmentStartDate),
			PayrollEntryID:        entryID,
			PayrollRunID:          runID,
			HourVariance:          variance,
			HourVarianceOverride:  composed.HourVarianceOverride,
			HourVarianceDeduction: composed.HourVarianceDeduction,
			NetSalary:             composed.NetSalary,
			Remarks: payroll.RemarksView{
				HourVariance:         &variance,
				HourVarianceOverride: composed.HourVarianceOverride,
				OriginalRemarks:      notes,
			},
			Deductions: deductionResponses,
			RunStatus:  status,
			PayDate:    payroll.FormatDate(payDate),
		})
	}

	return result, nil
}

// individualRunsByEmployee resolves one INDIVIDUAL run per employee: a PAID run if any, else the newest.
func (s *PayrollServiceImpl) individualRunsByEmployee(ctx context.Context, period payroll.Period) (map[int64]payroll.PayrollRun, error) {
	runs, err := s.runRepo.ListIndividual(ctx, period)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int64]payroll.PayrollRun)
	for _, run := range runs {
		if run.EmployeeID == nil {
			continue
		}
		current, seen := resolved[*run.EmployeeID]
		if !seen || (run.Status == payroll.RunStatusPaid && current.Status != payroll.RunStatusPaid) {
			resolved[*run.EmployeeID] = run
		}
	}
	return resolved, nil
}

func (s *PayrollServiceImpl) BulkUpdateEntries(ctx context.Context, req payroll.BulkUpdateEntriesRequest) (payroll.BulkUpdateResponse, error) {
	period, err := payroll.NewPeriod(req.Month, req.Year)
	if err != nil {
		return payroll.BulkUpdateResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.BulkUpdateResponse{}, err
	}

	createdBy := s.createdBy(ctx, req.CreatedByUserID)
	today := s.today()

	var runID int64
	saved, skipped := 0, 0
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, skipped = 0, 0
		run, _, err := s.findOrCreateMainRun(ctx, period, createdBy)
		if err != nil {
			return err
		}
		runID = run.ID

		for _, item := range req.Entries {
			ok, err := s.saveEntry(ctx, run, period, item, today)
			if err != nil {
				return err
			}
			if ok {
				saved++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		return payroll.BulkUpdateResponse{}, err
	}

	slog.InfoContext(ctx, "payroll entries saved", "payroll_run_id", runID, "period", period.String(), "saved_count", saved, "skipped_count", skipped)
	s.publish("entries_saved", map[string]interface{}{
		"payroll_run_id": runID,
		"period":         period.String(),
		"saved_count":    saved,
		"skipped_count":  skipped,
	})

	return payroll.BulkUpdateResponse{
		Message:      "Payroll entries updated successfully",
		PayrollRunID: runID,
		SavedCount:   saved,
		SkippedCount: skipped,
	}, nil
}

// saveEntry applies one edited row and reports whether it was written. Entries of a finalized run
// are left untouched. Hour variance precedence is manual, then a stored override, then the
// attendance-derived value.
func (s *PayrollServiceImpl) saveEntry(ctx context.Context, run payroll.PayrollRun, period payroll.Period, item payroll.BulkEntryRequest, today time.Time) (bool, error) {
	assignment, err := s.workforceRepo.GetAssignment(ctx, item.AssignmentID)
	if err != nil {
		return false, err
	}

	existing, err := s.existingEntry(ctx, item, period)
	if err != nil {
		return false, err
	}
	if existing != nil && existing.RunStatus.IsFinalized() {
		slog.InfoContext(ctx, "skipping entry of finalized payroll run",
			"payroll_entry_id", existing.ID, "payroll_run_id", existing.RunID, "run_status", existing.RunStatus)
		return false, nil
	}

	manual := item.HourVariance != nil
	storedOverride := existing != nil && existing.HourVarianceOverride && existing.HourVariance != nil

	var variance int
	switch {
	case manual:
		variance = *item.HourVariance
	case storedOverride:
		variance = *existing.HourVariance
	default:
		variance = s.variance.Calculate(ctx, assignment.EmployeeID, int(period.Month), period.Year)
	}

	gross := assignment.StartSalary
	bonus := decimal.Zero
	notes := item.Remarks
	if existing != nil {
		gross, bonus = existing.GrossSalary, existing.BonusAmount
		if notes == nil {
			notes = existing.Notes
		}
	}
	if item.GrossSalary != nil {
		gross = *item.GrossSalary
	}
	if item.BonusAmount != nil {
		bonus = *item.BonusAmount
	}

	amounts := make([]decimal.Decimal, 0, len(item.Deductions))
	for _, d := range item.Deductions {
		amounts = append(amounts, d.Amount)
	}

	net, _, _ := NetSalary(gross, bonus, amounts, variance, ExpectedHours(period.Year, int(period.Month)))
	if !manual && item.NetSalary != nil {
		net = decimal.Max(decimal.Zero, *item.NetSalary)
	}

	entry := payroll.PayrollEntry{
		RunID:                run.ID,
		AssignmentID:         assignment.ID,
		GrossSalary:          gross,
		BonusAmount:          bonus,
		NetSalary:            net,
		HourVariance:         &variance,
		HourVarianceOverride: manual || (existing != nil && existing.HourVarianceOverride),
		Notes:                notes,
	}

	if existing != nil {
		entry.ID = existing.ID
		// Entries paid through an individual run stay attached to it.
		if existing.RunKind == payroll.RunKindIndividual {
			entry.RunID = existing.RunID
		}
		if err := s.entryRepo.Update(ctx, entry); err != nil {
			return false, err
		}
	} else {
		created, err := s.entryRepo.Create(ctx, entry)
		if err != nil {
			return false, err
		}
		entry.ID = created.ID
	}

	deductions := make([]payroll.Deduction, 0, len(item.Deductions))
	for _, d := range item.Deductions {
		effective := today
		if d.EffectiveDate != nil {
			effective, _ = time.Parse("2006-01-02", *d.EffectiveDate)
		}
		deductions = append(deductions, payroll.Deduction{
			EntryID:       entry.ID,
			TypeID:        d.DeductionTypeID,
			Amount:        d.Amount,
			Reason:        d.Reason,
			EffectiveDate: effective,
		})
	}
	if err := s.entryRepo.ReplaceDeductions(ctx, entry.ID, deductions); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PayrollServiceImpl) existingEntry(ctx context.Context, item payroll.BulkEntryRequest, period payroll.Period) (*payroll.PayrollEntry, error) {
	if item.PayrollEntryID != nil {
		entry, err := s.entryRepo.GetByID(ctx, *item.PayrollEntryID)
		if err != nil {
			return nil, err
		}
		if entry.AssignmentID != item.AssignmentID {
			return nil, payroll.ErrAssignmentMismatch
		}
		return &entry, nil
	}

	entry, err := s.entryRepo.LatestMainEntry(ctx, item.AssignmentID, period)
	if errors.Is(err, payroll.ErrPayrollEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ========== ENTRIES ==========

func (s *PayrollServiceImpl) GetEntry(ctx context.Context, id int64) (payroll.PayrollEntryResponse, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollEntryResponse{}, err
	}

	deductions, err := s.entryRepo.ListDeductions(ctx, []int64{entry.ID})
	if err != nil {
		return payroll.PayrollEntryResponse{}, err
	}
	bonuses, err := s.entryRepo.ListBonuses(ctx, []int64{entry.ID})
	if err != nil {
		return payroll.PayrollEntryResponse{}, err
	}

	resp := payroll.PayrollEntryResponse{
		ID:                   entry.ID,
		PayrollRunID:         entry.RunID,
		AssignmentID:         entry.AssignmentID,
		EmployeeID:           entry.EmployeeID,
		EmployeeName:         entry.EmployeeName,
		GrossSalary:          entry.GrossSalary,
		BonusAmount:          entry.BonusAmount,
		NetSalary:            entry.NetSalary,
		HourVariance:         entry.HourVariance,
		HourVarianceOverride: entry.HourVarianceOverride,
		Remarks: payroll.RemarksView{
			HourVariance:         entry.HourVariance,
			HourVarianceOverride: entry.HourVarianceOverride,
			OriginalRemarks:      entry.Notes,
		},
		RunStatus:   entry.RunStatus,
		RunKind:     entry.RunKind,
		PeriodStart: entry.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   entry.PeriodEnd.Format("2006-01-02"),
		PayDate:     payroll.FormatDate(entry.RunPayDate),
		Deductions:  make([]payroll.DeductionResponse, 0, len(deductions)),
		Bonuses:     make([]payroll.BonusResponse, 0, len(bonuses)),
	}
	for _, d := range deductions {
		resp.Deductions = append(resp.Deductions, payroll.NewDeductionResponse(d))
	}
	for _, b := range bonuses {
		resp.Bonuses = append(resp.Bonuses, payroll.NewBonusResponse(b))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) WritePayslip(ctx context.Context, id int64, w io.Writer) error {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	deductions, err := s.entryRepo.ListDeductions(ctx, []int64{entry.ID})
	if err != nil {
		return err
	}

	period := payroll.PeriodOf(entry.PeriodStart)
	month := int(period.Month)
	calculated := 0
	if !entry.HourVarianceOverride {
		calculated = s.variance.Calculate(ctx, entry.EmployeeID, month, period.Year)
	}
	composed := Compose(ComposeInput{
		Entry:              &entry,
		StartSalary:        entry.GrossSalary,
		Deductions:         deductionAmounts(deductions),
		CalculatedVariance: calculated,
		ExpectedHours:      ExpectedHours(period.Year, month),
		RunStatus:          entry.RunStatus,
	})

	slip := pdf.Payslip{
		EmployeeName:          deref(entry.EmployeeName),
		DepartmentName:        deref(entry.DepartmentName),
		PositionTitle:         deref(entry.PositionTitle),
		PeriodStart:           entry.PeriodStart,
		PeriodEnd:             entry.PeriodEnd,
		PayDate:               entry.RunPayDate,
		RunStatus:             string(entry.RunStatus),
		GrossSalary:           composed.GrossSalary,
		BonusAmount:           composed.BonusAmount,
		HourVariance:          composed.HourVariance,
		HourVarianceDeduction: composed.HourVarianceDeduction,
		NetSalary:             composed.NetSalary,
	}
	for _, d := range deductions {
		label := fmt.Sprintf("type %d", d.TypeID)
		if d.TypeName != nil {
			label = *d.TypeName
		}
		slip.Deductions = append(slip.Deductions, pdf.Line{Label: label, Amount: d.Amount})
	}

	return pdf.RenderPayslip(w, slip)
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.CreateRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CreateRunResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", req.PeriodStart)
	end, _ := time.Parse("2006-01-02", req.PeriodEnd)

	run, err := s.runRepo.Create(ctx, payroll.PayrollRun{
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      payroll.RunStatusDraft,
		Kind:        payroll.RunKindMain,
		Notes:       req.Notes,
		CreatedBy:   s.createdBy(ctx, req.CreatedByUserID),
	})
	if err != nil {
		return payroll.CreateRunResponse{}, err
	}

	s.publish("run_created", payroll.NewPayrollRunResponse(run))
	return payroll.CreateRunResponse{PayrollRunID: run.ID}, nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context) ([]payroll.PayrollRunResponse, error) {
	runs, err := s.runRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, payroll.NewPayrollRunResponse(run))
	}
	return result, nil
}

func (s *PayrollServiceImpl) ApproveRun(ctx context.Context, req payroll.ApproveRunRequest) (payroll.ApproveRunResponse, error) {
	status := payroll.RunStatusPaid
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		parsed, ok := payroll.ParseRunStatus(*req.Status)
		if !ok {
			return payroll.ApproveRunResponse{}, payroll.ErrInvalidRunStatus
		}
		status = parsed
	}

	var updated payroll.PayrollRun
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.runRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !run.Status.CanTransitionTo(status) {
			return payroll.ErrIllegalStatusTransition
		}

		payDate := run.PayDate
		if status == payroll.RunStatusPaid {
			today := s.today()
			payDate = &today
		}

		updated, err = s.runRepo.UpdateStatus(ctx, run.ID, status, payDate)
		return err
	})
	if err != nil {
		return payroll.ApproveRunResponse{}, err
	}

	s.publish("run_status_changed", payroll.NewPayrollRunResponse(updated))
	return payroll.ApproveRunResponse{
		Message:      fmt.Sprintf("Payroll run marked as %s", status),
		Status:       updated.Status,
		PayDate:      payroll.FormatDate(updated.PayDate),
		PayrollRunID: updated.ID,
	}, nil
}

func (s *PayrollServiceImpl) CancelRun(ctx context.Context, id int64) (payroll.PayrollRunResponse, error) {
	var updated payroll.PayrollRun
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.runRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !run.Status.CanTransitionTo(payroll.RunStatusCancelled) {
			return payroll.ErrIllegalStatusTransition
		}
		updated, err = s.runRepo.UpdateStatus(ctx, run.ID, payroll.RunStatusCancelled, run.PayDate)
		return err
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	resp := payroll.NewPayrollRunResponse(updated)
	s.publish("run_status_changed", resp)
	return resp, nil
}

func (s *PayrollServiceImpl) EnsureMainRun(ctx context.Context, year, month int) (int64, bool, error) {
	period, err := payroll.NewPeriod(month, year)
	if err != nil {
		return 0, false, err
	}

	var run payroll.PayrollRun
	var created bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, created, err = s.findOrCreateMainRun(ctx, period, s.defaultCreatedBy)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return run.ID, created, nil
}

func (s *PayrollServiceImpl) findOrCreateMainRun(ctx context.Context, period payroll.Period, createdBy int64) (payroll.PayrollRun, bool, error) {
	run, err := s.runRepo.FindMain(ctx, period)
	if err == nil {
		return run, false, nil
	}
	if !errors.Is(err, payroll.ErrPayrollRunNotFound) {
		return payroll.PayrollRun{}, false, err
	}

	end := period.End()
	run, err = s.runRepo.Create(ctx, payroll.PayrollRun{
		PeriodStart: period.Start(),
		PeriodEnd:   end,
		PayDate:     &end,
		Status:      payroll.RunStatusDraft,
		Kind:        payroll.RunKindMain,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return payroll.PayrollRun{}, false, err
	}
	return run, true, nil
}

// ========== PAYMENT ==========

func (s *PayrollServiceImpl) PayIndividual(ctx context.Context, req payroll.PayIndividualRequest) (payroll.PayIndividualResponse, error) {
	if req.Month == 0 || req.Year == 0 || req.AssignmentID == 0 || req.EmployeeID == 0 {
		return payroll.PayIndividualResponse{}, payroll.ErrPayIndividualFieldsRequired
	}
	period, err := payroll.NewPeriod(req.Month, req.Year)
	if err != nil {
		return payroll.PayIndividualResponse{}, err
	}

	createdBy := s.createdBy(ctx, req.CreatedByUserID)
	today := s.today()

	var run payroll.PayrollRun
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assignment, err := s.workforceRepo.GetAssignment(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		if assignment.EmployeeID != req.EmployeeID {
			return payroll.ErrAssignmentMismatch
		}

		existing, err := s.lockIndividualRun(ctx, req.EmployeeID, period)
		if err != nil {
			return err
		}
		run, err = s.markIndividualPaid(ctx, existing, period, assignment, createdBy, today)
		return err
	})
	if err != nil {
		return payroll.PayIndividualResponse{}, err
	}

	slog.InfoContext(ctx, "employee marked as paid",
		"employee_id", req.EmployeeID,
		"assignment_id", req.AssignmentID,
		"payroll_run_id", run.ID,
		"period", period.String(),
	)

	resp := payroll.PayIndividualResponse{
		Message:      "Employee marked as paid and saved successfully",
		Status:       run.Status,
		PayDate:      today.Format("2006-01-02"),
		PayrollRunID: run.ID,
	}
	s.publish("employee_paid", map[string]interface{}{
		"employee_id":    req.EmployeeID,
		"assignment_id":  req.AssignmentID,
		"payroll_run_id": run.ID,
		"period":         period.String(),
		"pay_date":       resp.PayDate,
	})
	return resp, nil
}

func (s *PayrollServiceImpl) PayAllUnpaid(ctx context.Context, req payroll.PayAllRequest) (payroll.PayAllResponse, error) {
	period, err := payroll.NewPeriod(req.Month, req.Year)
	if err != nil {
		return payroll.PayAllResponse{}, err
	}

	createdBy := s.createdBy(ctx, req.CreatedByUserID)
	today := s.today()

	paid, skipped, verified := 0, 0, 0
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		employees, err := s.workforceRepo.ListActiveEmployees(ctx)
		if err != nil {
			return err
		}

		for _, emp := range employees {
			if !emp.EligibleFor(period) {
				continue
			}

			existing, err := s.lockIndividualRun(ctx, emp.EmployeeID, period)
			if err != nil {
				return err
			}
			if existing != nil && existing.Status == payroll.RunStatusPaid {
				skipped++
				continue
			}

			assignment := payroll.Assignment{ID: emp.AssignmentID, EmployeeID: emp.EmployeeID, StartSalary: emp.StartSalary}
			if _, err := s.markIndividualPaid(ctx, existing, period, assignment, createdBy, today); err != nil {
				return fmt.Errorf("failed to pay employee %d: %w", emp.EmployeeID, err)
			}
			paid++
		}

		verified, err = s.runRepo.CountPaidIndividual(ctx, period)
		return err
	})
	if err != nil {
		return payroll.PayAllResponse{}, err
	}

	slog.InfoContext(ctx, "unpaid employees marked as paid",
		"period", period.String(),
		"paid_count", paid,
		"skipped_count", skipped,
	)

	resp := payroll.PayAllResponse{
		Message:           "All unpaid employees marked as paid successfully",
		Status:            payroll.RunStatusPaid,
		PayDate:           today.Format("2006-01-02"),
		PaidCount:         paid,
		SkippedCount:      skipped,
		VerifiedPaidCount: verified,
	}
	s.publish("period_paid", map[string]interface{}{
		"period":              period.String(),
		"paid_count":          paid,
		"skipped_count":       skipped,
		"verified_paid_count": verified,
	})
	return resp, nil
}

// lockIndividualRun takes the (employee, period) lock and returns the resolved individual run, nil when none.
func (s *PayrollServiceImpl) lockIndividualRun(ctx context.Context, employeeID int64, period payroll.Period) (*payroll.PayrollRun, error) {
	if err := s.runRepo.LockEmployeePeriod(ctx, employeeID, period); err != nil {
		return nil, err
	}
	run, err := s.runRepo.FindIndividual(ctx, employeeID, period)
	if errors.Is(err, payroll.ErrPayrollRunNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// markIndividualPaid finds or creates the employee's INDIVIDUAL run as PAID and makes sure it carries an entry.
func (s *PayrollServiceImpl) markIndividualPaid(
	ctx context.Context,
	existing *payroll.PayrollRun,
	period payroll.Period,
	assignment payroll.Assignment,
	createdBy int64,
	today time.Time,
) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	var err error
	if existing != nil {
		run, err = s.runRepo.UpdateStatus(ctx, existing.ID, payroll.RunStatusPaid, &today)
	} else {
		employeeID := assignment.EmployeeID
		run, err = s.runRepo.Create(ctx, payroll.PayrollRun{
			PeriodStart: period.Start(),
			PeriodEnd:   period.End(),
			PayDate:     &today,
			Status:      payroll.RunStatusPaid,
			Kind:        payroll.RunKindIndividual,
			EmployeeID:  &employeeID,
			CreatedBy:   createdBy,
		})
	}
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	if err := s.ensureIndividualEntry(ctx, run, existing == nil, assignment, period); err != nil {
		return payroll.PayrollRun{}, err
	}
	return run, nil
}

// ensureIndividualEntry keeps an existing entry of the run. A newly created run gets a copy of the
// latest main-run entry with its deductions and bonuses, so the main entry survives a later cancel.
// An older run without an entry takes the DRAFT main entry over. Without any main entry one is
// synthesized from the assignment salary.
func (s *PayrollServiceImpl) ensureIndividualEntry(ctx context.Context, run payroll.PayrollRun, created bool, assignment payroll.Assignment, period payroll.Period) error {
	_, err := s.entryRepo.FindByRunAndAssignment(ctx, run.ID, assignment.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, payroll.ErrPayrollEntryNotFound) {
		return err
	}

	main, err := s.entryRepo.LatestMainEntry(ctx, assignment.ID, period)
	switch {
	case err == nil && !created && !main.RunStatus.IsFinalized():
		return s.entryRepo.Reparent(ctx, main.ID, run.ID)
	case err == nil:
		return s.cloneEntry(ctx, main, run.ID)
	case errors.Is(err, payroll.ErrPayrollEntryNotFound):
		_, err = s.entryRepo.Create(ctx, payroll.PayrollEntry{
			RunID:        run.ID,
			AssignmentID: assignment.ID,
			GrossSalary:  assignment.StartSalary,
			BonusAmount:  decimal.Zero,
			NetSalary:    assignment.StartSalary,
		})
		return err
	default:
		return err
	}
}

func (s *PayrollServiceImpl) cloneEntry(ctx context.Context, source payroll.PayrollEntry, runID int64) error {
	clone := source
	clone.ID = 0
	clone.RunID = runID
	created, err := s.entryRepo.Create(ctx, clone)
	if err != nil {
		return err
	}

	deductions, err := s.entryRepo.ListDeductions(ctx, []int64{source.ID})
	if err != nil {
		return err
	}
	if err := s.entryRepo.ReplaceDeductions(ctx, created.ID, deductions); err != nil {
		return err
	}

	bonuses, err := s.entryRepo.ListBonuses(ctx, []int64{source.ID})
	if err != nil {
		return err
	}
	return s.entryRepo.ReplaceBonuses(ctx, created.ID, bonuses)
}

// ========== LOOKUPS ==========

func (s *PayrollServiceImpl) ListDeductionTypes(ctx context.Context) ([]payroll.DeductionType, error) {
	return s.entryRepo.ListDeductionTypes(ctx)
}

func (s *PayrollServiceImpl) ListBonusTypes(ctx context.Context) ([]payroll.BonusType, error) {
	return s.entryRepo.ListBonusTypes(ctx)
}

func deductionAmounts(deductions []payroll.Deduction) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(deductions))
	for _, d := range deductions {
		amounts = append(amounts, d.Amount)
	}
	return amounts
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
