package payroll

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	november = payroll.Period{Year: 2025, Month: time.November}
	fixedNow = time.Date(2025, 12, 5, 10, 30, 0, 0, time.UTC)
)

type payrollFixture struct {
	store *memStore
	att   *fakeAttendance
	tx    *passthroughTx
	hub   *sse.Hub
	svc   *PayrollServiceImpl
}

func newPayrollFixture(t *testing.T) *payrollFixture {
	t.Helper()
	store := newMemStore()
	att := newFakeAttendance()
	tx := &passthroughTx{}
	hub := sse.NewHub()

	svc, ok := NewPayrollService(tx, fakeRuns{store}, fakeEntries{store}, fakeWorkforce{store}, NewVarianceCalculator(att), 1, hub).(*PayrollServiceImpl)
	require.True(t, ok)
	svc.now = func() time.Time { return fixedNow }

	return &payrollFixture{store: store, att: att, tx: tx, hub: hub, svc: svc}
}

func (f *payrollFixture) addEmployee(employeeID, assignmentID int64, name, salary string, hired *time.Time) {
	f.store.employees = append(f.store.employees, payroll.PayrollEmployee{
		EmployeeID:   employeeID,
		EmployeeName: name,
		AssignmentID: assignmentID,
		StartSalary:  dec(salary),
		HireDate:     hired,
	})
}

func (f *payrollFixture) addRun(kind payroll.RunKind, status payroll.RunStatus, employeeID *int64) payroll.PayrollRun {
	run, _ := fakeRuns{f.store}.Create(context.Background(), payroll.PayrollRun{
		PeriodStart: november.Start(),
		PeriodEnd:   november.End(),
		Status:      status,
		Kind:        kind,
		EmployeeID:  employeeID,
		CreatedBy:   1,
	})
	return run
}

func (f *payrollFixture) addEntry(runID, assignmentID int64, gross, net string) payroll.PayrollEntry {
	entry, _ := fakeEntries{f.store}.Create(context.Background(), payroll.PayrollEntry{
		RunID:        runID,
		AssignmentID: assignmentID,
		GrossSalary:  dec(gross),
		BonusAmount:  decimal.Zero,
		NetSalary:    dec(net),
	})
	return entry
}

// fullMonth records eight-hour PRESENT days on every business day of November 2025.
func (f *payrollFixture) fullMonth(employeeID int64) {
	for d := november.Start(); !d.After(november.End()); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			f.att.add(employeeID, d, "08:00", "16:00", "PRESENT")
		}
	}
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

// ========== PERIOD VIEW ==========

func TestPayrollService_GetEmployeesForPayroll_Defaults(t *testing.T) {
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	f.fullMonth(1)

	rows, err := f.svc.GetEmployeesForPayroll(context.Background(), 11, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, payroll.RunStatusDraft, row.RunStatus)
	assert.Nil(t, row.PayrollRunID)
	assert.Nil(t, row.PayrollEntryID)
	assert.Equal(t, 0, row.HourVariance)
	assert.Equal(t, "3000.00", row.NetSalary.StringFixed(2))
	assert.Empty(t, row.Deductions)
}

func TestPayrollService_GetEmployeesForPayroll_InvalidPeriod(t *testing.T) {
	f := newPayrollFixture(t)

	_, err := f.svc.GetEmployeesForPayroll(context.Background(), 0, 2025)
	assert.ErrorIs(t, err, payroll.ErrMonthYearRequired)

	_, err = f.svc.GetEmployeesForPayroll(context.Background(), 13, 2025)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestPayrollService_GetEmployeesForPayroll_IndividualRunStatusWins(t *testing.T) {
	t.Run("individual created before main", func(t *testing.T) {
		f := newPayrollFixture(t)
		f.addEmployee(1, 10, "Alice", "3000", nil)

		individual := f.addRun(payroll.RunKindIndividual, payroll.RunStatusDraft, int64Ptr(1))
		f.addEntry(individual.ID, 10, "3000", "2900")
		main := f.addRun(payroll.RunKindMain, payroll.RunStatusPaid, nil)
		f.addEntry(main.ID, 10, "3000", "2500")

		rows, err := f.svc.GetEmployeesForPayroll(context.Background(), 11, 2025)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, payroll.RunStatusDraft, rows[0].RunStatus)
		assert.Equal(t, individual.ID, *rows[0].PayrollRunID)
	})

	t.Run("individual created after main", func(t *testing.T) {
		f := newPayrollFixture(t)
		f.addEmployee(1, 10, "Alice", "3000", nil)

		main := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
		f.addEntry(main.ID, 10, "3000", "2500")
		individual := f.addRun(payroll.RunKindIndividual, payroll.RunStatusPaid, int64Ptr(1))
		f.addEntry(individual.ID, 10, "3000", "2900")

		rows, err := f.svc.GetEmployeesForPayroll(context.Background(), 11, 2025)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, payroll.RunStatusPaid, rows[0].RunStatus)
		assert.Equal(t, individual.ID, *rows[0].PayrollRunID)
		// Finalized entries keep the stored net.
		assert.Equal(t, "2900", rows[0].NetSalary.String())
	})
}

func TestPayrollService_GetEmployeesForPayroll_SkipsEmployeesHiredLater(t *testing.T) {
	f := newPayrollFixture(t)
	hired := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	f.addEmployee(2, 20, "Bob", "4000", &hired)

	rows, err := f.svc.GetEmployeesForPayroll(context.Background(), 11, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].EmployeeID)
}

// ========== BULK UPDATE ==========

func TestPayrollService_BulkUpdateEntries_OverrideSticks(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)

	// First save pins the variance manually
	first, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 10, HourVariance: intPtr(-4)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Payroll entries updated successfully", first.Message)
	assert.Equal(t, 1, first.SavedCount)
	require.Len(t, f.store.entries, 1)
	assert.True(t, f.store.entries[0].HourVarianceOverride)
	assert.Equal(t, "2925.00", f.store.entries[0].NetSalary.StringFixed(2))

	// Second save without a variance keeps the override
	gross := dec("3000")
	second, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 10, GrossSalary: &gross}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.PayrollRunID, second.PayrollRunID)
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, -4, *f.store.entries[0].HourVariance)
	assert.True(t, f.store.entries[0].HourVarianceOverride)
	assert.Equal(t, "2925.00", f.store.entries[0].NetSalary.StringFixed(2))

	rows, err := f.svc.GetEmployeesForPayroll(ctx, 11, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, -4, rows[0].HourVariance)
	assert.True(t, rows[0].HourVarianceOverride)
	assert.Equal(t, "75.00", rows[0].HourVarianceDeduction.StringFixed(2))
}

func TestPayrollService_BulkUpdateEntries_CalculatedVariance(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)

	// No attendance at all: 160 hours short of November
	_, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 10}},
	})
	require.NoError(t, err)
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, -160, *f.store.entries[0].HourVariance)
	assert.False(t, f.store.entries[0].HourVarianceOverride)
	assert.True(t, f.store.entries[0].NetSalary.IsZero())
}

func TestPayrollService_BulkUpdateEntries_ClientNetSalary(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)

	negative := dec("-50")
	_, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 10, NetSalary: &negative}},
	})
	require.NoError(t, err)
	assert.True(t, f.store.entries[0].NetSalary.IsZero())

	provided := dec("2500")
	_, err = f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 10, NetSalary: &provided}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2500", f.store.entries[0].NetSalary.String())
}

func TestPayrollService_BulkUpdateEntries_ReplacesDeductions(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	f.fullMonth(1)

	effective := "2025-11-20"
	_, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{
			AssignmentID: 10,
			Deductions: []payroll.DeductionInput{
				{DeductionTypeID: 1, Amount: dec("100")},
				{DeductionTypeID: 2, Amount: dec("50"), EffectiveDate: &effective},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, f.store.deductions, 2)
	assert.Equal(t, "2025-12-05", f.store.deductions[0].EffectiveDate.Format("2006-01-02"))
	assert.Equal(t, effective, f.store.deductions[1].EffectiveDate.Format("2006-01-02"))
	assert.Equal(t, "2850.00", f.store.entries[0].NetSalary.StringFixed(2))

	_, err = f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{
			AssignmentID: 10,
			Deductions:   []payroll.DeductionInput{{DeductionTypeID: 1, Amount: dec("10")}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, f.store.deductions, 1)
	assert.Equal(t, "2990.00", f.store.entries[0].NetSalary.StringFixed(2))
}

func TestPayrollService_BulkUpdateEntries_Errors(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	f.addEmployee(2, 20, "Bob", "3000", nil)

	_, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{Entries: []payroll.BulkEntryRequest{{AssignmentID: 10}}})
	assert.ErrorIs(t, err, payroll.ErrMonthYearRequired)

	_, err = f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{AssignmentID: 99}},
	})
	assert.ErrorIs(t, err, payroll.ErrAssignmentNotFound)

	run := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
	entry := f.addEntry(run.ID, 10, "3000", "3000")
	_, err = f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{PayrollEntryID: &entry.ID, AssignmentID: 20}},
	})
	assert.ErrorIs(t, err, payroll.ErrAssignmentMismatch)
}

func TestPayrollService_BulkUpdateEntries_SkipsFinalizedEntries(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	f.addEmployee(2, 20, "Bob", "4000", nil)

	paid, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)
	require.Len(t, f.store.entries, 1)
	entryID := f.store.entries[0].ID

	bonus := dec("250")
	resp, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{
			{PayrollEntryID: &entryID, AssignmentID: 10, BonusAmount: &bonus, HourVariance: intPtr(0)},
			{AssignmentID: 20, BonusAmount: &bonus, HourVariance: intPtr(0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SavedCount)
	assert.Equal(t, 1, resp.SkippedCount)

	require.Len(t, f.store.entries, 2)
	paidEntry := f.store.entries[0]
	assert.Equal(t, paid.PayrollRunID, paidEntry.RunID)
	assert.Equal(t, "3000", paidEntry.NetSalary.String())
	assert.True(t, paidEntry.BonusAmount.IsZero())
	assert.Equal(t, "4250.00", f.store.entries[1].NetSalary.StringFixed(2))
}

func TestPayrollService_BulkUpdateEntries_KeepsDraftIndividualRunEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	individual := f.addRun(payroll.RunKindIndividual, payroll.RunStatusDraft, int64Ptr(1))
	entry := f.addEntry(individual.ID, 10, "3000", "3000")

	bonus := dec("250")
	resp, err := f.svc.BulkUpdateEntries(ctx, payroll.BulkUpdateEntriesRequest{
		Month: 11, Year: 2025,
		Entries: []payroll.BulkEntryRequest{{PayrollEntryID: &entry.ID, AssignmentID: 10, BonusAmount: &bonus, HourVariance: intPtr(0)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.SavedCount)
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, individual.ID, f.store.entries[0].RunID)
	assert.Equal(t, "3250.00", f.store.entries[0].NetSalary.StringFixed(2))
}

// ========== RUNS ==========

func TestPayrollService_ApproveRun(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)

	created, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodStart: "2025-11-01", PeriodEnd: "2025-11-30"})
	require.NoError(t, err)

	// Default status is PAID
	resp, err := f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: created.PayrollRunID})
	require.NoError(t, err)
	assert.Equal(t, "Payroll run marked as PAID", resp.Message)
	assert.Equal(t, payroll.RunStatusPaid, resp.Status)
	require.NotNil(t, resp.PayDate)
	assert.Equal(t, "2025-12-05", *resp.PayDate)

	draft := "draft"
	_, err = f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: created.PayrollRunID, Status: &draft})
	assert.ErrorIs(t, err, payroll.ErrIllegalStatusTransition)

	approved := " approved "
	resp, err = f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: created.PayrollRunID, Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusApproved, resp.Status)

	bogus := "settled"
	_, err = f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: created.PayrollRunID, Status: &bogus})
	assert.ErrorIs(t, err, payroll.ErrInvalidRunStatus)

	_, err = f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: 999})
	assert.ErrorIs(t, err, payroll.ErrPayrollRunNotFound)
}

func TestPayrollService_CancelRun(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	run := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)

	cancelled, err := f.svc.CancelRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCancelled, cancelled.Status)

	_, err = f.svc.ApproveRun(ctx, payroll.ApproveRunRequest{ID: run.ID})
	assert.ErrorIs(t, err, payroll.ErrIllegalStatusTransition)

	_, err = f.svc.CancelRun(ctx, run.ID)
	assert.ErrorIs(t, err, payroll.ErrIllegalStatusTransition)
}

func TestPayrollService_CreateRun_Validation(t *testing.T) {
	f := newPayrollFixture(t)

	_, err := f.svc.CreateRun(context.Background(), payroll.CreateRunRequest{PeriodStart: "2025-11-30", PeriodEnd: "2025-11-01"})
	assert.Error(t, err)
	assert.Empty(t, f.store.runs)
}

func TestPayrollService_EnsureMainRun(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)

	id, created, err := f.svc.EnsureMainRun(ctx, 2025, 11)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.EnsureMainRun(ctx, 2025, 11)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	run, _ := f.store.run(id)
	assert.Equal(t, payroll.RunKindMain, run.Kind)
	assert.Equal(t, "2025-11-30", run.PayDate.Format("2006-01-02"))
}

// ========== PAYMENT ==========

func TestPayrollService_PayIndividual_RequiredFields(t *testing.T) {
	f := newPayrollFixture(t)

	_, err := f.svc.PayIndividual(context.Background(), payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10})
	assert.ErrorIs(t, err, payroll.ErrPayIndividualFieldsRequired)
	assert.Zero(t, f.tx.calls)
}

func TestPayrollService_PayIndividual_AssignmentMismatch(t *testing.T) {
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)

	_, err := f.svc.PayIndividual(context.Background(), payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 2})
	assert.ErrorIs(t, err, payroll.ErrAssignmentMismatch)
	assert.Empty(t, f.store.runs)
}

func TestPayrollService_PayIndividual_CopiesDraftMainEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	main := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
	entry := f.addEntry(main.ID, 10, "3000", "2800")

	resp, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Employee marked as paid and saved successfully", resp.Message)
	assert.Equal(t, payroll.RunStatusPaid, resp.Status)
	assert.Equal(t, "2025-12-05", resp.PayDate)
	assert.Equal(t, []int64{1}, f.store.locks)

	run, ok := f.store.run(resp.PayrollRunID)
	require.True(t, ok)
	assert.Equal(t, payroll.RunKindIndividual, run.Kind)
	assert.Equal(t, int64(1), *run.EmployeeID)

	require.Len(t, f.store.entries, 2)
	assert.Equal(t, entry.ID, f.store.entries[0].ID)
	assert.Equal(t, main.ID, f.store.entries[0].RunID)
	assert.Equal(t, resp.PayrollRunID, f.store.entries[1].RunID)

	rows, err := f.svc.GetEmployeesForPayroll(ctx, 11, 2025)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPaid, rows[0].RunStatus)
	assert.Equal(t, "2800", rows[0].NetSalary.String())
}

func TestPayrollService_PayIndividual_CancelKeepsMainEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	main := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
	entry := f.addEntry(main.ID, 10, "3500", "3300")
	f.store.entries[0].HourVariance = intPtr(0)
	f.store.entries[0].HourVarianceOverride = true
	require.NoError(t, fakeEntries{f.store}.ReplaceDeductions(ctx, entry.ID, []payroll.Deduction{{TypeID: 1, Amount: dec("200")}}))

	resp, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)

	_, err = f.svc.CancelRun(ctx, resp.PayrollRunID)
	require.NoError(t, err)

	rows, err := f.svc.GetEmployeesForPayroll(ctx, 11, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	require.NotNil(t, row.PayrollEntryID)
	assert.Equal(t, entry.ID, *row.PayrollEntryID)
	assert.Equal(t, payroll.RunStatusDraft, row.RunStatus)
	assert.Equal(t, "3500", row.GrossSalary.String())
	assert.True(t, row.HourVarianceOverride)
	require.Len(t, row.Deductions, 1)
	assert.Equal(t, "3300", row.NetSalary.String())
}

func TestPayrollService_PayIndividual_ExistingRunTakesDraftMainEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	main := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
	entry := f.addEntry(main.ID, 10, "3000", "2800")
	individual := f.addRun(payroll.RunKindIndividual, payroll.RunStatusDraft, int64Ptr(1))

	resp, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)
	assert.Equal(t, individual.ID, resp.PayrollRunID)

	require.Len(t, f.store.entries, 1)
	assert.Equal(t, entry.ID, f.store.entries[0].ID)
	assert.Equal(t, individual.ID, f.store.entries[0].RunID)
}

func TestPayrollService_PayIndividual_CopiesFinalizedMainEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	main := f.addRun(payroll.RunKindMain, payroll.RunStatusApproved, nil)
	entry := f.addEntry(main.ID, 10, "3000", "2800")
	require.NoError(t, fakeEntries{f.store}.ReplaceDeductions(ctx, entry.ID, []payroll.Deduction{{TypeID: 1, Amount: dec("200")}}))

	resp, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)

	require.Len(t, f.store.entries, 2)
	assert.Equal(t, main.ID, f.store.entries[0].RunID)
	clone := f.store.entries[1]
	assert.Equal(t, resp.PayrollRunID, clone.RunID)
	assert.Equal(t, "2800", clone.NetSalary.String())

	copied, err := fakeEntries{f.store}.ListDeductions(ctx, []int64{clone.ID})
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, "200", copied[0].Amount.String())
}

func TestPayrollService_PayIndividual_SynthesizesEntryAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	req := payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1}

	first, err := f.svc.PayIndividual(ctx, req)
	require.NoError(t, err)
	require.Len(t, f.store.entries, 1)
	assert.Equal(t, "3000", f.store.entries[0].NetSalary.String())

	second, err := f.svc.PayIndividual(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.PayrollRunID, second.PayrollRunID)
	assert.Len(t, f.store.runs, 1)
	assert.Len(t, f.store.entries, 1)
}

func TestPayrollService_PayAllUnpaid_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	hired := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.addEmployee(1, 10, "Alice", "3000", &hired)
	f.addEmployee(2, 20, "Bob", "4000", nil)
	f.addEmployee(3, 30, "Carol", "5000", &later)

	first, err := f.svc.PayAllUnpaid(ctx, payroll.PayAllRequest{Month: 11, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "All unpaid employees marked as paid successfully", first.Message)
	assert.Equal(t, 2, first.PaidCount)
	assert.Equal(t, 0, first.SkippedCount)
	assert.Equal(t, 2, first.VerifiedPaidCount)

	second, err := f.svc.PayAllUnpaid(ctx, payroll.PayAllRequest{Month: 11, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 0, second.PaidCount)
	assert.Equal(t, 2, second.SkippedCount)
	assert.Equal(t, 2, second.VerifiedPaidCount)

	individual, err := fakeRuns{f.store}.ListIndividual(ctx, november)
	require.NoError(t, err)
	assert.Len(t, individual, 2)
}

func TestPayrollService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	events, cleanup := f.hub.Subscribe(sse.TopicPayroll)
	defer cleanup()

	paid, err := f.svc.PayIndividual(ctx, payroll.PayIndividualRequest{Month: 11, Year: 2025, AssignmentID: 10, EmployeeID: 1})
	require.NoError(t, err)
	_, err = f.svc.PayAllUnpaid(ctx, payroll.PayAllRequest{Month: 11, Year: 2025})
	require.NoError(t, err)
	_, err = f.svc.CancelRun(ctx, paid.PayrollRunID)
	require.NoError(t, err)

	// failed operations publish nothing
	_, err = f.svc.CancelRun(ctx, 999)
	require.Error(t, err)

	require.Len(t, events, 3)
	first := <-events
	assert.Equal(t, "employee_paid", first.Name)
	assert.Equal(t, paid.PayrollRunID, first.Data.(map[string]interface{})["payroll_run_id"])

	second := <-events
	assert.Equal(t, "period_paid", second.Name)
	assert.Equal(t, 0, second.Data.(map[string]interface{})["paid_count"])

	third := <-events
	assert.Equal(t, "run_status_changed", third.Name)
	assert.Equal(t, payroll.RunStatusCancelled, third.Data.(payroll.PayrollRunResponse).Status)
}

func TestPayrollService_PayAllUnpaid_RequiresPeriod(t *testing.T) {
	f := newPayrollFixture(t)

	_, err := f.svc.PayAllUnpaid(context.Background(), payroll.PayAllRequest{})
	assert.ErrorIs(t, err, payroll.ErrMonthYearRequired)
}

// ========== ENTRIES ==========

func TestPayrollService_GetEntry(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	run := f.addRun(payroll.RunKindMain, payroll.RunStatusDraft, nil)
	entry := f.addEntry(run.ID, 10, "3000", "2800")

	resp, err := f.svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, resp.PayrollRunID)
	assert.Equal(t, "2025-11-01", resp.PeriodStart)
	assert.Equal(t, "Alice", *resp.EmployeeName)
	assert.NotNil(t, resp.Deductions)

	_, err = f.svc.GetEntry(ctx, 999)
	assert.ErrorIs(t, err, payroll.ErrPayrollEntryNotFound)
}

func TestPayrollService_WritePayslip(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee(1, 10, "Alice", "3000", nil)
	run := f.addRun(payroll.RunKindMain, payroll.RunStatusPaid, nil)
	entry := f.addEntry(run.ID, 10, "3000", "2800")

	var buf bytes.Buffer
	require.NoError(t, f.svc.WritePayslip(ctx, entry.ID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPayrollService_Lookups(t *testing.T) {
	f := newPayrollFixture(t)

	deductionTypes, err := f.svc.ListDeductionTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, deductionTypes, 2)

	bonusTypes, err := f.svc.ListBonusTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, bonusTypes, 1)
}
