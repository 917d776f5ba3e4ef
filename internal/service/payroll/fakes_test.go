package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// ========== ATTENDANCE ==========

type fakeAttendance struct {
	records []attendance.AttendanceRecord
	err     error
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{}
}

func (f *fakeAttendance) add(employeeID int64, date time.Time, in, out string, mark attendance.Mark) {
	rec := attendance.AttendanceRecord{ID: int64(len(f.records) + 1), EmployeeID: employeeID, Date: date, Mark: mark}
	if in != "" {
		rec.CheckIn = &in
	}
	if out != "" {
		rec.CheckOut = &out
	}
	f.records = append(f.records, rec)
}

func (f *fakeAttendance) Upsert(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, bool, error) {
	return record, true, nil
}

func (f *fakeAttendance) GetByID(ctx context.Context, id int64) (attendance.AttendanceRecord, error) {
	return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendance) Update(ctx context.Context, record attendance.AttendanceRecord) error {
	return nil
}

func (f *fakeAttendance) Delete(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeAttendance) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeAttendance) ListForEmployeePeriod(ctx context.Context, employeeID int64, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []attendance.AttendanceRecord
	for _, r := range f.records {
		if r.EmployeeID == employeeID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ========== TRANSACTOR ==========

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// ========== PAYROLL STORE ==========

type memStore struct {
	runs       []payroll.PayrollRun
	entries    []payroll.PayrollEntry
	deductions []payroll.Deduction
	bonuses    []payroll.Bonus
	employees  []payroll.PayrollEmployee
	locks      []int64
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) run(id int64) (payroll.PayrollRun, bool) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, true
		}
	}
	return payroll.PayrollRun{}, false
}

func (m *memStore) inPeriod(r payroll.PayrollRun, p payroll.Period) bool {
	return r.Status != payroll.RunStatusCancelled && payroll.PeriodOf(r.PeriodStart) == p
}

// decorate fills the joined fields the SQL repository would select.
func (m *memStore) decorate(e payroll.PayrollEntry) payroll.PayrollEntry {
	if r, ok := m.run(e.RunID); ok {
		e.RunStatus, e.RunKind, e.RunPayDate = r.Status, r.Kind, r.PayDate
		e.PeriodStart, e.PeriodEnd = r.PeriodStart, r.PeriodEnd
	}
	for _, emp := range m.employees {
		if emp.AssignmentID == e.AssignmentID {
			name := emp.EmployeeName
			e.EmployeeID, e.EmployeeName = emp.EmployeeID, &name
		}
	}
	return e
}

func (m *memStore) entriesOf(runID int64) []payroll.PayrollEntry {
	var out []payroll.PayrollEntry
	for _, e := range m.entries {
		if e.RunID == runID {
			out = append(out, m.decorate(e))
		}
	}
	return out
}

type fakeRuns struct{ *memStore }

func (f fakeRuns) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	run.ID = f.id()
	run.CreatedAt = time.Now()
	f.runs = append(f.runs, run)
	return run, nil
}

func (f fakeRuns) GetByID(ctx context.Context, id int64) (payroll.PayrollRun, error) {
	if r, ok := f.run(id); ok {
		return r, nil
	}
	return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
}

func (f fakeRuns) List(ctx context.Context) ([]payroll.PayrollRun, error) {
	out := append([]payroll.PayrollRun(nil), f.runs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeRuns) UpdateStatus(ctx context.Context, id int64, status payroll.RunStatus, payDate *time.Time) (payroll.PayrollRun, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			f.runs[i].Status = status
			f.runs[i].PayDate = payDate
			return f.runs[i], nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
}

func (f fakeRuns) FindMain(ctx context.Context, period payroll.Period) (payroll.PayrollRun, error) {
	for i := len(f.runs) - 1; i >= 0; i-- {
		if r := f.runs[i]; r.Kind == payroll.RunKindMain && f.inPeriod(r, period) {
			return r, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
}

func (f fakeRuns) FindIndividual(ctx context.Context, employeeID int64, period payroll.Period) (payroll.PayrollRun, error) {
	runs, _ := f.ListIndividual(ctx, period)
	var found *payroll.PayrollRun
	for i, r := range runs {
		if *r.EmployeeID != employeeID {
			continue
		}
		if r.Status == payroll.RunStatusPaid {
			return r, nil
		}
		if found == nil {
			found = &runs[i]
		}
	}
	if found == nil {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	return *found, nil
}

func (f fakeRuns) ListIndividual(ctx context.Context, period payroll.Period) ([]payroll.PayrollRun, error) {
	var out []payroll.PayrollRun
	for i := len(f.runs) - 1; i >= 0; i-- {
		if r := f.runs[i]; r.Kind == payroll.RunKindIndividual && f.inPeriod(r, period) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeRuns) CountPaidIndividual(ctx context.Context, period payroll.Period) (int, error) {
	n := 0
	for _, r := range f.runs {
		if r.Kind == payroll.RunKindIndividual && r.Status == payroll.RunStatusPaid && f.inPeriod(r, period) {
			n++
		}
	}
	return n, nil
}

func (f fakeRuns) LockEmployeePeriod(ctx context.Context, employeeID int64, period payroll.Period) error {
	f.memStore.locks = append(f.memStore.locks, employeeID)
	return nil
}

type fakeEntries struct{ *memStore }

func (f fakeEntries) Create(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
	entry.ID = f.id()
	f.entries = append(f.entries, entry)
	return f.decorate(entry), nil
}

func (f fakeEntries) GetByID(ctx context.Context, id int64) (payroll.PayrollEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return f.decorate(e), nil
		}
	}
	return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
}

func (f fakeEntries) Update(ctx context.Context, entry payroll.PayrollEntry) error {
	for i := range f.entries {
		if f.entries[i].ID == entry.ID {
			f.entries[i] = entry
			return nil
		}
	}
	return payroll.ErrPayrollEntryNotFound
}

func (f fakeEntries) Reparent(ctx context.Context, entryID, runID int64) error {
	for i := range f.entries {
		if f.entries[i].ID == entryID {
			f.entries[i].RunID = runID
			return nil
		}
	}
	return payroll.ErrPayrollEntryNotFound
}

func (f fakeEntries) ListByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error) {
	var out []payroll.PayrollEntry
	for i := len(f.runs) - 1; i >= 0; i-- {
		if r := f.runs[i]; f.inPeriod(r, period) {
			out = append(out, f.entriesOf(r.ID)...)
		}
	}
	return out, nil
}

func (f fakeEntries) FindByRunAndAssignment(ctx context.Context, runID, assignmentID int64) (payroll.PayrollEntry, error) {
	for _, e := range f.entriesOf(runID) {
		if e.AssignmentID == assignmentID {
			return e, nil
		}
	}
	return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
}

func (f fakeEntries) LatestMainEntry(ctx context.Context, assignmentID int64, period payroll.Period) (payroll.PayrollEntry, error) {
	for i := len(f.runs) - 1; i >= 0; i-- {
		r := f.runs[i]
		if r.Kind != payroll.RunKindMain || !f.inPeriod(r, period) {
			continue
		}
		for _, e := range f.entriesOf(r.ID) {
			if e.AssignmentID == assignmentID {
				return e, nil
			}
		}
	}
	return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
}

func (f fakeEntries) ListDeductions(ctx context.Context, entryIDs []int64) ([]payroll.Deduction, error) {
	var out []payroll.Deduction
	for _, d := range f.deductions {
		for _, id := range entryIDs {
			if d.EntryID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f fakeEntries) ListBonuses(ctx context.Context, entryIDs []int64) ([]payroll.Bonus, error) {
	var out []payroll.Bonus
	for _, b := range f.bonuses {
		for _, id := range entryIDs {
			if b.EntryID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (f fakeEntries) ReplaceDeductions(ctx context.Context, entryID int64, deductions []payroll.Deduction) error {
	kept := f.deductions[:0]
	for _, d := range f.deductions {
		if d.EntryID != entryID {
			kept = append(kept, d)
		}
	}
	for _, d := range deductions {
		d.ID = f.id()
		d.EntryID = entryID
		kept = append(kept, d)
	}
	f.memStore.deductions = kept
	return nil
}

func (f fakeEntries) ReplaceBonuses(ctx context.Context, entryID int64, bonuses []payroll.Bonus) error {
	kept := f.bonuses[:0]
	for _, b := range f.bonuses {
		if b.EntryID != entryID {
			kept = append(kept, b)
		}
	}
	for _, b := range bonuses {
		b.ID = f.id()
		b.EntryID = entryID
		kept = append(kept, b)
	}
	f.memStore.bonuses = kept
	return nil
}

func (f fakeEntries) ListDeductionTypes(ctx context.Context) ([]payroll.DeductionType, error) {
	return []payroll.DeductionType{{ID: 1, Name: "Late"}, {ID: 2, Name: "Loan"}}, nil
}

func (f fakeEntries) ListBonusTypes(ctx context.Context) ([]payroll.BonusType, error) {
	return []payroll.BonusType{{ID: 1, Name: "Performance"}}, nil
}

type fakeWorkforce struct{ *memStore }

func (f fakeWorkforce) ListActiveEmployees(ctx context.Context) ([]payroll.PayrollEmployee, error) {
	return f.employees, nil
}

func (f fakeWorkforce) GetAssignment(ctx context.Context, assignmentID int64) (payroll.Assignment, error) {
	for _, e := range f.employees {
		if e.AssignmentID == assignmentID {
			return payroll.Assignment{ID: e.AssignmentID, EmployeeID: e.EmployeeID, StartSalary: e.StartSalary}, nil
		}
	}
	return payroll.Assignment{}, payroll.ErrAssignmentNotFound
}
