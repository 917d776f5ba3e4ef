package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

// Spreadsheet columns: A employee, C date, D time in, E time out.
const (
	colEmployee = 0
	colDate     = 2
	colTimeIn   = 3
	colTimeOut  = 4
)

const importArchivePrefix = "imports/attendance/"

type AttendanceServiceImpl struct {
	tx       database.Transactor
	repo     attendance.AttendanceRepository
	resolver attendance.EmployeeResolver
	storage  storage.FileStorage
	events   sse.Publisher
}

func NewAttendanceService(
	tx database.Transactor,
	repo attendance.AttendanceRepository,
	resolver attendance.EmployeeResolver,
	fileStorage storage.FileStorage,
	events sse.Publisher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:       tx,
		repo:     repo,
		resolver: resolver,
		storage:  fileStorage,
		events:   events,
	}
}

// ========== IMPORT ==========

// Import implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Import(ctx context.Context, file attendance.ImportFile) (attendance.ImportSummary, error) {
	var summary attendance.ImportSummary

	if file.Filename == "" || len(file.Content) == 0 {
		return summary, attendance.ErrImportFileRequired
	}
	if !spreadsheet.IsSupported(file.Filename) {
		return summary, attendance.ErrUnsupportedImportFile
	}

	rows, err := spreadsheet.Read(file.Filename, bytes.NewReader(file.Content))
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return summary, attendance.ErrUnsupportedImportFile
	case errors.Is(err, spreadsheet.ErrNoWorksheet):
		return summary, attendance.ErrEmptyWorksheet
	case err != nil:
		return summary, fmt.Errorf("failed to read import file: %w", err)
	}
	if len(rows) == 0 {
		return summary, attendance.ErrEmptyWorksheet
	}

	// Row 1 is the header
	data := rows[1:]
	summary.TotalRowsRead = len(data)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, r := range data {
			row := attendance.ImportRow{
				EmployeeIdentifier: r.Cell(colEmployee),
				Date:               r.Cell(colDate),
				TimeIn:             r.Cell(colTimeIn),
				TimeOut:            r.Cell(colTimeOut),
			}
			if err := s.importRow(ctx, row, &summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return attendance.ImportSummary{}, err
	}

	summary.ArchivedFile = s.archive(ctx, file)

	slog.InfoContext(ctx, "attendance import finished",
		"filename", file.Filename,
		"total_rows_read", summary.TotalRowsRead,
		"valid_rows", summary.ValidRows,
		"inserted_records", summary.InsertedRecords,
		"updated_records", summary.UpdatedRecords,
		"skipped_invalid_employee", summary.SkippedInvalidEmployee,
		"skipped_empty_rows", summary.SkippedEmptyRows,
	)
	if s.events != nil {
		s.events.Publish(sse.TopicAttendance, sse.Event{Name: "import_finished", Data: summary})
	}

	return summary, nil
}

func (s *AttendanceServiceImpl) importRow(ctx context.Context, row attendance.ImportRow, summary *attendance.ImportSummary) error {
	identifier := identifierString(row.EmployeeIdentifier)
	if row.IsBlank() || identifier == "" {
		summary.SkippedEmptyRows++
		return nil
	}

	employeeID, err := s.resolver.ResolveEmployeeID(ctx, identifier)
	if errors.Is(err, attendance.ErrEmployeeNotFound) {
		summary.SkippedInvalidEmployee++
		return nil
	}
	if err != nil {
		return err
	}
	summary.ValidRows++

	date, ok := attendance.NormalizeDate(row.Date)
	if !ok {
		summary.SkippedEmptyRows++
		return nil
	}

	mark, checkIn, checkOut, ok := attendance.DeriveMark(attendance.NormalizeTime(row.TimeIn), attendance.NormalizeTime(row.TimeOut))
	if !ok {
		summary.SkippedEmptyRows++
		return nil
	}

	_, inserted, err := s.repo.Upsert(ctx, attendance.AttendanceRecord{
		EmployeeID: employeeID,
		Date:       date,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Mark:       mark,
	})
	if err != nil {
		return err
	}
	if inserted {
		summary.InsertedRecords++
	} else {
		summary.UpdatedRecords++
	}
	return nil
}

// archive keeps a copy of the uploaded file. The rows are already committed, so a failure is only logged.
func (s *AttendanceServiceImpl) archive(ctx context.Context, file attendance.ImportFile) string {
	if s.storage == nil {
		return ""
	}
	key := importArchivePrefix + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	stored, err := s.storage.Save(ctx, key, bytes.NewReader(file.Content))
	if err != nil {
		slog.WarnContext(ctx, "failed to archive attendance import", "filename", file.Filename, "error", err)
		return ""
	}
	return stored
}

// identifierString renders the employee cell; whole-number cells lose their ".0".
func identifierString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}

// ========== CRUD ==========

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, attendance.NewAttendanceResponse(rec))
	}
	return result, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id int64) (attendance.AttendanceResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(rec), nil
}

// Create implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Create(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, _ := attendance.NormalizeDate(req.AttendanceDate)
	mark := attendance.MarkPresent
	if req.Mark != nil {
		mark = attendance.Mark(*req.Mark)
	}

	saved, _, err := s.repo.Upsert(ctx, attendance.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		Date:       date,
		CheckIn:    normalizeClock(req.CheckIn),
		CheckOut:   normalizeClock(req.CheckOut),
		Mark:       mark,
		Notes:      req.Notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return s.Get(ctx, saved.ID)
}

// Update implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Update(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.AttendanceDate != nil {
		rec.Date, _ = attendance.NormalizeDate(*req.AttendanceDate)
	}
	if req.CheckIn != nil {
		rec.CheckIn = normalizeClock(req.CheckIn)
	}
	if req.CheckOut != nil {
		rec.CheckOut = normalizeClock(req.CheckOut)
	}
	if req.Mark != nil {
		rec.Mark = attendance.Mark(*req.Mark)
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.Get(ctx, rec.ID)
}

// Delete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// normalizeClock stores an optional clock as "HH:MM"; empty or unusable values clear it.
func normalizeClock(raw *string) *string {
	if raw == nil {
		return nil
	}
	return attendance.NormalizeTime(*raw).Ptr()
}
