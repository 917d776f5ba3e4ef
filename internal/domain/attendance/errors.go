package attendance

import "errors"

var (
	ErrAttendanceNotFound    = errors.New("attendance record not found")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrImportFileRequired    = errors.New("import file is required")
	ErrUnsupportedImportFile = errors.New("unsupported import file type, expected .xlsx or .csv")
	ErrEmptyWorksheet        = errors.New("worksheet is empty")
)
