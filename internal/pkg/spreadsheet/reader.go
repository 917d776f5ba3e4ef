package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoWorksheet       = errors.New("no worksheet found")
)

// Row is one worksheet row. Numeric cells are float64, everything else is a string.
type Row []any

// Cell returns the value at the zero-based column index, nil when the row is shorter.
func (r Row) Cell(col int) any {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// IsSupported reports whether the file name carries an extension Read understands.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	default:
		return false
	}
}

// Read parses the first worksheet of an xlsx workbook, or a csv file, into rows.
// The format is chosen by the file name extension.
func Read(filename string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func readWorkbook(r io.Reader) ([]Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoWorksheet
	}

	raw, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}

	rows := make([]Row, len(raw))
	for ri, cells := range raw {
		row := make(Row, len(cells))
		for ci, value := range cells {
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, err
			}
			cellType, err := file.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", axis, err)
			}
			row[ci] = workbookCell(cellType, value)
		}
		rows[ri] = row
	}
	return rows, nil
}

// workbookCell keeps text cells as strings so "8:12" is never read as a serial.
func workbookCell(cellType excelize.CellType, value string) any {
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if value == "" {
			return ""
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}

func readCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	rows := make([]Row, len(records))
	for i, record := range records {
		row := make(Row, len(record))
		for j, value := range record {
			if i == 0 && j == 0 {
				value = strings.TrimPrefix(value, "\ufeff")
			}
			row[j] = value
		}
		rows[i] = row
	}
	return rows, nil
}
