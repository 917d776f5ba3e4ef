package validator

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// ValidationError is a single rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects field problems; handlers render it as a 422 with details.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. The first message recorded for a field wins.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, fe := range v {
		if _, seen := result[fe.Field]; !seen {
			result[fe.Field] = fe.Message
		}
	}
	return result
}

// Fields lists the rejected fields in sorted order.
func (v ValidationErrors) Fields() []string {
	m := v.ToMap()
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when nothing was collected, so callers can `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidDate parses a YYYY-MM-DD calendar date.
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(time.DateOnly, dateStr)
	return date, err == nil
}

func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// IsValidYear accepts four-digit payroll years.
func IsValidYear(year int) bool {
	return year >= 2000 && year <= 2100
}
