package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

var errInvalidQueryInt = errors.New("invalid integer query parameter")

// idParam reads a positive numeric URL parameter, writing 400 when it is not one.
func idParam(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		response.BadRequest(w, label+" is required", nil)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+strings.ToLower(label), nil)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into dst, writing 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// queryInt returns nil when the parameter is absent.
func queryInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errInvalidQueryInt
	}
	return &v, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errInvalidQueryInt
	}
	return &v, nil
}

// monthYear parses the month and year query parameters; absent values come back as zero.
func monthYear(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	m, err := queryInt(r, "month")
	if err != nil {
		response.BadRequest(w, "Month must be a number", nil)
		return 0, 0, false
	}
	y, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, "Year must be a number", nil)
		return 0, 0, false
	}
	if m != nil {
		month = *m
	}
	if y != nil {
		year = *y
	}
	return month, year, true
}
