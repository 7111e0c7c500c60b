// Package http serves the tournament JSON API.
//
// This file implements utilities for parsing and validating HTTP request data.
// Every parser reports bad input as a *core.ValidationError so handlers can
// hand it straight to writeError.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"saishi/internal/core"
	"saishi/internal/services"
	"saishi/internal/store"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams requires both year and month. Range checking is left
// to the aggregator so the message matches every other caller.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	y, errY := strconv.Atoi(strings.TrimSpace(query.Get("year")))
	m, errM := strconv.Atoi(strings.TrimSpace(query.Get("month")))
	if errY != nil || errM != nil {
		return MonthParams{}, core.NewValidationError(MsgMissingYearMonth)
	}
	return MonthParams{Year: y, Month: m}, nil
}

// ParseListParams reads paging options. Malformed numbers fall back to
// the service defaults.
func ParseListParams(query url.Values) services.ListParams {
	return services.ListParams{
		Page:  atoiOr(query.Get("page"), 0),
		Limit: atoiOr(query.Get("limit"), 0),
		Sort:  strings.TrimSpace(query.Get("sort")),
		Order: strings.TrimSpace(query.Get("order")),
	}
}

// ParseLimit reads the "limit" parameter, or def when absent or malformed.
func ParseLimit(query url.Values, def int) int {
	return atoiOr(query.Get("limit"), def)
}

func atoiOr(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return def
}

// ParseDateRange reads the optional inclusive dateFrom/dateTo bounds.
func ParseDateRange(query url.Values) (from, to *core.Date, err error) {
	var problems []string
	from, problems = parseDateParam(query, "dateFrom", problems)
	to, problems = parseDateParam(query, "dateTo", problems)
	if err := core.NewValidationError(problems...); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseDateParam(query url.Values, key string, problems []string) (*core.Date, []string) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, problems
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, append(problems, fmt.Sprintf("%s: %s", key, MsgInvalidDateParam))
	}
	return &d, problems
}

func parseBoolParam(query url.Values, key string, problems []string) (*bool, []string) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, problems
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, append(problems, fmt.Sprintf("%s: %s", key, MsgInvalidBoolParam))
	}
	return &b, problems
}

// ParseFilter builds an export filter from query parameters. Absent
// parameters are not applied; every malformed one is reported.
func ParseFilter(query url.Values) (store.Filter, error) {
	var (
		f        store.Filter
		problems []string
	)
	f.DateFrom, problems = parseDateParam(query, "dateFrom", problems)
	f.DateTo, problems = parseDateParam(query, "dateTo", problems)
	f.IsSettled, problems = parseBoolParam(query, "isSettled", problems)
	f.IsCertified, problems = parseBoolParam(query, "isCertified", problems)
	if v := strings.TrimSpace(query.Get("tournamentType")); v != "" {
		t := core.TournamentType(v)
		f.Type = &t
	}
	f.NameContains = sanitizeInput(query.Get("search"))

	problems = append(problems, filterProblems(f)...)
	if err := core.NewValidationError(problems...); err != nil {
		return store.Filter{}, err
	}
	return f, nil
}

// ValidateFilter checks a filter decoded from a JSON body. Blank values
// decode as empty dates and types; they are dropped so that, as with
// query parameters, only supplied predicates are applied.
func ValidateFilter(f store.Filter) (store.Filter, error) {
	if f.DateFrom != nil && f.DateFrom.IsZero() {
		f.DateFrom = nil
	}
	if f.DateTo != nil && f.DateTo.IsZero() {
		f.DateTo = nil
	}
	if f.Type != nil && strings.TrimSpace(string(*f.Type)) == "" {
		f.Type = nil
	}
	f.NameContains = sanitizeInput(f.NameContains)
	if err := core.NewValidationError(filterProblems(f)...); err != nil {
		return store.Filter{}, err
	}
	return f, nil
}

func filterProblems(f store.Filter) []string {
	var problems []string
	if f.Type != nil && !f.Type.Valid() {
		problems = append(problems, core.MsgInvalidTournamentType)
	}
	return problems
}

// decodeJSON reads a size-limited JSON body into dst. Unknown fields are
// ignored so clients may echo whole records back.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return core.NewValidationError(MsgInvalidBody)
		}
		return core.NewValidationError(MsgInvalidBody + ": " + err.Error())
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
