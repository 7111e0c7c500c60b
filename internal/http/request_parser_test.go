package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saishi/internal/core"
	"saishi/internal/store"
)

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve), "want validation error, got %v", err)
	return ve.Problems
}

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    MonthParams
		wantErr bool
	}{
		{name: "both present", query: url.Values{"year": {"2025"}, "month": {"3"}}, want: MonthParams{2025, 3}},
		{name: "whitespace trimmed", query: url.Values{"year": {" 2025 "}, "month": {" 12"}}, want: MonthParams{2025, 12}},
		{name: "out of range passes through", query: url.Values{"year": {"2025"}, "month": {"13"}}, want: MonthParams{2025, 13}},
		{name: "missing month", query: url.Values{"year": {"2025"}}, wantErr: true},
		{name: "non numeric", query: url.Values{"year": {"2025"}, "month": {"三"}}, wantErr: true},
		{name: "empty", query: url.Values{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query)
			if tt.wantErr {
				assert.Equal(t, []string{MsgMissingYearMonth}, problemsOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseListParams(t *testing.T) {
	p := ParseListParams(url.Values{"page": {"3"}, "limit": {"x"}, "sort": {"createdAt"}, "order": {"asc"}})
	assert.Equal(t, 3, p.Page)
	assert.Zero(t, p.Limit, "malformed limit falls back to the service default")
	assert.Equal(t, "createdAt", p.Sort)
	assert.Equal(t, "asc", p.Order)

	assert.Equal(t, 7, ParseLimit(url.Values{}, 7))
	assert.Equal(t, 3, ParseLimit(url.Values{"limit": {"3"}}, 7))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{
		"dateFrom":       {"2025-01-01"},
		"dateTo":         {"2025/01/31"},
		"tournamentType": {string(core.UniversityLeague)},
		"isSettled":      {"true"},
		"isCertified":    {"false"},
		"search":         {"  杯\x00 "},
	})
	require.NoError(t, err)
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, "2025-01-01", f.DateFrom.String())
	assert.Equal(t, "2025-01-31", f.DateTo.String())
	assert.Equal(t, core.UniversityLeague, *f.Type)
	assert.True(t, *f.IsSettled)
	assert.False(t, *f.IsCertified)
	assert.Equal(t, "杯", f.NameContains)

	empty, err := ParseFilter(url.Values{"isSettled": {""}})
	require.NoError(t, err)
	assert.Equal(t, store.Filter{}, empty, "blank parameters are not applied")
}

func TestParseFilter_ReportsEveryProblem(t *testing.T) {
	_, err := ParseFilter(url.Values{
		"dateFrom":       {"01/02/2025"},
		"isSettled":      {"yes"},
		"tournamentType": {"友谊赛"},
	})
	problems := problemsOf(t, err)
	assert.Len(t, problems, 3)
	assert.Contains(t, problems[0], "dateFrom")
	assert.Contains(t, problems[1], "isSettled")
	assert.Equal(t, core.MsgInvalidTournamentType, problems[2])
}

func TestValidateFilter(t *testing.T) {
	bad := core.TournamentType("x")
	_, err := ValidateFilter(store.Filter{Type: &bad})
	assert.Equal(t, []string{core.MsgInvalidTournamentType}, problemsOf(t, err))

	f, err := ValidateFilter(store.Filter{NameContains: " 春季 "})
	require.NoError(t, err)
	assert.Equal(t, "春季", f.NameContains)
}

func TestValidateFilter_BlankValuesAreNotApplied(t *testing.T) {
	var req exportRequest
	require.NoError(t, json.Unmarshal([]byte(`{"filters":{"dateFrom":"","dateTo":"","tournamentType":"","search":"  "}}`), &req))

	f, err := ValidateFilter(req.Filters)
	require.NoError(t, err)
	assert.Equal(t, store.Filter{}, f)

	rec := core.NewTournament(core.TournamentInput{
		TournamentName: "城市杯",
		EventDate:      core.NewDate(2025, 3, 1),
		TournamentType: core.UniversityLeague,
	}, time.Now())
	assert.True(t, f.Match(rec))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "a", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.Equal(t, []string{MsgInvalidBody}, problemsOf(t, decodeJSON(httptest.NewRecorder(), r, &dst)))

	huge := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	problemsOf(t, decodeJSON(httptest.NewRecorder(), r, &dst))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeInput("  a\tb\nc\x07 "))
	assert.Equal(t, "", sanitizeInput(" \x01 "))
}
