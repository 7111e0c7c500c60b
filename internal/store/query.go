package store

import (
	"cmp"
	"slices"
	"strings"

	"saishi/internal/core"
)

// SortField names a sortable record attribute using its wire name.
type SortField string

const (
	SortEventDate    SortField = "eventDate"
	SortCreatedAt    SortField = "createdAt"
	SortUpdatedAt    SortField = "updatedAt"
	SortTotalRevenue SortField = "totalRevenue"
	SortName         SortField = "tournamentName"
	SortParticipants SortField = "participantCount"
)

// ParseSortField maps unknown names to SortEventDate.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.TrimSpace(s)); f {
	case SortEventDate, SortCreatedAt, SortUpdatedAt, SortTotalRevenue, SortName, SortParticipants:
		return f
	}
	return SortEventDate
}

// Filter is a conjunction of optional predicates. A nil or empty field is
// not applied; the zero Filter matches every record.
type Filter struct {
	DateFrom     *core.Date           `json:"dateFrom,omitempty"`
	DateTo       *core.Date           `json:"dateTo,omitempty"`
	Type         *core.TournamentType `json:"tournamentType,omitempty"`
	IsSettled    *bool                `json:"isSettled,omitempty"`
	IsCertified  *bool                `json:"isCertified,omitempty"`
	NameContains string               `json:"search,omitempty"`
}

// Query selects, orders and pages records. Limit <= 0 means no limit.
type Query struct {
	Filter Filter
	Sort   SortField
	Desc   bool
	Skip   int
	Limit  int
}

// MonthFilter selects records dated within the given calendar month.
func MonthFilter(year, month int) Filter {
	first, last := core.MonthRange(year, month)
	return Filter{DateFrom: &first, DateTo: &last}
}

// Match evaluates f against t. Date bounds are inclusive calendar days and
// the name test is a case-sensitive substring match.
func (f Filter) Match(t core.Tournament) bool {
	if !t.EventDate.Within(f.DateFrom, f.DateTo) {
		return false
	}
	if f.Type != nil && t.TournamentType != *f.Type {
		return false
	}
	if f.IsSettled != nil && t.IsSettled != *f.IsSettled {
		return false
	}
	if f.IsCertified != nil && t.IsCertified != *f.IsCertified {
		return false
	}
	if f.NameContains != "" && !strings.Contains(t.TournamentName, f.NameContains) {
		return false
	}
	return true
}

// Compare orders a and b by field, breaking ties by id.
func Compare(a, b core.Tournament, field SortField) int {
	var c int
	switch field {
	case SortCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case SortUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	case SortTotalRevenue:
		c = cmp.Compare(a.TotalRevenue.Cents, b.TotalRevenue.Cents)
	case SortName:
		c = strings.Compare(a.TournamentName, b.TournamentName)
	case SortParticipants:
		c = cmp.Compare(a.ParticipantCount, b.ParticipantCount)
	default:
		c = a.EventDate.Compare(b.EventDate.Time)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Select applies q to records in memory: filter, sort, then skip/limit.
// It is the reference behaviour for every adapter.
func Select(records []core.Tournament, q Query) []core.Tournament {
	out := make([]core.Tournament, 0, len(records))
	for _, t := range records {
		if q.Filter.Match(t) {
			out = append(out, t)
		}
	}
	field := ParseSortField(string(q.Sort))
	slices.SortFunc(out, func(a, b core.Tournament) int {
		if q.Desc {
			return Compare(b, a, field)
		}
		return Compare(a, b, field)
	})
	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []core.Tournament{}
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
