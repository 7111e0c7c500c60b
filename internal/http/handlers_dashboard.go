package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"saishi/internal/core"
	"saishi/internal/log"
)

// Dashboard summary kinds selected by the "type" query parameter.
const (
	SummaryFull    = "full"
	SummaryStats   = "stats"
	SummaryMonthly = "monthly"
	SummaryRecent  = "recent"
)

// handleDashboard serves every summary kind. An absent type means full.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := r.URL.Query()
	kind := strings.TrimSpace(query.Get("type"))

	var (
		data any
		err  error
	)
	switch kind {
	case "", SummaryFull:
		dash, derr := s.aggregator.Dashboard(ctx)
		dash.Recent = nonNil(dash.Recent)
		data, err = dash, derr
	case SummaryStats:
		from, to, perr := ParseDateRange(query)
		if perr != nil {
			writeError(ctx, w, perr, log.OpDashboard)
			return
		}
		data, err = s.aggregator.RangeStats(ctx, from, to)
	case SummaryMonthly:
		params, perr := ParseMonthParams(query)
		if perr != nil {
			writeError(ctx, w, perr, log.OpDashboard)
			return
		}
		data, err = s.aggregator.MonthlyStats(ctx, params.Year, params.Month)
	case SummaryRecent:
		recent, rerr := s.aggregator.Recent(ctx, ParseLimit(query, s.recentLimit))
		data, err = nonNil(recent), rerr
	default:
		BadRequestError(MsgUnknownSummaryKind, kind).Write(w)
		return
	}
	if err != nil {
		writeError(ctx, w, err, log.OpDashboard)
		return
	}
	NewJSONResponse().Data(data).Write(w)
}

// nonNil makes empty record sets encode as [] rather than null.
func nonNil(records []core.Tournament) []core.Tournament {
	if records == nil {
		return []core.Tournament{}
	}
	return records
}
