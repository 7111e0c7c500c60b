package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"saishi/internal/core"
	"saishi/internal/export"
	"saishi/internal/log"
	"saishi/internal/store"
)

type exportRequest struct {
	Filters store.Filter `json:"filters"`
	Format  string       `json:"format"`
}

// ExportResult is the JSON export payload.
type ExportResult struct {
	Tournaments []core.Tournament `json:"tournaments"`
	Total       int               `json:"total"`
	Filters     store.Filter      `json:"filters"`
	ExportTime  time.Time         `json:"exportTime"`
}

func (s *Server) handleExportQuery(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(r.Context(), w, err, log.OpExport)
		return
	}
	s.serveExport(r.Context(), w, filter, export.ParseFormat(r.URL.Query().Get("format")))
}

func (s *Server) handleExportBody(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err, log.OpExport)
		return
	}
	filter, err := ValidateFilter(req.Filters)
	if err != nil {
		writeError(r.Context(), w, err, log.OpExport)
		return
	}
	s.serveExport(r.Context(), w, filter, export.ParseFormat(req.Format))
}

// serveExport renders the whole file before writing so a failure midway
// still produces an error response instead of a truncated download.
func (s *Server) serveExport(ctx context.Context, w http.ResponseWriter, filter store.Filter, format export.Format) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	records, err := s.aggregator.ExportSet(ctx, filter)
	if err != nil {
		writeError(ctx, w, err, log.OpExport)
		return
	}
	now := s.now()
	atomic.AddInt64(&s.appMetrics.exports, 1)
	log.FromContext(ctx).InfoContext(ctx, "Export generated",
		log.FieldFormat, string(format),
		log.FieldRecords, len(records))

	if format == export.FormatJSON {
		NewJSONResponse().Data(ExportResult{
			Tournaments: nonNil(records),
			Total:       len(records),
			Filters:     filter,
			ExportTime:  now.UTC(),
		}).Write(w)
		return
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(&buf, records)
	case export.FormatXLSX:
		err = export.WriteXLSX(&buf, records)
	}
	if err != nil {
		writeError(ctx, w, fmt.Errorf("render %s export: %w", format, err), log.OpExport)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(format, now)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
