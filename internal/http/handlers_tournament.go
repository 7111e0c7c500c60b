package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"saishi/internal/core"
	"saishi/internal/log"
)

const MsgSettlementRequired = "缺少结算状态"

type settlementRequest struct {
	IsSettled *bool `json:"isSettled"`
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	page, err := s.tournaments.List(r.Context(), ParseListParams(r.URL.Query()))
	if err != nil {
		writeError(r.Context(), w, err, log.OpList)
		return
	}
	page.Tournaments = nonNil(page.Tournaments)
	NewJSONResponse().Data(page).Write(w)
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	t, err := s.tournaments.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(r.Context(), w, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft core.TournamentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(ctx, w, err, log.OpCreate)
		return
	}
	sanitizeDraft(&draft)

	t, err := s.tournaments.Create(ctx, draft)
	if err != nil {
		writeError(ctx, w, err, log.OpCreate)
		return
	}
	atomic.AddInt64(&s.appMetrics.tournamentsCreated, 1)
	log.FromContext(ctx).InfoContext(ctx, "Tournament created via API",
		log.NewFields().WithTournament(t.ID, t.TournamentName, t.TournamentType.String()).ToSlice()...)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/tournaments/"+t.ID).
		Data(t).
		Write(w)
}

func (s *Server) handleUpdateTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft core.TournamentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(ctx, w, err, log.OpUpdate)
		return
	}
	sanitizeDraft(&draft)

	t, err := s.tournaments.Update(ctx, pathID(r), draft)
	if err != nil {
		writeError(ctx, w, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

func (s *Server) handleDeleteTournament(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.tournaments.Delete(r.Context(), id); err != nil {
		writeError(r.Context(), w, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(map[string]string{"_id": id}).Write(w)
}

func (s *Server) handleSetSettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req settlementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err, log.OpSettle)
		return
	}
	if req.IsSettled == nil {
		writeError(ctx, w, core.NewValidationError(MsgSettlementRequired), log.OpSettle)
		return
	}

	t, err := s.tournaments.SetSettlement(ctx, pathID(r), *req.IsSettled)
	if err != nil {
		writeError(ctx, w, err, log.OpSettle)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

// handlePreviewFees computes fees for unsaved input so a form can show
// them before submit.
func (s *Server) handlePreviewFees(w http.ResponseWriter, r *http.Request) {
	var draft core.TournamentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(r.Context(), w, err, log.OpPreview)
		return
	}
	fees, err := s.tournaments.Preview(draft)
	if err != nil {
		writeError(r.Context(), w, err, log.OpPreview)
		return
	}
	NewJSONResponse().Data(fees).Write(w)
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

func sanitizeDraft(d *core.TournamentDraft) {
	if d.TournamentName != nil {
		name := sanitizeInput(*d.TournamentName)
		d.TournamentName = &name
	}
}
