package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saishi/internal/core"
)

func TestJSONResponseBuilder_Success(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/tournaments/1").
		Data(map[string]int{"n": 1}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/tournaments/1", w.Header().Get("Location"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, w.Body.String())
}

func TestJSONResponseBuilder_Fail(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError("bad", "a", "b").Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"bad","details":["a","b"]}`, w.Body.String())
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("create: %w", core.NewValidationError(core.MsgNameRequired, core.MsgDateRequired)),
			wantStatus: http.StatusBadRequest,
			wantError:  core.MsgNameRequired + "; " + core.MsgDateRequired,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("get x: %w", core.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  MsgNotFound,
		},
		{
			name:       "store unavailable",
			err:        fmt.Errorf("list: %w", core.Unavailable("query", errors.New("dial tcp: refused"))),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  MsgStoreUnavailable,
		},
		{
			name:       "malformed data",
			err:        core.Malformed("scan", errors.New("bad date")),
			wantStatus: http.StatusInternalServerError,
			wantError:  MsgInternal,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  MsgInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(context.Background(), w, tt.err, "test")

			assert.Equal(t, tt.wantStatus, w.Code)
			var env Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.NotContains(t, w.Body.String(), "refused", "internal detail never leaks")
		})
	}
}
