package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/claims", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Johnson", r.URL.Query().Get("searchTerm"))
		assert.Equal(t, "staff", r.URL.Query().Get("searchField"))
		assert.Equal(t, "Draft,Pending", r.URL.Query().Get("statuses"))
		assert.Empty(t, r.URL.Query().Get("dateFrom"))

		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "c1", "staffName": "Alice Johnson", "status": "Draft", "period": map[string]any{"from": "2024-01-03", "to": "2024-01-04"}},
				{"id": "c2", "staffName": "Bo Johnson", "status": "Pending", "period": map[string]any{"from": "not-a-date", "to": "2024-01-04"}},
			},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", Token: "tok"}, nil)
	claims, err := c.List(context.Background(), port.ListFilter{
		Statuses: []entity.Status{entity.StatusDraft, entity.StatusPending},
		Criteria: query.Criteria{SearchTerm: "Johnson", SearchField: "staff"},
	})
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "2024-01-03", claims[0].Period.From.String())
	assert.True(t, claims[1].Period.From.IsZero(), "malformed dates decode as zero")
}

func TestClient_UpdateStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/claims/status", r.URL.Path)

		var body statusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"c1"}, body.IDs)
		assert.Equal(t, entity.StatusApproved, body.Status)
		assert.Equal(t, "ok", body.Reason)

		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": "c1", "status": "Approved", "reasonApprover": "ok"}},
		})
	}))
	defer srv.Close()

	claims, err := New(Config{BaseURL: srv.URL}, nil).UpdateStatus(context.Background(), []string{"c1"}, entity.StatusApproved, "ok")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "ok", claims[0].ReasonApprover)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "server rejects transition",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusConflict, map[string]any{"success": false, "error": "invalid transition", "code": "INVALID_TRANSITION"})
			},
			wantStatus: http.StatusConflict,
			wantMsg:    "invalid transition",
		},
		{
			name: "non json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("<html>bad gateway</html>"))
			},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "malformed response",
		},
		{
			name: "error without message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false})
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := New(Config{BaseURL: srv.URL}, nil).UpdateStatus(context.Background(), []string{"c1"}, entity.StatusPaid, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, port.ErrRepositoryFailure)

			var re *port.RepositoryError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.wantStatus, re.StatusCode)
			assert.Contains(t, re.Error(), tt.wantMsg)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Config{BaseURL: url}, nil).List(context.Background(), port.ListFilter{})
	assert.ErrorIs(t, err, port.ErrRepositoryFailure)
}

func TestClient_Notifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/notifications":
			assert.Equal(t, "true", r.URL.Query().Get("unread"))
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    []map[string]any{{"id": 1, "claimId": "c1", "message": "Claim c1 moved"}},
			})
		case "/api/v1/notifications/read":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"updated": 1}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	items, err := c.Notifications(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].ClaimID)

	n, err := c.MarkRead(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
