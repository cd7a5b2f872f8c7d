package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

type fakeTurnLister struct {
	turns    []models.ChatTurn
	err      error
	gotID    string
	gotLimit int
}

func (f *fakeTurnLister) List(_ context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	f.gotID = sessionID
	f.gotLimit = limit
	return f.turns, f.err
}

func getSessions(t *testing.T, h *SessionsHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	return rec
}

func TestSessionsListReturnsTurns(t *testing.T) {
	lister := &fakeTurnLister{turns: []models.ChatTurn{
		{SessionID: "s-1", Question: "How many students?", Response: "12"},
	}}
	h := NewSessionsHandler(lister, zap.NewNop())

	rec := getSessions(t, h, "/api/sessions?session_id=s-1&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s-1", resp.SessionID)
	require.Len(t, resp.Turns, 1)
	assert.Equal(t, "12", resp.Turns[0].Response)
	assert.Equal(t, "s-1", lister.gotID)
	assert.Equal(t, 5, lister.gotLimit)
}

func TestSessionsListEmptySessionIsEmptyArray(t *testing.T) {
	h := NewSessionsHandler(&fakeTurnLister{}, zap.NewNop())

	rec := getSessions(t, h, "/api/sessions?session_id=s-unknown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"turns":[]`)
}

func TestSessionsListRequiresSessionID(t *testing.T) {
	h := NewSessionsHandler(&fakeTurnLister{}, zap.NewNop())

	rec := getSessions(t, h, "/api/sessions")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsListRejectsBadLimit(t *testing.T) {
	h := NewSessionsHandler(&fakeTurnLister{}, zap.NewNop())

	rec := getSessions(t, h, "/api/sessions?session_id=s-1&limit=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsListSurfacesStoreFailure(t *testing.T) {
	lister := &fakeTurnLister{err: errors.New("connection refused")}
	h := NewSessionsHandler(lister, zap.NewNop())

	rec := getSessions(t, h, "/api/sessions?session_id=s-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSessionsListRejectsPost(t *testing.T) {
	h := NewSessionsHandler(&fakeTurnLister{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions?session_id=s-1", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
