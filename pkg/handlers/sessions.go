package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

// TurnLister reads recorded chat turns.
type TurnLister interface {
	List(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error)
}

// SessionsResponse is the GET /api/sessions response body.
type SessionsResponse struct {
	SessionID string            `json:"session_id"`
	Turns     []models.ChatTurn `json:"turns"`
}

// SessionsHandler serves the recorded audit trail of a session.
type SessionsHandler struct {
	lister TurnLister
	logger *zap.Logger
}

func NewSessionsHandler(lister TurnLister, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{
		lister: lister,
		logger: logger.Named("sessions"),
	}
}

// RegisterRoutes registers the sessions handler's routes on the given mux.
func (h *SessionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", h.List)
}

// List handles GET /api/sessions?session_id=...&limit=N requests.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_session_id", "session_id query parameter is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	turns, err := h.lister.List(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("failed to list session turns",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "list_failed", "failed to list session turns")
		return
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}

	if err := WriteJSON(w, http.StatusOK, SessionsResponse{SessionID: sessionID, Turns: turns}); err != nil {
		h.logger.Error("failed to write sessions response", zap.Error(err))
	}
}
