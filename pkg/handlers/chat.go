package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/apperrors"
	"github.com/datachat-io/datachat-engine/pkg/pipeline"
)

// Runner executes one pipeline run for a question.
type Runner interface {
	Run(ctx context.Context, question string) (*pipeline.RunState, error)
}

// Recorder persists a finished turn for audit.
type Recorder interface {
	Record(ctx context.Context, sessionID, question, response string)
}

// ChatRequest is the POST /api/chat request body.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// ChatResponse is the POST /api/chat response body.
type ChatResponse struct {
	Response   string `json:"response"`
	Intent     string `json:"intent"`
	SQL        string `json:"sql,omitempty"`
	HasRetried bool   `json:"has_retried"`
}

// ChatHandler handles conversational question answering.
type ChatHandler struct {
	runner   Runner
	recorder Recorder
	logger   *zap.Logger
}

func NewChatHandler(runner Runner, recorder Recorder, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		runner:   runner,
		recorder: recorder,
		logger:   logger.Named("chat"),
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", h.Chat)
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	st, err := h.runner.Run(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyQuestion) {
			_ = ErrorResponse(w, http.StatusBadRequest, "empty_question", "question must not be empty")
			return
		}
		h.logger.Error("pipeline run failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "pipeline_error", "failed to answer the question")
		return
	}

	if h.recorder != nil && req.SessionID != "" {
		h.recorder.Record(r.Context(), req.SessionID, st.Query, st.FinalResponse)
	}

	resp := ChatResponse{
		Response:   st.FinalResponse,
		Intent:     string(st.Intent),
		HasRetried: st.HasRetried,
	}
	if st.CorrectedSQL != "" {
		resp.SQL = st.CorrectedSQL
	} else {
		resp.SQL = st.SQLQuery
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to write chat response", zap.Error(err))
	}
}
