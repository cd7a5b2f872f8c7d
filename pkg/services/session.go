// Package services holds application services that sit between the HTTP
// handlers and the data layer.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

// TurnStore persists and lists chat turns.
type TurnStore interface {
	Insert(ctx context.Context, turn *models.ChatTurn) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error)
}

// defaultTurnLimit caps session listings when the caller does not ask for a
// specific page size.
const defaultTurnLimit = 50

// SessionService records question/answer turns for audit. Recording is best
// effort: a persistence failure is logged and never surfaced to the caller,
// so it cannot affect the answer the user receives. Listing, by contrast,
// surfaces errors normally since it serves an explicit read request.
type SessionService struct {
	store  TurnStore
	logger *zap.Logger
}

func NewSessionService(store TurnStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: logger.Named("sessions"),
	}
}

// Record stores one turn. A nil store means session persistence is
// disabled and Record is a no-op.
func (s *SessionService) Record(ctx context.Context, sessionID, question, response string) {
	if s.store == nil {
		return
	}

	turn := &models.ChatTurn{
		ID:        uuid.New(),
		SessionID: sessionID,
		Question:  question,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, turn); err != nil {
		s.logger.Warn("failed to record chat turn",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	}
}

// List returns the most recent turns for a session, newest first.
func (s *SessionService) List(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 || limit > defaultTurnLimit {
		limit = defaultTurnLimit
	}
	return s.store.ListBySession(ctx, sessionID, limit)
}
