package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

// SessionRepository persists chat turns for audit.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Insert(ctx context.Context, turn *models.ChatTurn) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, session_id, question, response, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.SessionID, turn.Question, turn.Response, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}
	return nil
}

// ListBySession returns the most recent turns for a session, newest first.
func (r *SessionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, question, response, created_at
		FROM chat_sessions
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurn
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Question, &t.Response, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
