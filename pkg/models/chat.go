package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn records one question/answer exchange for audit purposes.
type ChatTurn struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
