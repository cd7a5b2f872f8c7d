package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

type fakeTurnStore struct {
	turns    []*models.ChatTurn
	err      error
	gotLimit int
}

func (f *fakeTurnStore) Insert(_ context.Context, turn *models.ChatTurn) error {
	if f.err != nil {
		return f.err
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTurnStore) ListBySession(_ context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotLimit = limit
	var turns []models.ChatTurn
	for _, turn := range f.turns {
		if turn.SessionID == sessionID {
			turns = append(turns, *turn)
		}
	}
	return turns, nil
}

func TestRecordPersistsTurn(t *testing.T) {
	writer := &fakeTurnStore{}
	svc := NewSessionService(writer, zap.NewNop())

	svc.Record(context.Background(), "session-1", "how many students?", "12")

	require.Len(t, writer.turns, 1)
	turn := writer.turns[0]
	assert.Equal(t, "session-1", turn.SessionID)
	assert.Equal(t, "how many students?", turn.Question)
	assert.Equal(t, "12", turn.Response)
	assert.NotZero(t, turn.ID)
	assert.False(t, turn.CreatedAt.IsZero())
}

func TestRecordSwallowsWriteErrors(t *testing.T) {
	writer := &fakeTurnStore{err: errors.New("connection refused")}
	svc := NewSessionService(writer, zap.NewNop())

	// Must not panic or propagate the failure.
	svc.Record(context.Background(), "session-1", "q", "a")
	assert.Empty(t, writer.turns)
}

func TestRecordWithoutStoreIsNoOp(t *testing.T) {
	svc := NewSessionService(nil, zap.NewNop())
	svc.Record(context.Background(), "session-1", "q", "a")
}

func TestListReturnsSessionTurns(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewSessionService(store, zap.NewNop())

	svc.Record(context.Background(), "session-1", "first?", "one")
	svc.Record(context.Background(), "session-2", "other?", "two")
	svc.Record(context.Background(), "session-1", "second?", "three")

	turns, err := svc.List(context.Background(), "session-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 10, store.gotLimit)
}

func TestListDefaultsAndCapsLimit(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewSessionService(store, zap.NewNop())

	_, err := svc.List(context.Background(), "session-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, store.gotLimit)

	_, err = svc.List(context.Background(), "session-1", 9999)
	require.NoError(t, err)
	assert.Equal(t, 50, store.gotLimit)
}

func TestListWithoutStoreReturnsNothing(t *testing.T) {
	svc := NewSessionService(nil, zap.NewNop())
	turns, err := svc.List(context.Background(), "session-1", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
