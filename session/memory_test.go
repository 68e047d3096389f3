package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrofel/field-assistant/schema"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 10)

	s, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	s.Append(schema.RoleUser, "Capim-amargoso na soja")
	s.LastRecommendation = "GLYPHOTAL TR"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "GLYPHOTAL TR", got.LastRecommendation)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, schema.RoleUser, got.Messages[0].Role)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Hour, 10)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 10)
	s, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 3)
	for i := 0; i < 10; i++ {
		_, err := store.Create(ctx)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(store.sessions), 3)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 10)
	s, err := store.Create(ctx)
	require.NoError(t, err)

	s.Append(schema.RoleUser, "not saved")

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages, "unsaved changes do not leak into the store")
}

func TestRecentTurns(t *testing.T) {
	s := &Session{}
	for i := 0; i < 6; i++ {
		s.Append(schema.RoleUser, "pergunta")
		s.Append(schema.RoleAssistant, "resposta")
	}
	assert.Len(t, s.RecentTurns(2), 4)
	assert.Len(t, s.RecentTurns(0), 0)
	assert.Len(t, s.RecentTurns(100), 12)
}
