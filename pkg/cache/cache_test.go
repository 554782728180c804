package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "images", []byte(`["a"]`), 0))
	got, err := m.Get(ctx, "images")
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a"]`), got)

	require.NoError(t, m.Delete(ctx, "images"))
	_, err = m.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "images", []byte("v"), 10*time.Millisecond))
	_, err := m.Get(ctx, "images")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = m.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryDeleteMissingIsNoop(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Delete(context.Background(), "nope"))
}
