package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUnderBurst(t *testing.T) {
	m := NewMemoryLimiter(5)
	defer m.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ok, err := m.Allow(ctx, "ip1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d is within the burst", i)
	}
}

func TestMemoryLimiterDeniesAfterBurst(t *testing.T) {
	m := NewMemoryLimiter(3)
	defer m.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "ip1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := m.Allow(ctx, "ip1")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request in the same minute is limited")
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	m := NewMemoryLimiter(1)
	defer m.Close()

	ctx := context.Background()
	ok, err := m.Allow(ctx, "ip1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Allow(ctx, "ip1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Allow(ctx, "ip2")
	require.NoError(t, err)
	assert.True(t, ok, "a different key has its own bucket")
}

func TestMemoryLimiterCloseIsIdempotent(t *testing.T) {
	m := NewMemoryLimiter(1)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestNoopLimiterAlwaysAllows(t *testing.T) {
	l := NewNoopLimiter()
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "ip1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
