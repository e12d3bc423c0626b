package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokenStore(time.Minute)

	require.NoError(t, s.Set(ctx, "tok-1", 42))
	id, err := s.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = s.Get(ctx, "unknown")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	require.NoError(t, s.Delete(ctx, "tok-1"))
	_, err = s.Get(ctx, "tok-1")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokenStore(10 * time.Millisecond)

	require.NoError(t, s.Set(ctx, "tok", 7))
	time.Sleep(20 * time.Millisecond)

	_, err := s.Get(ctx, "tok")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
