package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisService_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	svc, err := NewRedisService("redis://"+mr.Addr(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, svc.Close())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, svc.Ping(ctx))
	require.NoError(t, svc.WaitForConnection(ctx, 3, 10*time.Millisecond))
	assert.NotNil(t, svc.GetClient())
}

func TestRedisService_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	svc, err := NewRedisService("redis://"+addr, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, svc.Ping(ctx))
	err = svc.WaitForConnection(ctx, 2, 5*time.Millisecond)
	assert.ErrorContains(t, err, "after 2 attempts")
}

func TestNewRedisService_InvalidURL(t *testing.T) {
	_, err := NewRedisService("http://nope", slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "invalid redis url")
}
