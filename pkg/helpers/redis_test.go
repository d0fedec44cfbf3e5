package helpers

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), "", "", 0, nil))
}

func TestNewRedisClient_Reachable(t *testing.T) {
	mr := miniredis.RunT(t)
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	rdb := NewRedisClient(context.Background(), mr.Addr(), "", 0, logger)
	require.NotNil(t, rdb)
	defer func() { _ = rdb.Close() }()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.Empty(t, buf.String())
}

func TestNewRedisClient_UnreachableIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	rdb := NewRedisClient(context.Background(), addr, "", 0, logger)
	require.NotNil(t, rdb)
	defer func() { _ = rdb.Close() }()
	assert.Contains(t, buf.String(), "redis unreachable")
}
