package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisAddrPrecedence(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("REDIS_HOST", "other-host")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "cache.internal:6380", redisAddr(), "REDIS_ADDR wins over host/port")
}

func TestRedisAddrHostPort(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "cache.internal:6380", redisAddr())
}

func TestRedisAddrDefault(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	assert.Equal(t, "localhost:6379", redisAddr())
}
