package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name string
	err  error
}

func (c fakeChecker) Name() string                    { return c.name }
func (c fakeChecker) Check(ctx context.Context) error { return c.err }

func TestCheckAllHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(fakeChecker{name: "store"})
	registry.RegisterOptional(fakeChecker{name: "cache"})

	h := registry.Check(context.Background())

	assert.Equal(t, StatusHealthy, h.Status)
	require.Len(t, h.Checks, 2)
	assert.Equal(t, StatusHealthy, h.Checks["store"].Status)
	assert.Equal(t, StatusHealthy, h.Checks["cache"].Status)
}

func TestCheckRequiredFailureIsUnhealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(fakeChecker{name: "store", err: errors.New("connection refused")})
	registry.RegisterOptional(fakeChecker{name: "cache"})

	h := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Equal(t, StatusUnhealthy, h.Checks["store"].Status)
	assert.Equal(t, "connection refused", h.Checks["store"].Message)
}

func TestCheckOptionalFailureOnlyDegrades(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(fakeChecker{name: "store"})
	registry.RegisterOptional(fakeChecker{name: "cache", err: errors.New("timeout")})

	h := registry.Check(context.Background())

	assert.Equal(t, StatusDegraded, h.Status)
	assert.Equal(t, StatusDegraded, h.Checks["cache"].Status)
	assert.Equal(t, "timeout", h.Checks["cache"].Message)
	assert.Equal(t, StatusHealthy, h.Checks["store"].Status)
}

func TestCheckRequiredFailureOutranksDegraded(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(fakeChecker{name: "store", err: errors.New("down")})
	registry.RegisterOptional(fakeChecker{name: "cache", err: errors.New("down")})

	h := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, h.Status)
}
