package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundWeight(t *testing.T) {
	// Weight is optional on the rule; the column is NOT NULL, so the
	// binding must never hand the driver a nil.
	assert.Equal(t, DefaultWeight, boundWeight(nil))

	w := 25
	assert.Equal(t, 25, boundWeight(&w))

	zero := 0
	assert.Equal(t, 0, boundWeight(&zero))
}

func TestGenerateRuleCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateRuleCode()
		require.True(t, strings.HasPrefix(code, "AR-"))
		require.Len(t, code, 11)
		assert.Equal(t, strings.ToUpper(code), code)
		seen[code] = true
	}
	assert.Len(t, seen, 100)
}

func TestNullable(t *testing.T) {
	assert.False(t, nullable("").Valid)

	v := nullable("2026-01-01")
	assert.True(t, v.Valid)
	assert.Equal(t, "2026-01-01", v.String)
}
