package entitydb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
)

func TestGenerator_NextAndReseed(t *testing.T) {
	g, err := NewGenerator("1")
	require.NoError(t, err)

	assert.Equal(t, "1", g.Next())
	assert.Equal(t, "2", g.Next())
	assert.Equal(t, "3", g.Next())

	require.NoError(t, g.Reseed("A"))
	assert.Equal(t, "A", g.Current())
	assert.Equal(t, "A", g.Next())
	assert.Equal(t, "B", g.Next())
}

func TestGenerator_StrictlyIncreasing(t *testing.T) {
	g, err := NewGenerator("FF")
	require.NoError(t, err)

	seen := make(map[string]bool)
	var last uint64
	for i := 0; i < 1000; i++ {
		handle := g.Next()
		require.False(t, seen[handle], "duplicate handle %s", handle)
		seen[handle] = true
		value, err := parseHandle(handle)
		require.NoError(t, err)
		assert.Greater(t, value, last)
		last = value
	}
	assert.Equal(t, "4E7", g.Current())
}

func TestGenerator_InvalidSeed(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{"null handle", "0"},
		{"not hex", "XYZ"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.seed)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidHandle))
		})
	}
}

func TestGenerator_ReseedBackwards(t *testing.T) {
	g, err := NewGenerator("100")
	require.NoError(t, err)
	require.NoError(t, g.Reseed("10"))
	assert.Equal(t, "10", g.Next())
}

func TestGenerator_AdvancePast(t *testing.T) {
	g, err := NewGenerator("10")
	require.NoError(t, err)

	g.advancePast("5")
	assert.Equal(t, "10", g.Current(), "never goes backwards")

	g.advancePast("2F")
	assert.Equal(t, "30", g.Current())
}
