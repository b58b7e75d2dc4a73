package uid

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSnowflake_Generate(t *testing.T) {
	g, err := NewSnowflakeNode(7)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	var prev int64
	for range 1000 {
		id := g.Generate()
		assert.Greater(t, id, prev)
		prev = id
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestSnowflake_NodeRange(t *testing.T) {
	_, err := NewSnowflakeNode(1024)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)

	_, err = NewSnowflakeNode(-1)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)

	g, err := NewSnowflake()
	require.NoError(t, err)
	assert.Positive(t, g.Generate())
}

func TestNumericCode_Generate(t *testing.T) {
	g := NewNumericCode()

	for range 2000 {
		code := g.Generate()
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}

	small := NewNumericCodeRange(9, 7)
	seen := map[string]bool{}
	for range 300 {
		seen[small.Generate()] = true
	}
	assert.Equal(t, map[string]bool{"7": true, "8": true, "9": true}, seen)
}
