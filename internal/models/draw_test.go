package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnerIndex(t *testing.T) {
	// sha256("abc123") starts with 6ca13d52, so the derived value is
	// 0x6ca13d52 = 1822506322
	tests := []struct {
		seed string
		n    int
		want int
	}{
		{"abc123", 3, 1},
		{"abc123", 10, 2},
		{"deadbeef", 3, 1},
		{"abc123", 1, 0},
	}

	for _, tt := range tests {
		got, err := WinnerIndex(tt.seed, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "seed %q n %d", tt.seed, tt.n)
	}
}

func TestWinnerIndexDeterministic(t *testing.T) {
	first, err := WinnerIndex("0f1e2d3c4b5a69788796a5b4c3d2e1f0", 7)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := WinnerIndex("0f1e2d3c4b5a69788796a5b4c3d2e1f0", 7)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWinnerIndexRequiresTickets(t *testing.T) {
	_, err := WinnerIndex("abc123", 0)
	assert.Error(t, err)

	_, err = WinnerIndex("abc123", -1)
	assert.Error(t, err)
}

func TestComputeResultHash(t *testing.T) {
	// sha256("abc123-42")
	assert.Equal(t,
		"04e56cf70bdee8ca31da28ab9470b91416fca83201a185c0db3aa67e34fbcd07",
		ComputeResultHash("abc123", 42))

	// Different ticket, different hash
	assert.NotEqual(t, ComputeResultHash("abc123", 42), ComputeResultHash("abc123", 43))

	// Different seed, different hash
	assert.NotEqual(t, ComputeResultHash("abc123", 42), ComputeResultHash("abc124", 42))
}

func TestDrawScheduleRequestValidate(t *testing.T) {
	req := &DrawScheduleRequest{}
	assert.Error(t, req.Validate(), "draw date is required")

	req.DrawDate = timeMustParse(t, "2026-10-01T12:00:00Z")
	assert.NoError(t, req.Validate())

	req.Method = "telepathic"
	assert.Error(t, req.Validate())

	req.Method = DrawLive
	assert.NoError(t, req.Validate())
}

func timeMustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
