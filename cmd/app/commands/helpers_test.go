package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	t.Run("Success_DateOnlyAndDateTime", func(t *testing.T) {
		start, end, err := parseRange("2025-03-01", "2025-03-01 12:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC), end)
	})

	t.Run("Error_BadStart", func(t *testing.T) {
		_, _, err := parseRange("01.03.2025", "2025-03-02")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid start date")
	})

	t.Run("Error_BadEnd", func(t *testing.T) {
		_, _, err := parseRange("2025-03-01", "tomorrow")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid end date")
	})

	t.Run("Error_EmptyRange", func(t *testing.T) {
		_, _, err := parseRange("2025-03-01", "2025-03-01")
		assert.EqualError(t, err, "end date must be after start date")
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"count": 3}))
	assert.Equal(t, "{\n  \"count\": 3\n}\n", buf.String())

	assert.Error(t, writeJSON(&buf, map[string]any{"bad": make(chan int)}))
}
