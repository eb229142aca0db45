package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	token, err := EncodeCursor(Cursor{RecordedAt: at})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, at.Equal(cursor.RecordedAt))
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("not-base64!")
	assert.Error(t, err)

	// Valid base64 wrapping invalid JSON.
	_, err = DecodeCursor("bm90LWpzb24=")
	assert.Error(t, err)
}

func TestTrim(t *testing.T) {
	data := []int{1, 2, 3}

	trimmed, more := Trim(data, 2)
	assert.Equal(t, []int{1, 2}, trimmed)
	assert.True(t, more)

	trimmed, more = Trim(data, 3)
	assert.Equal(t, data, trimmed)
	assert.False(t, more)

	trimmed, more = Trim(data, 0)
	assert.Equal(t, data, trimmed)
	assert.False(t, more)
}
