package randx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCode(t *testing.T) {
	seen := make(map[string]struct{})

	for range 200 {
		code, err := RoomCode()
		require.NoError(t, err)
		assert.Len(t, code, RoomCodeLength)
		assert.True(t, IsValidRoomCode(code), code)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 190)
}

func TestIsValidRoomCode(t *testing.T) {
	assert.True(t, IsValidRoomCode("AB12CD"))
	assert.False(t, IsValidRoomCode("ab12cd"))
	assert.False(t, IsValidRoomCode("AB12C"))
	assert.False(t, IsValidRoomCode("AB12C!"))
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "XK42PQ", NormalizeRoomCode("  xk42pq "))
}
