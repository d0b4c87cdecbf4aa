/*
Package randx generates cryptographically secure room codes and unique identifiers.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// RoomCodeChars is the room code alphabet: uppercase letters and digits.
	RoomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// RoomCodeLength is the fixed length of a room code.
	RoomCodeLength = 6
)

var roomCodeAlphabet = big.NewInt(int64(len(RoomCodeChars)))

// RoomCode returns a random 6-character code drawn from RoomCodeChars.
func RoomCode() (string, error) {
	result := make([]byte, RoomCodeLength)

	for i := range RoomCodeLength {
		num, err := rand.Int(rand.Reader, roomCodeAlphabet)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room code: %w", err)
		}
		result[i] = RoomCodeChars[num.Int64()]
	}

	return string(result), nil
}

// IsValidRoomCode reports whether code has the room code length and alphabet.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(RoomCodeChars, char) {
			return false
		}
	}

	return true
}

// NormalizeRoomCode upper-cases and trims a code typed by a user.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ID returns a new UUID v4 string, used for rooms, performances and connections.
func ID() string {
	return uuid.New().String()
}
