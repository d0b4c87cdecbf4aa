/*
Package race holds the multiplayer race domain: rooms, player performances,
the storage contract they live behind, and the lifecycle rules that move a room
from WAITING to ACTIVE and on to COMPLETED or CANCELLED.
*/
package race

import (
	"encoding/json"
	"slices"
	"time"

	"typerace/internal/pkg/errs"
)

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Open reports whether the room still takes part in a race (WAITING or ACTIVE).
func (s Status) Open() bool {
	return s == StatusWaiting || s == StatusActive
}

const (
	TypeParagraph = "paragraph"
	TypeCode      = "code"

	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelExpert       = "expert"

	LanguageJavaScript = "javascript"
	LanguagePython     = "python"
)

const (
	DefaultType         = TypeParagraph
	DefaultLevel        = LevelIntermediate
	DefaultGenre        = "general"
	DefaultTestDuration = 10

	MaxTestDuration = 600
)

var (
	levels    = []string{LevelBeginner, LevelIntermediate, LevelExpert}
	languages = []string{LanguageJavaScript, LanguagePython}

	paragraphGenres = []string{"general", "technical", "creative"}
	codeGenres      = []string{"algorithm", "dataStructure", "utility"}
)

// ContentConfig describes the text a race is run on. Language is empty unless
// Type is code.
type ContentConfig struct {
	Type         string `json:"type"`
	Level        string `json:"level"`
	Language     string `json:"language"`
	Genre        string `json:"genre"`
	TestDuration int    `json:"testDuration"`
}

// MarshalJSON writes an empty language as null.
func (c ContentConfig) MarshalJSON() ([]byte, error) {
	type plain ContentConfig
	out := struct {
		plain
		Language *string `json:"language"`
	}{plain: plain(c)}

	if c.Language != "" {
		out.Language = &c.Language
	}

	return json.Marshal(out)
}

// WithDefaults fills unset fields the same way a fresh room is configured.
func (c ContentConfig) WithDefaults() ContentConfig {
	if c.Type == "" {
		c.Type = DefaultType
	}
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Genre == "" {
		if c.Type == TypeCode {
			c.Genre = codeGenres[0]
		} else {
			c.Genre = DefaultGenre
		}
	}
	if c.TestDuration == 0 {
		c.TestDuration = DefaultTestDuration
	}
	if c.Type != TypeCode {
		c.Language = ""
	}
	return c
}

// Validate checks the type, level, language and genre combination.
func (c ContentConfig) Validate() error {
	switch c.Type {
	case TypeParagraph:
		if !slices.Contains(paragraphGenres, c.Genre) {
			return errs.NewError(errs.ErrInvalidGenre)
		}
	case TypeCode:
		if !slices.Contains(languages, c.Language) {
			return errs.NewError(errs.ErrInvalidLanguage)
		}
		if !slices.Contains(codeGenres, c.Genre) {
			return errs.NewError(errs.ErrInvalidGenre)
		}
	default:
		return errs.NewError(errs.ErrInvalidContentType)
	}

	if !slices.Contains(levels, c.Level) {
		return errs.NewError(errs.ErrInvalidLevel)
	}

	if c.TestDuration <= 0 || c.TestDuration > MaxTestDuration {
		return errs.NewError(errs.ErrInvalidDuration)
	}

	return nil
}

// Genres lists the genres accepted for a content type.
func Genres(contentType string) []string {
	if contentType == TypeCode {
		return slices.Clone(codeGenres)
	}
	return slices.Clone(paragraphGenres)
}

// Room is one race between a host and at most one guest, keyed by its code.
type Room struct {
	Code    string
	HostID  string
	GuestID string
	Status  Status

	Config  ContentConfig
	Content string

	WinnerID string

	// StartTime is the shared instant both clients start their timers from.
	// It is set once, by the ready quorum or a forced host start.
	StartTime *time.Time

	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
}

// IsSeated reports whether userID is the room's host or guest.
func (r *Room) IsSeated(userID string) bool {
	return userID != "" && (r.HostID == userID || r.GuestID == userID)
}

// Stats are the live numbers a client reports while typing.
type Stats struct {
	Progress float64 `json:"progress"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Score    float64 `json:"score"`
}

// Performance is one player's record within a room.
type Performance struct {
	RoomCode string
	UserID   string
	Name     string
	IsHost   bool
	IsReady  bool

	Stats

	FinishedAt *time.Time
	UpdatedAt  time.Time
}

// Finished reports whether the player completed the text.
func (p *Performance) Finished() bool {
	return p.FinishedAt != nil
}

// newPerformance returns a zeroed record. Accuracy starts at 100 because no
// keystroke has been wrong yet.
func newPerformance(roomCode, userID, name string, isHost bool, now time.Time) *Performance {
	return &Performance{
		RoomCode:  roomCode,
		UserID:    userID,
		Name:      name,
		IsHost:    isHost,
		Stats:     Stats{Accuracy: 100},
		UpdatedAt: now,
	}
}

// Player identifies a signed-in user and the name other players see.
type Player struct {
	UserID string
	Name   string
}
