package protocol

import (
	"strings"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/randx"
)

// Inbound is a decoded client event. Validate normalizes fields in place and
// rejects payloads that must never reach a handler.
type Inbound interface {
	Event() string
	Validate() error
}

var inboundTypes = map[string]func() Inbound{
	EventAuthenticate:      func() Inbound { return &Authenticate{} },
	EventJoinRoom:          func() Inbound { return &JoinRoom{} },
	EventRoomConfiguration: func() Inbound { return &RoomConfiguration{} },
	EventPlayerReady:       func() Inbound { return &PlayerReady{} },
	EventHostStartMatch:    func() Inbound { return &HostStartMatch{} },
	EventUpdateProgress:    func() Inbound { return &UpdateProgress{} },
	EventPlayerFinished:    func() Inbound { return &PlayerFinished{} },
	EventRequestRematch:    func() Inbound { return &RequestRematch{} },
	EventAcceptRematch:     func() Inbound { return &AcceptRematch{} },
	EventDeclineRematch:    func() Inbound { return &DeclineRematch{} },
	EventCancelRoom:        func() Inbound { return &CancelRoom{} },
	EventPing:              func() Inbound { return &Ping{} },
}

func invalid() error { return errs.NewError(errs.ErrInvalidParams) }

func validRoomCode(code *string) error {
	*code = randx.NormalizeRoomCode(*code)
	if !randx.IsValidRoomCode(*code) {
		return invalid()
	}
	return nil
}

// Target names the room and the acting user, which must match the connection's identity.
type Target struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

func (t *Target) validate() error {
	t.UserID = strings.TrimSpace(t.UserID)
	if t.UserID == "" {
		return invalid()
	}
	return validRoomCode(&t.RoomID)
}

// Actor returns the target itself so handlers can treat every room event alike.
func (t *Target) Actor() Target { return *t }

// Authenticate binds a connection to a user.
type Authenticate struct {
	UserID string `json:"userId"`
	// Token is an identity token for clients that could not pass one at upgrade.
	Token string `json:"token,omitempty"`
}

func (*Authenticate) Event() string { return EventAuthenticate }

func (a *Authenticate) Validate() error {
	a.UserID = strings.TrimSpace(a.UserID)
	if a.UserID == "" {
		return invalid()
	}
	return nil
}

type JoinRoom struct{ Target }

func (*JoinRoom) Event() string { return EventJoinRoom }
func (j *JoinRoom) Validate() error { return j.validate() }

// RoomConfiguration is sent by the host to change the race text settings.
type RoomConfiguration struct {
	RoomCode     string `json:"roomCode"`
	Type         string `json:"type"`
	Level        string `json:"level"`
	Language     string `json:"language"`
	Genre        string `json:"genre"`
	TestDuration int    `json:"testDuration"`
}

func (*RoomConfiguration) Event() string { return EventRoomConfiguration }

// Config returns the requested settings with defaults applied.
func (c *RoomConfiguration) Config() race.ContentConfig {
	return race.ContentConfig{
		Type:         c.Type,
		Level:        c.Level,
		Language:     c.Language,
		Genre:        c.Genre,
		TestDuration: c.TestDuration,
	}.WithDefaults()
}

func (c *RoomConfiguration) Validate() error {
	if err := validRoomCode(&c.RoomCode); err != nil {
		return err
	}
	return c.Config().Validate()
}

type PlayerReady struct{ Target }

func (*PlayerReady) Event() string { return EventPlayerReady }
func (p *PlayerReady) Validate() error { return p.validate() }

// HostStartMatch forces the race to start without the ready quorum.
type HostStartMatch struct {
	Target
	ClientTimestamp int64 `json:"clientTimestamp,omitempty"`
}

func (*HostStartMatch) Event() string { return EventHostStartMatch }
func (h *HostStartMatch) Validate() error { return h.validate() }

// UpdateProgress carries live typing stats.
type UpdateProgress struct {
	Target
	Progress float64 `json:"progress"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Score    float64 `json:"score"`
}

func (*UpdateProgress) Event() string { return EventUpdateProgress }

func (u *UpdateProgress) Validate() error {
	if err := u.validate(); err != nil {
		return err
	}
	if u.Progress < 0 || u.Progress > 100 {
		return invalid()
	}
	return validStats(u.WPM, u.Accuracy, u.Score)
}

// Stats returns the reported numbers.
func (u *UpdateProgress) Stats() race.Stats {
	return race.Stats{Progress: u.Progress, WPM: u.WPM, Accuracy: u.Accuracy, Score: u.Score}
}

func validStats(wpm, accuracy, score float64) error {
	if wpm < 0 || score < 0 || accuracy < 0 || accuracy > 100 {
		return invalid()
	}
	return nil
}

// FinalStats are the numbers a player finished with.
type FinalStats struct {
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
	Score    float64 `json:"score"`
}

type PlayerFinished struct {
	Target
	FinalStats *FinalStats `json:"finalStats"`
}

func (*PlayerFinished) Event() string { return EventPlayerFinished }

func (p *PlayerFinished) Validate() error {
	if err := p.validate(); err != nil {
		return err
	}
	if p.FinalStats == nil {
		return invalid()
	}
	return validStats(p.FinalStats.WPM, p.FinalStats.Accuracy, p.FinalStats.Score)
}

// Stats returns the final numbers; progress is set by the finish itself.
func (p *PlayerFinished) Stats() race.Stats {
	return race.Stats{WPM: p.FinalStats.WPM, Accuracy: p.FinalStats.Accuracy, Score: p.FinalStats.Score}
}

type RequestRematch struct{ Target }

func (*RequestRematch) Event() string { return EventRequestRematch }
func (r *RequestRematch) Validate() error { return r.validate() }

// AcceptRematch optionally overrides the settings of the finished room.
type AcceptRematch struct {
	Target
	ContentConfig *race.ContentConfig `json:"contentConfig,omitempty"`
}

func (*AcceptRematch) Event() string { return EventAcceptRematch }

func (a *AcceptRematch) Validate() error {
	if err := a.validate(); err != nil {
		return err
	}
	if a.ContentConfig == nil {
		return nil
	}
	cfg := a.ContentConfig.WithDefaults()
	a.ContentConfig = &cfg
	return cfg.Validate()
}

type DeclineRematch struct{ Target }

func (*DeclineRematch) Event() string { return EventDeclineRematch }
func (d *DeclineRematch) Validate() error { return d.validate() }

type CancelRoom struct{ Target }

func (*CancelRoom) Event() string { return EventCancelRoom }
func (c *CancelRoom) Validate() error { return c.validate() }

type Ping struct {
	Timestamp int64 `json:"timestamp,omitempty"`
}

func (*Ping) Event() string { return EventPing }
func (*Ping) Validate() error { return nil }
