package protocol

import (
	"time"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
)

// DisplayNameSelf replaces the viewer's own name in player lists.
const DisplayNameSelf = "You"

type Authenticated struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type ActiveRoom struct {
	RoomID    string      `json:"roomId"`
	Status    race.Status `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ActiveRoomsAvailable struct {
	Rooms []ActiveRoom `json:"rooms"`
}

// NewActiveRooms lists rooms a reconnecting client can resume.
func NewActiveRooms(rooms []*race.Room) ActiveRoomsAvailable {
	out := ActiveRoomsAvailable{Rooms: make([]ActiveRoom, 0, len(rooms))}
	for _, r := range rooms {
		out.Rooms = append(out.Rooms, ActiveRoom{RoomID: r.Code, Status: r.Status, CreatedAt: r.CreatedAt})
	}
	return out
}

// PlayerView is one performance as a given viewer sees it.
type PlayerView struct {
	UserID        string  `json:"userId"`
	Name          string  `json:"name"`
	DisplayName   string  `json:"displayName"`
	IsHost        bool    `json:"isHost"`
	IsReady       bool    `json:"isReady"`
	IsCurrentUser bool    `json:"isCurrentUser"`
	Progress      float64 `json:"progress"`
	WPM           float64 `json:"wpm"`
	Accuracy      float64 `json:"accuracy"`
	Score         float64 `json:"score"`
}

// NewPlayerViews renders performances for viewerID.
func NewPlayerViews(perfs []*race.Performance, viewerID string) []PlayerView {
	views := make([]PlayerView, 0, len(perfs))
	for _, p := range perfs {
		v := PlayerView{
			UserID:      p.UserID,
			Name:        p.Name,
			DisplayName: p.Name,
			IsHost:      p.IsHost,
			IsReady:     p.IsReady,
			Progress:    p.Progress,
			WPM:         p.WPM,
			Accuracy:    p.Accuracy,
			Score:       p.Score,
		}
		if p.UserID == viewerID {
			v.IsCurrentUser = true
			v.DisplayName = DisplayNameSelf
		}
		views = append(views, v)
	}
	return views
}

// RoomJoined is the full snapshot sent to a player entering a room.
type RoomJoined struct {
	RoomID           string             `json:"roomId"`
	Status           race.Status        `json:"status"`
	ContentConfig    race.ContentConfig `json:"contentConfig"`
	GeneratedContent string             `json:"generatedContent"`
	StartTime        *time.Time         `json:"startTime,omitempty"`
	Players          []PlayerView       `json:"players"`
	PlayerInfo       *PlayerView        `json:"playerInfo"`
	OpponentInfo     *PlayerView        `json:"opponentInfo"`
	IsHost           bool               `json:"isHost"`
}

// NewRoomJoined builds the snapshot for viewerID.
func NewRoomJoined(room *race.Room, perfs []*race.Performance, viewerID string) RoomJoined {
	out := RoomJoined{
		RoomID:           room.Code,
		Status:           room.Status,
		ContentConfig:    room.Config,
		GeneratedContent: room.Content,
		StartTime:        room.StartTime,
		Players:          NewPlayerViews(perfs, viewerID),
	}

	for i := range out.Players {
		p := &out.Players[i]
		switch {
		case p.IsCurrentUser:
			out.PlayerInfo = p
			out.IsHost = p.IsHost
		case out.OpponentInfo == nil:
			out.OpponentInfo = p
		}
	}
	return out
}

type PlayerJoined struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type RoomUpdated struct {
	RoomID           string             `json:"roomId"`
	ContentConfig    race.ContentConfig `json:"contentConfig"`
	GeneratedContent string             `json:"generatedContent"`
}

type PlayerReadyNotice struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// GameStarting carries the shared instant both clients start their timers from.
type GameStarting struct {
	StartTime time.Time `json:"startTime"`
	RoomID    string    `json:"roomId"`
	Forced    bool      `json:"forced,omitempty"`
	HostID    string    `json:"hostId,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

type OpponentProgress struct {
	UserID string `json:"userId"`
	race.Stats
	Timestamp time.Time `json:"timestamp"`
}

type OpponentFinished struct {
	UserID     string    `json:"userId"`
	WPM        float64   `json:"wpm"`
	Accuracy   float64   `json:"accuracy"`
	Score      float64   `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Standing is one row of the final results.
type Standing struct {
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	IsHost     bool       `json:"isHost"`
	WPM        float64    `json:"wpm"`
	Accuracy   float64    `json:"accuracy"`
	Score      float64    `json:"score"`
	FinishedAt *time.Time `json:"finishedAt"`
}

type GameCompleted struct {
	RoomID       string     `json:"roomId"`
	WinnerID     *string    `json:"winnerId"`
	IsTie        bool       `json:"isTie"`
	Performances []Standing `json:"performances"`
}

// NewGameCompleted renders an outcome, best score first.
func NewGameCompleted(o *race.Outcome) GameCompleted {
	out := GameCompleted{
		RoomID:       o.RoomCode,
		IsTie:        o.IsTie,
		Performances: make([]Standing, 0, len(o.Standings)),
	}
	if o.WinnerID != "" {
		winner := o.WinnerID
		out.WinnerID = &winner
	}
	for _, p := range o.Standings {
		out.Performances = append(out.Performances, Standing{
			UserID:     p.UserID,
			Name:       p.Name,
			IsHost:     p.IsHost,
			WPM:        p.WPM,
			Accuracy:   p.Accuracy,
			Score:      p.Score,
			FinishedAt: p.FinishedAt,
		})
	}
	return out
}

type RematchRequested struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type RematchCreated struct {
	OriginalRoomID string `json:"originalRoomId"`
	NewRoomID      string `json:"newRoomId"`
	HostID         string `json:"hostId"`
}

type RematchDeclined struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type PlayerDisconnected struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type GameCancelled struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

// Ack answers an event that carried an ackId.
type Ack struct {
	Received  bool          `json:"received"`
	Timestamp int64         `json:"timestamp"`
	Error     *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload is sent to the connection whose event failed.
type ErrorPayload struct {
	Code    int       `json:"code"`
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
	Event   string    `json:"event,omitempty"`
}

// NewErrorPayload describes err for the given inbound event.
func NewErrorPayload(err *errs.CustomError, event string) ErrorPayload {
	return ErrorPayload{Code: err.Code, Kind: err.Kind, Message: err.Message, Event: event}
}
