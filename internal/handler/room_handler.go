package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"typerace/internal/app/protocol"
	"typerace/internal/app/race"
	"typerace/internal/pkg/auth/jwt"
	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/randx"
	"typerace/internal/pkg/req"
	"typerace/internal/pkg/resp"
)

type CreateRoomInput struct {
	Type         string `json:"type"`
	Level        string `json:"level"`
	Language     string `json:"language"`
	Genre        string `json:"genre"`
	TestDuration int    `json:"testDuration"`
}

func (in CreateRoomInput) config() race.ContentConfig {
	return race.ContentConfig{
		Type:         in.Type,
		Level:        in.Level,
		Language:     in.Language,
		Genre:        in.Genre,
		TestDuration: in.TestDuration,
	}
}

// HandleCreateRoom opens a WAITING room hosted by the caller. Content is
// generated before the room exists, so a content failure leaves nothing behind.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input CreateRoomInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		host, err := deps.Directory.Lookup(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		room, err := deps.Races.CreateRoom(r.Context(), host, input.config())
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		room, perfs, err := deps.Races.Snapshot(r.Context(), room.Code)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, protocol.NewRoomJoined(room, perfs, host.UserID))
	}
}

// HandleGetRoom returns a room snapshot to one of its players.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		code := randx.NormalizeRoomCode(chi.URLParam(r, "code"))
		if !randx.IsValidRoomCode(code) {
			logx.Warn("Room lookup rejected: malformed code", "room_code", code)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		room, perfs, err := deps.Races.Snapshot(r.Context(), code)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if !participant(room, perfs, identity.UserID) {
			logx.Warn("Room lookup rejected: caller is not a participant", "room_code", code, "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrNotParticipant))
			return
		}

		resp.RespondSuccess(w, r, protocol.NewRoomJoined(room, perfs, identity.UserID))
	}
}

// participant reports whether userID holds a seat or a performance in the room.
func participant(room *race.Room, perfs []*race.Performance, userID string) bool {
	if room.IsSeated(userID) {
		return true
	}
	for _, p := range perfs {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// HandleActiveRooms lists the caller's WAITING and ACTIVE rooms.
func HandleActiveRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		rooms, err := deps.Races.ActiveRooms(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, protocol.NewActiveRooms(rooms))
	}
}
