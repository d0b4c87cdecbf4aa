package multiplayer

import (
	"context"
	"fmt"

	"typerace/internal/app/protocol"
	"typerace/internal/app/race"
	"typerace/internal/app/session"
	"typerace/internal/pkg/errs"
)

// handle decodes and dispatches one frame. Failures are reported to the sending
// connection only and never end it.
func (h *Hub) handle(c *Client, frame []byte) {
	env, msg, err := protocol.Decode(frame)

	var event, ackID string
	if env != nil {
		event, ackID = env.Event, env.AckID
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("event", event).Interface("panic", r).Msg("Recovered from panic in event handler")
			h.fail(c, event, ackID, errs.NewError(errs.ErrUnknown))
		}
	}()

	if err != nil {
		h.fail(c, event, ackID, err)
		return
	}

	c.logger.Debug().Str("event", event).Msg("Inbound event")

	ctx, cancel := context.WithTimeout(h.ctx, h.eventTimeout)
	defer cancel()

	if err := h.dispatch(ctx, c, msg); err != nil {
		h.fail(c, event, ackID, err)
		return
	}

	if ackID != "" {
		c.sendAck(ackID, protocol.Ack{Received: true, Timestamp: h.now().UnixMilli()})
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, msg protocol.Inbound) error {
	switch m := msg.(type) {
	case *protocol.Authenticate:
		return h.authenticate(ctx, c, m)
	case *protocol.JoinRoom:
		return h.joinRoom(ctx, c, m)
	case *protocol.RoomConfiguration:
		return h.configureRoom(ctx, c, m)
	case *protocol.PlayerReady:
		return h.playerReady(ctx, c, m)
	case *protocol.HostStartMatch:
		return h.hostStartMatch(ctx, c, m)
	case *protocol.UpdateProgress:
		return h.updateProgress(ctx, c, m)
	case *protocol.PlayerFinished:
		return h.playerFinished(ctx, c, m)
	case *protocol.RequestRematch:
		return h.requestRematch(ctx, c, m)
	case *protocol.AcceptRematch:
		return h.acceptRematch(ctx, c, m)
	case *protocol.DeclineRematch:
		return h.declineRematch(c, m)
	case *protocol.CancelRoom:
		return h.cancelRoom(ctx, c, m)
	case *protocol.Ping:
		c.sendEvent(protocol.EventPong, protocol.Pong{Timestamp: h.now().UnixMilli()})
		return nil
	default:
		return errs.NewError(errs.ErrUnknownEvent, msg.Event())
	}
}

// fail reports err to the connection as an error event, and on the ack when
// one was requested. Every acked event gets exactly one ack, from here or from handle.
func (h *Hub) fail(c *Client, event, ackID string, err error) {
	customErr := errs.From(err, errs.ErrStorageUnavailable)

	log := c.logger.Warn()
	if customErr.Kind == errs.KindInternal {
		log = c.logger.Error()
	}
	log.Err(err).Str("event", event).Int("code", customErr.Code).Msg("Event failed")

	payload := protocol.NewErrorPayload(customErr, event)
	c.sendEvent(protocol.EventError, payload)
	if ackID != "" {
		c.sendAck(ackID, protocol.Ack{Received: true, Timestamp: h.now().UnixMilli(), Error: &payload})
	}
}

func (h *Hub) broadcast(roomCode, event string, data any) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast")
		return
	}
	h.registry.Broadcast(roomCode, frame)
}

func (h *Hub) broadcastExcept(roomCode, userID, event string, data any) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast")
		return
	}
	h.registry.BroadcastExcept(roomCode, userID, frame)
}

// broadcastWithCaller also delivers to c when it is not in the room's group.
func (h *Hub) broadcastWithCaller(c *Client, roomCode, event string, data any) {
	h.broadcast(roomCode, event, data)
	if h.registry.CurrentRoom(c.id) != roomCode {
		c.sendEvent(event, data)
	}
}

// actor checks the connection is authenticated as the user named in the event.
func (h *Hub) actor(c *Client, t protocol.Target) (race.Player, error) {
	id, ok := h.registry.Identity(c.id)
	if !ok {
		return race.Player{}, errs.NewError(errs.ErrNotAuthenticated)
	}
	if id.UserID != t.UserID {
		return race.Player{}, errs.NewError(errs.ErrIdentityMismatch)
	}
	return race.Player{UserID: id.UserID, Name: id.Name}, nil
}

// provenIdentity returns the user id a token vouches for, or empty when the
// connection presented none.
func (h *Hub) provenIdentity(c *Client, m *protocol.Authenticate) (string, error) {
	if m.Token != "" && h.verify != nil {
		userID, err := h.verify(m.Token)
		if err != nil {
			return "", errs.NewError(errs.ErrUnauthorized)
		}
		return userID, nil
	}
	return c.tokenUserID, nil
}

func (h *Hub) authenticate(ctx context.Context, c *Client, m *protocol.Authenticate) error {
	proven, err := h.provenIdentity(c, m)
	if err != nil {
		return err
	}
	if proven == "" && h.requireToken {
		return errs.NewError(errs.ErrNotAuthenticated)
	}
	if proven != "" && proven != m.UserID {
		return errs.NewError(errs.ErrIdentityMismatch)
	}
	if current, ok := h.registry.Identity(c.id); ok && current.UserID != m.UserID {
		return errs.NewError(errs.ErrIdentityMismatch)
	}

	player, err := h.users.Lookup(ctx, m.UserID)
	if err != nil {
		return err
	}

	if !h.registry.Authenticate(c.id, session.Identity{UserID: player.UserID, Name: player.Name}) {
		return errs.NewError(errs.ErrIdentityMismatch)
	}
	c.logger.Info().Str("user_id", player.UserID).Msg("User authenticated")

	c.sendEvent(protocol.EventAuthenticated, protocol.Authenticated{UserID: player.UserID, UserName: player.Name})

	rooms, err := h.races.ActiveRooms(ctx, player.UserID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to list active rooms")
		return nil
	}
	if len(rooms) > 0 {
		c.sendEvent(protocol.EventActiveRoomsAvailable, protocol.NewActiveRooms(rooms))
	}
	return nil
}

func (h *Hub) joinRoom(ctx context.Context, c *Client, m *protocol.JoinRoom) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	res, err := h.races.Join(ctx, m.RoomID, player)
	if err != nil {
		return err
	}

	var self *race.Performance
	for _, p := range res.Performances {
		if p.UserID == player.UserID {
			self = p
		}
	}
	if self == nil {
		return fmt.Errorf("join %s: performance for %s missing after join", m.RoomID, player.UserID)
	}

	h.registry.JoinRoom(c.id, m.RoomID, self.IsHost)

	c.sendEvent(protocol.EventRoomJoined, protocol.NewRoomJoined(res.Room, res.Performances, player.UserID))
	h.broadcastExcept(m.RoomID, player.UserID, protocol.EventPlayerJoined, protocol.PlayerJoined{
		UserID: player.UserID,
		Name:   player.Name,
		IsHost: self.IsHost,
	})
	return nil
}

func (h *Hub) configureRoom(ctx context.Context, c *Client, m *protocol.RoomConfiguration) error {
	id, ok := h.registry.Identity(c.id)
	if !ok {
		return errs.NewError(errs.ErrNotAuthenticated)
	}

	room, err := h.races.Configure(ctx, m.RoomCode, id.UserID, m.Config())
	if err != nil {
		return err
	}

	h.broadcastWithCaller(c, room.Code, protocol.EventRoomUpdated, protocol.RoomUpdated{
		RoomID:           room.Code,
		ContentConfig:    room.Config,
		GeneratedContent: room.Content,
	})
	return nil
}

func (h *Hub) playerReady(ctx context.Context, c *Client, m *protocol.PlayerReady) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	start, err := h.races.MarkReady(ctx, m.RoomID, player.UserID)
	if err != nil {
		return err
	}

	now := h.now()
	h.broadcastWithCaller(c, m.RoomID, protocol.EventPlayerReady, protocol.PlayerReadyNotice{
		UserID:    player.UserID,
		Timestamp: now.UnixMilli(),
	})

	if start != nil {
		h.broadcastWithCaller(c, m.RoomID, protocol.EventGameStarting, protocol.GameStarting{
			StartTime: *start,
			RoomID:    m.RoomID,
			Timestamp: now.UnixMilli(),
		})
	}
	return nil
}

func (h *Hub) hostStartMatch(ctx context.Context, c *Client, m *protocol.HostStartMatch) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	start, claimed, err := h.races.ForceStart(ctx, m.RoomID, player.UserID)
	if err != nil {
		return err
	}

	starting := protocol.GameStarting{
		StartTime: start,
		RoomID:    m.RoomID,
		Forced:    true,
		HostID:    player.UserID,
		Timestamp: h.now().UnixMilli(),
	}
	if claimed {
		h.broadcastWithCaller(c, m.RoomID, protocol.EventGameStarting, starting)
		return nil
	}

	// Already started: only the host is told the existing start time.
	starting.Forced = false
	c.sendEvent(protocol.EventGameStarting, starting)
	return nil
}

func (h *Hub) updateProgress(ctx context.Context, c *Client, m *protocol.UpdateProgress) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	written, err := h.races.UpdateProgress(ctx, m.RoomID, player, m.Stats())
	if err != nil || !written {
		return err
	}

	h.broadcastExcept(m.RoomID, player.UserID, protocol.EventOpponentProgress, protocol.OpponentProgress{
		UserID:    player.UserID,
		Stats:     m.Stats(),
		Timestamp: h.now().UTC(),
	})
	return nil
}

func (h *Hub) playerFinished(ctx context.Context, c *Client, m *protocol.PlayerFinished) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	res, err := h.races.Finish(ctx, m.RoomID, player, m.Stats())
	if err != nil {
		return err
	}

	if res.First {
		perf := res.Performance
		h.broadcastExcept(m.RoomID, player.UserID, protocol.EventOpponentFinished, protocol.OpponentFinished{
			UserID:     player.UserID,
			WPM:        perf.WPM,
			Accuracy:   perf.Accuracy,
			Score:      perf.Score,
			FinishedAt: *perf.FinishedAt,
		})
	}

	outcome, err := h.races.DetectCompletion(ctx, m.RoomID)
	if err != nil {
		return err
	}
	if outcome != nil {
		h.broadcastWithCaller(c, m.RoomID, protocol.EventGameCompleted, protocol.NewGameCompleted(outcome))
	}
	return nil
}

func (h *Hub) requestRematch(ctx context.Context, c *Client, m *protocol.RequestRematch) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	if _, err := h.races.RematchParticipants(ctx, m.RoomID, player.UserID); err != nil {
		return err
	}

	h.broadcastExcept(m.RoomID, player.UserID, protocol.EventRematchRequested, protocol.RematchRequested{
		RoomID: m.RoomID,
		UserID: player.UserID,
	})
	return nil
}

func (h *Hub) acceptRematch(ctx context.Context, c *Client, m *protocol.AcceptRematch) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	room, err := h.races.AcceptRematch(ctx, m.RoomID, player, m.ContentConfig)
	if err != nil {
		return err
	}

	h.broadcastWithCaller(c, m.RoomID, protocol.EventRematchCreated, protocol.RematchCreated{
		OriginalRoomID: m.RoomID,
		NewRoomID:      room.Code,
		HostID:         room.HostID,
	})
	return nil
}

// declineRematch only notifies the other player; nothing is stored.
func (h *Hub) declineRematch(c *Client, m *protocol.DeclineRematch) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	h.broadcastExcept(m.RoomID, player.UserID, protocol.EventRematchDeclined, protocol.RematchDeclined{
		RoomID: m.RoomID,
		UserID: player.UserID,
	})
	return nil
}

func (h *Hub) cancelRoom(ctx context.Context, c *Client, m *protocol.CancelRoom) error {
	player, err := h.actor(c, m.Target)
	if err != nil {
		return err
	}

	room, err := h.races.CancelRoom(ctx, m.RoomID, player.UserID)
	if err != nil {
		return err
	}

	h.broadcastWithCaller(c, room.Code, protocol.EventGameCancelled, protocol.GameCancelled{
		RoomID: room.Code,
		Reason: race.ReasonHostCancelled,
	})
	return nil
}
