package race

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/randx"
)

// maxCodeAttempts bounds retries when a generated room code is already taken.
const maxCodeAttempts = 5

// ContentGenerator produces race text for a configuration.
type ContentGenerator interface {
	Generate(ctx context.Context, cfg ContentConfig) (string, error)
}

// ResultPublisher receives every completed race.
type ResultPublisher interface {
	PublishResult(ctx context.Context, outcome *Outcome) error
}

type nopPublisher struct{}

func (nopPublisher) PublishResult(context.Context, *Outcome) error { return nil }

// Service applies the room lifecycle on top of a Store. It keeps no per-room
// state of its own, so every decision is re-derived from storage.
type Service struct {
	store   Store
	content ContentGenerator
	results ResultPublisher
	now     func() time.Time
	logger  zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithResultPublisher sets where completed races are published.
func WithResultPublisher(p ResultPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.results = p
		}
	}
}

// NewService builds a Service over store and content.
func NewService(store Store, content ContentGenerator, opts ...Option) *Service {
	s := &Service{
		store:   store,
		content: content,
		results: nopPublisher{},
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logx.Component("race"),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom generates content for cfg and opens a WAITING room hosted by host.
func (s *Service) CreateRoom(ctx context.Context, host Player, cfg ContentConfig) (*Room, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	content, err := s.generate(ctx, cfg)
	if err != nil {
		return nil, err
	}

	room, err := s.insertRoom(ctx, host.UserID, cfg, content)
	if err != nil {
		return nil, err
	}

	hostPerf := newPerformance(room.Code, host.UserID, host.Name, true, room.CreatedAt)
	if _, err := s.store.CreatePerformance(ctx, hostPerf); err != nil {
		return nil, fmt.Errorf("create host performance: %w", err)
	}

	s.logger.Info().
		Str("room_code", room.Code).
		Str("user_id", host.UserID).
		Str("type", cfg.Type).
		Str("genre", cfg.Genre).
		Msg("Room created")

	return room, nil
}

// insertRoom stores a new WAITING room under a fresh code.
func (s *Service) insertRoom(ctx context.Context, hostID string, cfg ContentConfig, content string) (*Room, error) {
	for range maxCodeAttempts {
		code, err := randx.RoomCode()
		if err != nil {
			return nil, err
		}

		room := &Room{
			Code:      code,
			HostID:    hostID,
			Status:    StatusWaiting,
			Config:    cfg,
			Content:   content,
			CreatedAt: s.now(),
		}

		err = s.store.CreateRoom(ctx, room)
		if errs.Is(err, errs.ErrRoomCodeExists) {
			s.logger.Debug().Str("room_code", code).Msg("Room code collision, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create room: %w", err)
		}
		return room, nil
	}

	return nil, errs.NewError(errs.ErrRoomCodeExists)
}

// generate asks the content service for text, hiding upstream failures
// behind ErrContentUnavailable.
func (s *Service) generate(ctx context.Context, cfg ContentConfig) (string, error) {
	content, err := s.content.Generate(ctx, cfg)
	if err == nil {
		return content, nil
	}

	if customErr := errs.From(err, errs.ErrContentUnavailable); customErr.Kind != errs.KindInternal {
		return "", customErr
	}

	s.logger.Error().Err(err).Str("type", cfg.Type).Str("genre", cfg.Genre).Msg("Content generation failed")
	return "", errs.NewError(errs.ErrContentUnavailable)
}

// JoinResult is the room state handed to a player entering a room.
type JoinResult struct {
	Room         *Room
	Performances []*Performance
	// NewGuest is set when this call seated the player as the room's guest.
	NewGuest bool
}

// Join enters p into the room. A player who already has a performance simply
// rejoins; anyone else is seated as guest of a WAITING room.
func (s *Service) Join(ctx context.Context, code string, p Player) (*JoinResult, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	_, err = s.store.GetPerformance(ctx, code, p.UserID)
	switch {
	case err == nil:
		if room.Status == StatusCancelled {
			return nil, errs.NewError(errs.ErrRoomNotJoinable)
		}
		return s.joinResult(ctx, code, false)
	case !errs.Is(err, errs.ErrPerformanceNotFound):
		return nil, err
	}

	if err := s.seatGuest(ctx, room, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("room_code", code).Str("user_id", p.UserID).Msg("Guest joined room")
	return s.joinResult(ctx, code, true)
}

func (s *Service) seatGuest(ctx context.Context, room *Room, p Player) error {
	if room.HostID == p.UserID {
		return errs.NewError(errs.ErrOwnRoom)
	}
	if room.Status != StatusWaiting {
		return errs.NewError(errs.ErrRoomNotJoinable)
	}

	perfs, err := s.store.ListPerformances(ctx, room.Code)
	if err != nil {
		return err
	}
	if len(perfs) >= 2 {
		return errs.NewError(errs.ErrRoomIsFull)
	}

	now := s.now()
	seated, err := s.store.AssignGuest(ctx, room.Code, p.UserID, now)
	if err != nil {
		return err
	}
	if !seated {
		current, err := s.store.GetRoom(ctx, room.Code)
		if err != nil {
			return err
		}
		if current.GuestID != "" {
			return errs.NewError(errs.ErrRoomIsFull)
		}
		return errs.NewError(errs.ErrRoomNotJoinable)
	}

	if _, err := s.store.CreatePerformance(ctx, newPerformance(room.Code, p.UserID, p.Name, false, now)); err != nil {
		return fmt.Errorf("create guest performance: %w", err)
	}
	return nil
}

func (s *Service) joinResult(ctx context.Context, code string, newGuest bool) (*JoinResult, error) {
	room, perfs, err := s.Snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return &JoinResult{Room: room, Performances: perfs, NewGuest: newGuest}, nil
}

// Snapshot reads a room and its performances.
func (s *Service) Snapshot(ctx context.Context, code string) (*Room, []*Performance, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	perfs, err := s.store.ListPerformances(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return room, perfs, nil
}

// ActiveRooms lists the WAITING and ACTIVE rooms userID takes part in.
func (s *Service) ActiveRooms(ctx context.Context, userID string) ([]*Room, error) {
	return s.store.ListOpenRooms(ctx, userID)
}

// Configure regenerates the room's content for cfg. Only the host may do
// this, and only before the race starts.
func (s *Service) Configure(ctx context.Context, code, userID string, cfg ContentConfig) (*Room, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.requireHost(ctx, code, userID); err != nil {
		return nil, err
	}
	if err := configurable(room); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	content, err := s.generate(ctx, cfg)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateConfig(ctx, code, cfg, content)
	if err != nil {
		return nil, err
	}

	room, err = s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !updated {
		if err := configurable(room); err != nil {
			return nil, err
		}
		return nil, errs.NewError(errs.ErrRaceStarted)
	}
	return room, nil
}

func configurable(room *Room) error {
	if !room.Status.Open() {
		return errs.NewError(errs.ErrRoomClosed)
	}
	if room.StartTime != nil {
		return errs.NewError(errs.ErrRaceStarted)
	}
	return nil
}

// requireHost checks the caller's performance carries the host flag.
func (s *Service) requireHost(ctx context.Context, code, userID string) error {
	perf, err := s.store.GetPerformance(ctx, code, userID)
	if errs.Is(err, errs.ErrPerformanceNotFound) {
		return errs.NewError(errs.ErrNotHost)
	}
	if err != nil {
		return err
	}
	if !perf.IsHost {
		return errs.NewError(errs.ErrNotHost)
	}
	return nil
}
