package race

import (
	"context"
	"fmt"

	"typerace/internal/pkg/errs"
)

// maxRegenerations bounds how often rematch content is regenerated while it
// still matches the previous race's text.
const maxRegenerations = 3

// RematchParticipants returns the performances of a COMPLETED room that
// userID took part in.
func (s *Service) RematchParticipants(ctx context.Context, code, userID string) ([]*Performance, error) {
	room, perfs, err := s.Snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusCompleted || len(perfs) < 2 {
		return nil, errs.NewError(errs.ErrRematchUnavailable)
	}

	for _, p := range perfs {
		if p.UserID == userID {
			return perfs, nil
		}
	}
	return nil, errs.NewError(errs.ErrPerformanceNotFound)
}

// AcceptRematch opens a new WAITING room hosted by the accepting player, with
// a fresh zeroed performance for every participant of the source room. cfg
// falls back to the source room's configuration when nil.
func (s *Service) AcceptRematch(ctx context.Context, code string, p Player, cfg *ContentConfig) (*Room, error) {
	perfs, err := s.RematchParticipants(ctx, code, p.UserID)
	if err != nil {
		return nil, err
	}

	source, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	config := source.Config
	if cfg != nil {
		config = cfg.WithDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	content, err := s.freshContent(ctx, config, source.Content)
	if err != nil {
		return nil, err
	}

	room, err := s.insertRoom(ctx, p.UserID, config, content)
	if err != nil {
		return nil, err
	}

	for _, prev := range perfs {
		perf := newPerformance(room.Code, prev.UserID, prev.Name, prev.UserID == p.UserID, room.CreatedAt)
		if _, err := s.store.CreatePerformance(ctx, perf); err != nil {
			return nil, fmt.Errorf("create rematch performance: %w", err)
		}
	}

	s.logger.Info().
		Str("room_code", code).
		Str("rematch_code", room.Code).
		Str("user_id", p.UserID).
		Msg("Rematch room created")

	return room, nil
}

// freshContent generates text that differs from previous.
func (s *Service) freshContent(ctx context.Context, cfg ContentConfig, previous string) (string, error) {
	for range maxRegenerations {
		content, err := s.generate(ctx, cfg)
		if err != nil {
			return "", err
		}
		if content != previous {
			return content, nil
		}
	}

	s.logger.Warn().Str("type", cfg.Type).Str("genre", cfg.Genre).Msg("Content generator kept returning the previous text")
	return "", errs.NewError(errs.ErrContentUnavailable)
}
