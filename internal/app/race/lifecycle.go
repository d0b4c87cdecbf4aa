package race

import (
	"context"
	"fmt"
	"time"

	"typerace/internal/pkg/errs"
)

// Cancellation reasons shown to the remaining player.
const (
	ReasonHostDisconnected     = "Host disconnected from the game"
	ReasonOpponentDisconnected = "Opponent disconnected"
	ReasonHostCancelled        = "Host cancelled the game"
)

// MarkReady flags the caller as ready. When this completes the ready quorum
// (at least two performances, all ready) and no start was claimed yet, the
// returned time is the shared start instant; otherwise it is nil.
func (s *Service) MarkReady(ctx context.Context, code, userID string) (*time.Time, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.Status.Open() {
		return nil, errs.NewError(errs.ErrRoomClosed)
	}

	if err := s.store.SetReady(ctx, code, userID); err != nil {
		return nil, err
	}

	perfs, err := s.store.ListPerformances(ctx, code)
	if err != nil {
		return nil, err
	}
	if !readyQuorum(perfs) {
		return nil, nil
	}

	start := s.now()
	claimed, err := s.store.ClaimStart(ctx, code, start)
	if err != nil || !claimed {
		return nil, err
	}

	s.logger.Info().Str("room_code", code).Time("start_time", start).Msg("Ready quorum reached, race starting")
	return &start, nil
}

func readyQuorum(perfs []*Performance) bool {
	if len(perfs) < 2 {
		return false
	}
	for _, p := range perfs {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// ForceStart lets the host start without the ready quorum. It returns the
// shared start time and whether this call set it; a race that already started
// reports its existing start time. A room with fewer than two performances
// cannot start.
func (s *Service) ForceStart(ctx context.Context, code, userID string) (time.Time, bool, error) {
	if err := s.requireHost(ctx, code, userID); err != nil {
		return time.Time{}, false, err
	}

	perfs, err := s.store.ListPerformances(ctx, code)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(perfs) < 2 {
		return time.Time{}, false, errs.NewError(errs.ErrOpponentMissing)
	}

	start := s.now()
	claimed, err := s.store.ClaimStart(ctx, code, start)
	if err != nil {
		return time.Time{}, false, err
	}
	if claimed {
		s.logger.Info().Str("room_code", code).Str("user_id", userID).Msg("Host forced race start")
		return start, true, nil
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return time.Time{}, false, err
	}
	if !room.Status.Open() || room.StartTime == nil {
		return time.Time{}, false, errs.NewError(errs.ErrRoomClosed)
	}
	return *room.StartTime, false, nil
}

// template returns the caller's record, or a fresh one when the caller holds a
// seat on the room but their record was not written yet.
func (s *Service) template(ctx context.Context, room *Room, p Player) (*Performance, error) {
	perf, err := s.store.GetPerformance(ctx, room.Code, p.UserID)
	if err == nil {
		return perf, nil
	}
	if !errs.Is(err, errs.ErrPerformanceNotFound) || !room.IsSeated(p.UserID) {
		return nil, err
	}
	return newPerformance(room.Code, p.UserID, p.Name, room.HostID == p.UserID, s.now()), nil
}

// UpdateProgress records live stats. It reports false without error when the
// player already finished, since late telemetry after a finish is expected.
func (s *Service) UpdateProgress(ctx context.Context, code string, p Player, stats Stats) (bool, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return false, err
	}
	if !room.Status.Open() {
		return false, errs.NewError(errs.ErrRoomClosed)
	}

	tmpl, err := s.template(ctx, room, p)
	if err != nil {
		return false, err
	}

	return s.store.WriteStats(ctx, tmpl, stats)
}

// FinishResult describes a player-finished report.
type FinishResult struct {
	Performance *Performance
	// First is false for a repeated report; the stored result is unchanged.
	First bool
}

// Finish records the player's final stats. Call DetectCompletion afterwards
// regardless of First.
func (s *Service) Finish(ctx context.Context, code string, p Player, stats Stats) (*FinishResult, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == StatusCancelled {
		return nil, errs.NewError(errs.ErrRoomClosed)
	}

	tmpl, err := s.template(ctx, room, p)
	if err != nil {
		return nil, err
	}

	if room.Status == StatusCompleted {
		if tmpl.Finished() {
			return &FinishResult{Performance: tmpl}, nil
		}
		return nil, errs.NewError(errs.ErrRoomClosed)
	}

	first, err := s.store.Finish(ctx, tmpl, stats, s.now())
	if err != nil {
		return nil, fmt.Errorf("finish performance: %w", err)
	}

	perf, err := s.store.GetPerformance(ctx, code, p.UserID)
	if err != nil {
		return nil, err
	}

	if first {
		s.logger.Info().
			Str("room_code", code).
			Str("user_id", p.UserID).
			Float64("score", perf.Score).
			Msg("Player finished")
	}
	return &FinishResult{Performance: perf, First: first}, nil
}

// CancelRoom is the host's explicit cancel.
func (s *Service) CancelRoom(ctx context.Context, code, userID string) (*Room, error) {
	if err := s.requireHost(ctx, code, userID); err != nil {
		return nil, err
	}

	cancelled, err := s.store.Cancel(ctx, code, s.now())
	if err != nil {
		return nil, err
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		if room.Status == StatusCompleted {
			return nil, errs.NewError(errs.ErrRoomAlreadyCompleted)
		}
		return nil, errs.NewError(errs.ErrRoomClosed)
	}

	s.logger.Info().Str("room_code", code).Str("user_id", userID).Msg("Room cancelled by host")
	return room, nil
}

// DisconnectDecision decides whether a user's departure cancels the room.
// A host leaving cancels any open room; a participant leaving an ACTIVE room
// cancels it; a non-host leaving a WAITING room leaves it open.
func DisconnectDecision(room *Room, userID string, participant bool) (bool, string) {
	if !room.Status.Open() {
		return false, ""
	}
	if room.HostID == userID {
		return true, ReasonHostDisconnected
	}
	if room.Status == StatusActive && participant {
		return true, ReasonOpponentDisconnected
	}
	return false, ""
}

// HandleDisconnect applies DisconnectDecision for a user whose last
// connection dropped. It returns the cancellation reason when this call
// cancelled the room.
func (s *Service) HandleDisconnect(ctx context.Context, code, userID string) (string, bool, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return "", false, err
	}

	_, err = s.store.GetPerformance(ctx, code, userID)
	if err != nil && !errs.Is(err, errs.ErrPerformanceNotFound) {
		return "", false, err
	}
	participant := err == nil

	cancel, reason := DisconnectDecision(room, userID, participant)
	if !cancel {
		return "", false, nil
	}

	cancelled, err := s.store.Cancel(ctx, code, s.now())
	if err != nil || !cancelled {
		return "", false, err
	}

	s.logger.Info().Str("room_code", code).Str("user_id", userID).Str("reason", reason).Msg("Room cancelled on disconnect")
	return reason, true, nil
}
