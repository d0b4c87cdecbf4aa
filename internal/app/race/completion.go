package race

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Outcome is the agreed result of a finished race.
type Outcome struct {
	RoomCode string
	// WinnerID is empty on a tie.
	WinnerID string
	IsTie    bool
	Config   ContentConfig
	// Standings holds every performance, highest score first.
	Standings []*Performance
	EndedAt   time.Time
}

// Decide ranks performances by score. The top scorer wins unless the top two
// scores are equal. Equal scores keep their input order, so the winner does
// not depend on which report arrived first.
func Decide(perfs []*Performance) (standings []*Performance, winnerID string, tie bool) {
	standings = slices.Clone(perfs)
	slices.SortStableFunc(standings, func(a, b *Performance) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(standings) == 0 {
		return standings, "", false
	}
	if len(standings) > 1 && standings[0].Score == standings[1].Score {
		return standings, "", true
	}
	return standings, standings[0].UserID, false
}

// DetectCompletion ends the race once every performance has finished. It is
// safe to call any number of times: only the call that moves the room from
// ACTIVE to COMPLETED gets an outcome back, every other call gets nil.
func (s *Service) DetectCompletion(ctx context.Context, code string) (*Outcome, error) {
	perfs, err := s.store.ListPerformances(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(perfs) < 2 {
		return nil, nil
	}
	for _, p := range perfs {
		if !p.Finished() {
			return nil, nil
		}
	}

	standings, winnerID, tie := Decide(perfs)

	completed, err := s.store.Complete(ctx, code, winnerID, s.now())
	if err != nil || !completed {
		return nil, err
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RoomCode:  code,
		WinnerID:  winnerID,
		IsTie:     tie,
		Config:    room.Config,
		Standings: standings,
		EndedAt:   *room.EndedAt,
	}

	s.logger.Info().
		Str("room_code", code).
		Str("winner_id", winnerID).
		Bool("tie", tie).
		Msg("Race completed")

	if err := s.results.PublishResult(ctx, outcome); err != nil {
		s.logger.Warn().Err(err).Str("room_code", code).Msg("Failed to publish race result")
	}

	return outcome, nil
}
