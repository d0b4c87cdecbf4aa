package race

import (
	"context"
	"time"
)

// Store is the persistence contract for rooms and performances.
//
// Every transition is a compare-and-set: the boolean result reports whether
// this call performed it, and a false result with a nil error means the room
// was no longer in the required state. Lookups of missing records return
// errs.ErrRoomNotFound or errs.ErrPerformanceNotFound.
type Store interface {
	// CreateRoom inserts a room. A taken code yields errs.ErrRoomCodeExists.
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, code string) (*Room, error)
	// ListOpenRooms returns WAITING and ACTIVE rooms the user hosts, joined as
	// guest, or holds a performance in, newest first.
	ListOpenRooms(ctx context.Context, userID string) ([]*Room, error)

	// UpdateConfig replaces config and content while the room is open and
	// the race has not started.
	UpdateConfig(ctx context.Context, code string, cfg ContentConfig, content string) (bool, error)
	// AssignGuest moves a WAITING room without a guest to ACTIVE.
	AssignGuest(ctx context.Context, code, guestID string, at time.Time) (bool, error)
	// ClaimStart sets the shared start time on an open room that has none,
	// moving it to ACTIVE.
	ClaimStart(ctx context.Context, code string, start time.Time) (bool, error)
	// Complete moves an ACTIVE room to COMPLETED. An empty winnerID is a tie.
	Complete(ctx context.Context, code, winnerID string, at time.Time) (bool, error)
	// Cancel moves a WAITING or ACTIVE room to CANCELLED.
	Cancel(ctx context.Context, code string, at time.Time) (bool, error)
	// DeleteExpired removes rooms created before the cutoff that never
	// completed, along with their performances.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// CreatePerformance inserts a record unless one exists for the pair.
	CreatePerformance(ctx context.Context, perf *Performance) (bool, error)
	GetPerformance(ctx context.Context, code, userID string) (*Performance, error)
	// ListPerformances returns the room's records, host first.
	ListPerformances(ctx context.Context, code string) ([]*Performance, error)
	SetReady(ctx context.Context, code, userID string) error
	// WriteStats upserts live stats on an unfinished record. The template
	// supplies name and role when the record has to be created.
	WriteStats(ctx context.Context, template *Performance, stats Stats) (bool, error)
	// Finish upserts final stats, progress 100 and finishedAt on an
	// unfinished record.
	Finish(ctx context.Context, template *Performance, stats Stats, at time.Time) (bool, error)
}
