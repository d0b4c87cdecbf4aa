package race

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"typerace/internal/pkg/errs"
)

type perfKey struct {
	room string
	user string
}

// MemoryStore is a process-local Store used for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	perfs map[perfKey]*Performance
	order map[string][]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*Room),
		perfs: make(map[perfKey]*Performance),
		order: make(map[string][]string),
	}
}

func cloneRoom(r *Room) *Room {
	c := *r
	return &c
}

func clonePerf(p *Performance) *Performance {
	c := *p
	return &c
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.Code]; ok {
		return errs.NewError(errs.ErrRoomCodeExists)
	}
	s.rooms[room.Code] = cloneRoom(room)
	return nil
}

func (s *MemoryStore) GetRoom(_ context.Context, code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}
	return cloneRoom(room), nil
}

func (s *MemoryStore) ListOpenRooms(_ context.Context, userID string) ([]*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Room
	for code, room := range s.rooms {
		if !room.Status.Open() {
			continue
		}
		if _, ok := s.perfs[perfKey{code, userID}]; ok || room.IsSeated(userID) {
			out = append(out, cloneRoom(room))
		}
	}

	slices.SortFunc(out, func(a, b *Room) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// mutateRoom applies fn to the stored room under the lock. fn reports whether
// the precondition held.
func (s *MemoryStore) mutateRoom(code string, fn func(r *Room) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return false, errs.NewError(errs.ErrRoomNotFound)
	}
	return fn(room), nil
}

func (s *MemoryStore) UpdateConfig(_ context.Context, code string, cfg ContentConfig, content string) (bool, error) {
	return s.mutateRoom(code, func(r *Room) bool {
		if !r.Status.Open() || r.StartTime != nil {
			return false
		}
		r.Config = cfg
		r.Content = content
		return true
	})
}

func (s *MemoryStore) AssignGuest(_ context.Context, code, guestID string, at time.Time) (bool, error) {
	return s.mutateRoom(code, func(r *Room) bool {
		if r.Status != StatusWaiting || r.GuestID != "" || r.HostID == guestID {
			return false
		}
		r.GuestID = guestID
		r.Status = StatusActive
		r.StartedAt = &at
		return true
	})
}

func (s *MemoryStore) ClaimStart(_ context.Context, code string, start time.Time) (bool, error) {
	return s.mutateRoom(code, func(r *Room) bool {
		if !r.Status.Open() || r.StartTime != nil {
			return false
		}
		r.StartTime = &start
		r.Status = StatusActive
		if r.StartedAt == nil {
			r.StartedAt = &start
		}
		return true
	})
}

func (s *MemoryStore) Complete(_ context.Context, code, winnerID string, at time.Time) (bool, error) {
	return s.mutateRoom(code, func(r *Room) bool {
		if r.Status != StatusActive {
			return false
		}
		r.Status = StatusCompleted
		r.WinnerID = winnerID
		r.EndedAt = &at
		return true
	})
}

func (s *MemoryStore) Cancel(_ context.Context, code string, at time.Time) (bool, error) {
	return s.mutateRoom(code, func(r *Room) bool {
		if !r.Status.Open() {
			return false
		}
		r.Status = StatusCancelled
		r.EndedAt = &at
		return true
	})
}

func (s *MemoryStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for code, room := range s.rooms {
		if room.Status == StatusCompleted || !room.CreatedAt.Before(before) {
			continue
		}
		for _, userID := range s.order[code] {
			delete(s.perfs, perfKey{code, userID})
		}
		delete(s.order, code)
		delete(s.rooms, code)
		n++
	}
	return n, nil
}

// insertPerf stores p if the pair is new. Caller holds the lock.
func (s *MemoryStore) insertPerf(p *Performance) bool {
	key := perfKey{p.RoomCode, p.UserID}
	if _, ok := s.perfs[key]; ok {
		return false
	}
	s.perfs[key] = clonePerf(p)
	s.order[p.RoomCode] = append(s.order[p.RoomCode], p.UserID)
	return true
}

func (s *MemoryStore) CreatePerformance(_ context.Context, perf *Performance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertPerf(perf), nil
}

func (s *MemoryStore) GetPerformance(_ context.Context, code, userID string) (*Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf, ok := s.perfs[perfKey{code, userID}]
	if !ok {
		return nil, errs.NewError(errs.ErrPerformanceNotFound)
	}
	return clonePerf(perf), nil
}

func (s *MemoryStore) ListPerformances(_ context.Context, code string) ([]*Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Performance, 0, len(s.order[code]))
	for _, userID := range s.order[code] {
		out = append(out, clonePerf(s.perfs[perfKey{code, userID}]))
	}

	slices.SortStableFunc(out, func(a, b *Performance) int {
		return cmp.Compare(hostRank(a), hostRank(b))
	})
	return out, nil
}

func hostRank(p *Performance) int {
	if p.IsHost {
		return 0
	}
	return 1
}

func (s *MemoryStore) SetReady(_ context.Context, code, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf, ok := s.perfs[perfKey{code, userID}]
	if !ok {
		return errs.NewError(errs.ErrPerformanceNotFound)
	}
	perf.IsReady = true
	perf.UpdatedAt = time.Now()
	return nil
}

// upsertPerf returns the stored record for the template's pair, creating it
// from the template when missing. Caller holds the lock.
func (s *MemoryStore) upsertPerf(template *Performance) *Performance {
	s.insertPerf(template)
	return s.perfs[perfKey{template.RoomCode, template.UserID}]
}

func (s *MemoryStore) WriteStats(_ context.Context, template *Performance, stats Stats) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf := s.upsertPerf(template)
	if perf.Finished() {
		return false, nil
	}
	perf.Stats = stats
	perf.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) Finish(_ context.Context, template *Performance, stats Stats, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf := s.upsertPerf(template)
	if perf.Finished() {
		return false, nil
	}
	stats.Progress = 100
	perf.Stats = stats
	perf.FinishedAt = &at
	perf.UpdatedAt = at
	return true, nil
}
