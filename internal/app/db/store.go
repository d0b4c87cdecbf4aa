package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
)

// Store implements race.Store on PostgreSQL. Transitions are single UPDATE
// statements whose WHERE clause carries the required state.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store using pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ race.Store = (*Store)(nil)

const roomColumns = `code, host_id, guest_id, status, content_config, content, winner_id,
	start_time, created_at, started_at, ended_at`

const perfColumns = `room_code, user_id, name, is_host, is_ready, progress, wpm, accuracy, score,
	finished_at, updated_at`

func scanRoom(row pgx.Row) (*race.Room, error) {
	var (
		r        race.Room
		guestID  *string
		winnerID *string
		status   string
	)

	err := row.Scan(&r.Code, &r.HostID, &guestID, &status, &r.Config, &r.Content, &winnerID,
		&r.StartTime, &r.CreatedAt, &r.StartedAt, &r.EndedAt)
	if err != nil {
		return nil, err
	}

	r.Status = race.Status(status)
	if guestID != nil {
		r.GuestID = *guestID
	}
	if winnerID != nil {
		r.WinnerID = *winnerID
	}
	return &r, nil
}

func scanPerformance(row pgx.Row) (*race.Performance, error) {
	var p race.Performance

	err := row.Scan(&p.RoomCode, &p.UserID, &p.Name, &p.IsHost, &p.IsReady,
		&p.Progress, &p.WPM, &p.Accuracy, &p.Score, &p.FinishedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// exec runs a conditional statement and reports whether it touched a row.
func (s *Store) exec(ctx context.Context, sql string, args ...any) (bool, error) {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *race.Room) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (code, host_id, status, content_config, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		room.Code, room.HostID, string(room.Status), room.Config, room.Content, room.CreatedAt)

	if IsUniqueViolation(err) {
		return errs.NewError(errs.ErrRoomCodeExists)
	}
	if err != nil {
		return fmt.Errorf("insert room %s: %w", room.Code, err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, code string) (*race.Room, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE code = $1`, code)

	room, err := scanRoom(row)
	if err != nil {
		return nil, notFound(err, errs.ErrRoomNotFound)
	}
	return room, nil
}

func (s *Store) ListOpenRooms(ctx context.Context, userID string) ([]*race.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms r
		WHERE r.status IN ('waiting', 'active')
		  AND (r.host_id = $1 OR r.guest_id = $1
		       OR EXISTS (SELECT 1 FROM performances p WHERE p.room_code = r.code AND p.user_id = $1))
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list open rooms: %w", err)
	}

	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*race.Room, error) {
		return scanRoom(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan open rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) UpdateConfig(ctx context.Context, code string, cfg race.ContentConfig, content string) (bool, error) {
	return s.exec(ctx, `
		UPDATE rooms SET content_config = $2, content = $3
		WHERE code = $1 AND status IN ('waiting', 'active') AND start_time IS NULL`,
		code, cfg, content)
}

func (s *Store) AssignGuest(ctx context.Context, code, guestID string, at time.Time) (bool, error) {
	return s.exec(ctx, `
		UPDATE rooms SET guest_id = $2, status = 'active', started_at = $3
		WHERE code = $1 AND status = 'waiting' AND guest_id IS NULL AND host_id <> $2`,
		code, guestID, at)
}

func (s *Store) ClaimStart(ctx context.Context, code string, start time.Time) (bool, error) {
	return s.exec(ctx, `
		UPDATE rooms SET start_time = $2, status = 'active', started_at = COALESCE(started_at, $2)
		WHERE code = $1 AND status IN ('waiting', 'active') AND start_time IS NULL`,
		code, start)
}

func (s *Store) Complete(ctx context.Context, code, winnerID string, at time.Time) (bool, error) {
	return s.exec(ctx, `
		UPDATE rooms SET status = 'completed', winner_id = NULLIF($2, ''), ended_at = $3
		WHERE code = $1 AND status = 'active'`,
		code, winnerID, at)
}

func (s *Store) Cancel(ctx context.Context, code string, at time.Time) (bool, error) {
	return s.exec(ctx, `
		UPDATE rooms SET status = 'cancelled', ended_at = $2
		WHERE code = $1 AND status IN ('waiting', 'active')`,
		code, at)
}

func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE status <> 'completed' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired rooms: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CreatePerformance(ctx context.Context, p *race.Performance) (bool, error) {
	return s.exec(ctx, `
		INSERT INTO performances (room_code, user_id, name, is_host, is_ready, progress, wpm, accuracy, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (room_code, user_id) DO NOTHING`,
		p.RoomCode, p.UserID, p.Name, p.IsHost, p.IsReady, p.Progress, p.WPM, p.Accuracy, p.Score, p.UpdatedAt)
}

func (s *Store) GetPerformance(ctx context.Context, code, userID string) (*race.Performance, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+perfColumns+` FROM performances WHERE room_code = $1 AND user_id = $2`, code, userID)

	perf, err := scanPerformance(row)
	if err != nil {
		return nil, notFound(err, errs.ErrPerformanceNotFound)
	}
	return perf, nil
}

func (s *Store) ListPerformances(ctx context.Context, code string) ([]*race.Performance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+perfColumns+` FROM performances
		WHERE room_code = $1
		ORDER BY is_host DESC, joined_at`, code)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}

	perfs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*race.Performance, error) {
		return scanPerformance(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan performances: %w", err)
	}
	return perfs, nil
}

func (s *Store) SetReady(ctx context.Context, code, userID string) error {
	ok, err := s.exec(ctx, `
		UPDATE performances SET is_ready = true, updated_at = now()
		WHERE room_code = $1 AND user_id = $2`, code, userID)
	if err != nil {
		return fmt.Errorf("set ready: %w", err)
	}
	if !ok {
		return errs.NewError(errs.ErrPerformanceNotFound)
	}
	return nil
}

func (s *Store) WriteStats(ctx context.Context, t *race.Performance, stats race.Stats) (bool, error) {
	return s.exec(ctx, `
		INSERT INTO performances (room_code, user_id, name, is_host, progress, wpm, accuracy, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (room_code, user_id) DO UPDATE
		SET progress = EXCLUDED.progress, wpm = EXCLUDED.wpm, accuracy = EXCLUDED.accuracy,
		    score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		WHERE performances.finished_at IS NULL`,
		t.RoomCode, t.UserID, t.Name, t.IsHost, stats.Progress, stats.WPM, stats.Accuracy, stats.Score)
}

func (s *Store) Finish(ctx context.Context, t *race.Performance, stats race.Stats, at time.Time) (bool, error) {
	return s.exec(ctx, `
		INSERT INTO performances (room_code, user_id, name, is_host, progress, wpm, accuracy, score, finished_at, updated_at)
		VALUES ($1, $2, $3, $4, 100, $5, $6, $7, $8, $8)
		ON CONFLICT (room_code, user_id) DO UPDATE
		SET progress = 100, wpm = EXCLUDED.wpm, accuracy = EXCLUDED.accuracy, score = EXCLUDED.score,
		    finished_at = EXCLUDED.finished_at, updated_at = EXCLUDED.updated_at
		WHERE performances.finished_at IS NULL`,
		t.RoomCode, t.UserID, t.Name, t.IsHost, stats.WPM, stats.Accuracy, stats.Score, at)
}
