/*
Package directory resolves an opaque user identity into the profile other players see.

Accounts are owned elsewhere; this package only reads them.
*/
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
)

// Directory looks up users. Unknown users yield errs.ErrUserNotFound.
type Directory interface {
	Lookup(ctx context.Context, userID string) (race.Player, error)
}

// PostgresDirectory reads the users table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory returns a directory backed by pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

const lookupUserSQL = `
SELECT id, COALESCE(NULLIF(display_name, ''), email)
FROM users
WHERE id = $1`

func (d *PostgresDirectory) Lookup(ctx context.Context, userID string) (race.Player, error) {
	var p race.Player

	err := d.pool.QueryRow(ctx, lookupUserSQL, userID).Scan(&p.UserID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return race.Player{}, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return race.Player{}, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return p, nil
}

// MemoryDirectory keeps users in a map. With open set, unknown users resolve
// to a profile named after their id, which suits local development.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]string
	open  bool
}

// NewMemoryDirectory returns an empty MemoryDirectory.
func NewMemoryDirectory(open bool) *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]string), open: open}
}

// Put registers or renames a user.
func (d *MemoryDirectory) Put(userID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[userID] = name
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (race.Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	name, ok := d.users[userID]
	switch {
	case ok:
		return race.Player{UserID: userID, Name: name}, nil
	case d.open && userID != "":
		return race.Player{UserID: userID, Name: userID}, nil
	}
	return race.Player{}, errs.NewError(errs.ErrUserNotFound)
}
