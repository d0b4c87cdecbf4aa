/*
Package session tracks live connections in process memory: which user each connection
belongs to, which connections a user has open, and which connections sit in each room's
broadcast group. It is used for fan-out and disconnect bookkeeping only; game state
always comes from the race store.
*/
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"typerace/internal/pkg/logx"
)

// Conn is a connection the registry can deliver frames to.
type Conn interface {
	ID() string
	// Send queues data without blocking and reports whether it was accepted.
	Send(data []byte) bool
}

// Identity is the authenticated user behind a connection.
type Identity struct {
	UserID string
	Name   string
}

// Member is one connection inside a room group.
type Member struct {
	ConnID string
	UserID string
	Name   string
	IsHost bool
}

// Departure describes a removed connection.
type Departure struct {
	ConnID   string
	UserID   string
	Name     string
	RoomCode string
	// LastConnection is set when the user has no other open connection.
	LastConnection bool
	// Remaining counts connections still in RoomCode's group.
	Remaining int
}

type entry struct {
	conn     Conn
	identity *Identity
	roomCode string
}

// Registry is safe for concurrent use. Each server owns its own instance.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*entry
	users map[string]map[string]struct{}
	rooms map[string]map[string]Member

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*entry),
		users:  make(map[string]map[string]struct{}),
		rooms:  make(map[string]map[string]Member),
		logger: logx.Component("session"),
	}
}

// Register adds an unauthenticated connection.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID()] = &entry{conn: c}
}

// Authenticate binds id to the connection. A connection stays bound to its
// first user: re-authenticating as the same user refreshes the name, as
// another user it is refused.
func (r *Registry) Authenticate(connID string, id Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return false
	}

	if e.identity != nil && e.identity.UserID != id.UserID {
		return false
	}

	e.identity = &id
	set, ok := r.users[id.UserID]
	if !ok {
		set = make(map[string]struct{})
		r.users[id.UserID] = set
	}
	set[connID] = struct{}{}

	r.logger.Debug().Str("conn_id", connID).Str("user_id", id.UserID).Int("user_conns", len(set)).Msg("Connection authenticated")
	return true
}

// Identity returns the connection's authenticated user.
func (r *Registry) Identity(connID string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[connID]
	if !ok || e.identity == nil {
		return Identity{}, false
	}
	return *e.identity, true
}

// CurrentRoom returns the room the connection last joined.
func (r *Registry) CurrentRoom(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.conns[connID]; ok {
		return e.roomCode
	}
	return ""
}

// JoinRoom moves an authenticated connection into roomCode's group, leaving
// any group it was in before.
func (r *Registry) JoinRoom(connID, roomCode string, isHost bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok || e.identity == nil {
		return false
	}

	if e.roomCode != roomCode {
		r.leaveRoom(connID, e)
	}

	group, ok := r.rooms[roomCode]
	if !ok {
		group = make(map[string]Member)
		r.rooms[roomCode] = group
	}
	group[connID] = Member{ConnID: connID, UserID: e.identity.UserID, Name: e.identity.Name, IsHost: isHost}
	e.roomCode = roomCode
	return true
}

// Remove drops the connection from every index.
func (r *Registry) Remove(connID string) (Departure, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return Departure{}, false
	}
	delete(r.conns, connID)

	d := Departure{ConnID: connID, RoomCode: e.roomCode}
	if e.identity != nil {
		d.UserID = e.identity.UserID
		d.Name = e.identity.Name
		d.LastConnection = r.detachUser(connID, e.identity.UserID)
	}
	d.Remaining = r.leaveRoom(connID, e)
	return d, true
}

// detachUser removes connID from the user's set and reports whether it was the last one.
func (r *Registry) detachUser(connID, userID string) bool {
	set, ok := r.users[userID]
	if !ok {
		return true
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, userID)
		return true
	}
	return false
}

// leaveRoom removes the connection from its group and returns the group size left.
func (r *Registry) leaveRoom(connID string, e *entry) int {
	if e.roomCode == "" {
		return 0
	}
	code := e.roomCode
	e.roomCode = ""

	group, ok := r.rooms[code]
	if !ok {
		return 0
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(r.rooms, code)
		return 0
	}
	return len(group)
}

// UserConnections counts the user's open connections.
func (r *Registry) UserConnections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Members lists the connections in a room group.
func (r *Registry) Members(roomCode string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.rooms[roomCode]
	members := make([]Member, 0, len(group))
	for _, m := range group {
		members = append(members, m)
	}
	return members
}

// targets snapshots the group's connections so delivery happens outside the lock.
func (r *Registry) targets(roomCode string, skip func(Member) bool) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.rooms[roomCode]
	conns := make([]Conn, 0, len(group))
	for connID, m := range group {
		if skip != nil && skip(m) {
			continue
		}
		if e, ok := r.conns[connID]; ok {
			conns = append(conns, e.conn)
		}
	}
	return conns
}

func (r *Registry) deliver(roomCode string, conns []Conn, data []byte) int {
	sent := 0
	for _, c := range conns {
		if c.Send(data) {
			sent++
			continue
		}
		r.logger.Warn().Str("room_code", roomCode).Str("conn_id", c.ID()).Msg("Dropped frame for slow connection")
	}
	return sent
}

// Broadcast sends data to every connection in the room group.
func (r *Registry) Broadcast(roomCode string, data []byte) int {
	return r.deliver(roomCode, r.targets(roomCode, nil), data)
}

// BroadcastExcept sends data to every connection in the group not owned by userID.
func (r *Registry) BroadcastExcept(roomCode, userID string, data []byte) int {
	return r.deliver(roomCode, r.targets(roomCode, func(m Member) bool { return m.UserID == userID }), data)
}

// SendTo delivers data to one connection.
func (r *Registry) SendTo(connID string, data []byte) bool {
	r.mu.RLock()
	e, ok := r.conns[connID]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	return e.conn.Send(data)
}

// Connections snapshots every registered connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for _, e := range r.conns {
		conns = append(conns, e.conn)
	}
	return conns
}
