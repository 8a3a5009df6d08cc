package realtime

import (
	"encoding/json"
	"sync"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
)

// Frame kinds pushed to clients. "event" carries a raw row change the client
// reconciles locally; "notification" and "toast" are terminal dispatcher
// outcomes rendered as-is.
const (
	FrameEvent        = "event"
	FrameNotification = "notification"
	FrameToast        = "toast"
)

// Frame is the outbound wire envelope.
type Frame struct {
	Kind  string          `json:"kind"`
	Scope string          `json:"scope,omitempty"`
	Title string          `json:"title,omitempty"`
	Body  string          `json:"body,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type room struct {
	scope feed.Scope
	conns map[string]*Conn // connID -> conn
}

// Router tracks client websockets and the feed scopes each one watches.
// One active connection per user; rooms are keyed by feed scope keys so a
// conversation-list view and an open-conversation view each map to their own
// room. All registries live behind a single RWMutex.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Conn  // connID -> conn
	userSessions map[string]string // userID -> connID
	rooms        map[string]*room  // scope key -> room
	sessionRooms map[string]map[string]struct{}
}

func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Conn),
		userSessions: make(map[string]string),
		rooms:        make(map[string]*room),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for its user, replacing and closing any
// previous session so each user holds one socket.
func (r *Router) Attach(conn *Conn) {
	var previous *Conn

	r.mu.Lock()
	if existingID, ok := r.userSessions[conn.UserID]; ok {
		if existing := r.sessions[existingID]; existing != nil {
			previous = existing
			r.detachLocked(existingID)
		}
	}
	r.sessions[conn.ID] = conn
	r.userSessions[conn.UserID] = conn.ID
	r.sessionRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection and all its room memberships.
func (r *Router) Detach(conn *Conn) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Watch adds the connection to the room for the given scope.
func (r *Router) Watch(scope feed.Scope, conn *Conn) {
	key := scope.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}
	rm := r.rooms[key]
	if rm == nil {
		rm = &room{scope: scope, conns: make(map[string]*Conn)}
		r.rooms[key] = rm
	}
	rm.conns[conn.ID] = conn
	r.sessionRooms[conn.ID][key] = struct{}{}
}

// Unwatch removes the connection from the scope's room.
func (r *Router) Unwatch(scope feed.Scope, conn *Conn) {
	r.mu.Lock()
	r.leaveLocked(scope.Key(), conn.ID)
	r.mu.Unlock()
}

// RouteEvent fans a row-change event out to every room whose scope matches.
// Consumers de-duplicate by row id, so an event reaching a client twice
// (e.g. via both the list room and an open-conversation room) is harmless.
// Returns the number of sockets written.
func (r *Router) RouteEvent(e feed.Event) int {
	r.mu.RLock()
	type delivery struct {
		conn *Conn
		key  string
	}
	var targets []delivery
	for key, rm := range r.rooms {
		if !rm.scope.Matches(e) {
			continue
		}
		for _, conn := range rm.conns {
			targets = append(targets, delivery{conn: conn, key: key})
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, t := range targets {
		payload, err := json.Marshal(Frame{Kind: FrameEvent, Scope: t.key, Data: e.Row})
		if err != nil {
			continue
		}
		if t.conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser pushes a notification or toast frame to the user's connection.
// Returns false when the user has no live socket or the write failed; callers
// treat that as the accepted silent-drop degradation.
func (r *Router) NotifyUser(userID string, f Frame) bool {
	payload, err := json.Marshal(f)
	if err != nil {
		return false
	}

	r.mu.RLock()
	connID, ok := r.userSessions[userID]
	conn := r.sessions[connID]
	r.mu.RUnlock()
	if !ok || conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// NotificationsGranted reports whether the user's live connection announced
// system-notification permission. No connection reads as not granted.
func (r *Router) NotificationsGranted(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.userSessions[userID]
	if !ok {
		return false
	}
	conn := r.sessions[connID]
	return conn != nil && conn.NotificationsGranted
}

// Close terminates every tracked connection and clears all registries.
func (r *Router) Close() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.sessions))
	for _, c := range r.sessions {
		conns = append(conns, c)
	}
	r.sessions = make(map[string]*Conn)
	r.userSessions = make(map[string]string)
	r.rooms = make(map[string]*room)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, c := range conns {
		c.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(connID string) {
	conn, ok := r.sessions[connID]
	if !ok {
		return
	}
	delete(r.sessions, connID)
	if current, ok := r.userSessions[conn.UserID]; ok && current == connID {
		delete(r.userSessions, conn.UserID)
	}
	for scopeKey := range r.sessionRooms[connID] {
		r.leaveLocked(scopeKey, connID)
	}
	delete(r.sessionRooms, connID)
}

func (r *Router) leaveLocked(scopeKey string, connID string) {
	rm := r.rooms[scopeKey]
	if rm == nil {
		return
	}
	delete(rm.conns, connID)
	if len(rm.conns) == 0 {
		delete(r.rooms, scopeKey)
	}
	if memberships, ok := r.sessionRooms[connID]; ok {
		delete(memberships, scopeKey)
	}
}
