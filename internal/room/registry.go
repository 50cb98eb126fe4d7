package room

import (
	"time"

	"go.uber.org/zap"
)

// Sender is what the registry needs to know about a connection to deliver a
// broadcast. The registry never owns connections, it only resolves ids
// through the lookup passed to Broadcast.
type Sender interface {
	Open() bool
	Send(data []byte) error
}

type Room struct {
	MatchID      string
	Members      map[string]bool
	CreatedAt    time.Time
	LastActivity time.Time
}

// Registry maps match ids to rooms and keeps a reverse index from
// connection id to the one room that connection is in. It is not internally
// synchronized: the connection hub's loop is its sole caller.
type Registry struct {
	rooms  map[string]*Room
	byConn map[string]string

	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

func (r *Registry) GetOrCreate(matchID string) *Room {
	if rm, ok := r.rooms[matchID]; ok {
		return rm
	}
	now := r.now()
	rm := &Room{
		MatchID:      matchID,
		Members:      make(map[string]bool),
		CreatedAt:    now,
		LastActivity: now,
	}
	r.rooms[matchID] = rm
	r.log.Debug("room created", zap.String("matchId", matchID))
	return rm
}

func (r *Registry) Get(matchID string) *Room {
	return r.rooms[matchID]
}

// Subscribe moves a connection into the target room. A connection is in at
// most one room, so any previous membership is dropped first; a room emptied
// by the move is destroyed on the spot.
func (r *Registry) Subscribe(connID, matchID string) {
	r.Unsubscribe(connID)
	rm := r.GetOrCreate(matchID)
	rm.Members[connID] = true
	rm.LastActivity = r.now()
	r.byConn[connID] = matchID
}

// Unsubscribe drops a connection from whatever room it is in, if any.
func (r *Registry) Unsubscribe(connID string) {
	matchID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	rm, ok := r.rooms[matchID]
	if !ok {
		return
	}
	delete(rm.Members, connID)
	if len(rm.Members) == 0 {
		delete(r.rooms, matchID)
		r.log.Debug("room destroyed", zap.String("matchId", matchID))
	}
}

// RoomOf returns the match id a connection is subscribed to, or "".
func (r *Registry) RoomOf(connID string) string {
	return r.byConn[connID]
}

// Broadcast delivers data to every open member of the room, optionally
// skipping one connection. Delivery is best effort per recipient: a failed
// send is logged and the fan-out continues. Returns the successful send
// count.
func (r *Registry) Broadcast(matchID string, data []byte, lookup func(connID string) Sender, excludeID string) int {
	rm, ok := r.rooms[matchID]
	if !ok {
		return 0
	}
	rm.LastActivity = r.now()

	sent := 0
	for connID := range rm.Members {
		if connID == excludeID {
			continue
		}
		c := lookup(connID)
		if c == nil || !c.Open() {
			continue
		}
		if err := c.Send(data); err != nil {
			r.log.Warn("broadcast send failed",
				zap.String("matchId", matchID),
				zap.String("connId", connID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// Cleanup removes rooms that are empty or idle beyond the TTL, along with
// any reverse-index entries still pointing at them. Returns the number of
// rooms removed.
func (r *Registry) Cleanup() int {
	now := r.now()
	removed := 0
	for matchID, rm := range r.rooms {
		if len(rm.Members) == 0 || now.Sub(rm.LastActivity) > r.ttl {
			delete(r.rooms, matchID)
			removed++
		}
	}
	for connID, matchID := range r.byConn {
		if _, ok := r.rooms[matchID]; !ok {
			delete(r.byConn, connID)
		}
	}
	return removed
}

func (r *Registry) Len() int {
	return len(r.rooms)
}
