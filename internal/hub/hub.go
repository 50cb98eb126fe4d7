package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/dotapulse/gsi-backend/internal/gsi"
	"github.com/dotapulse/gsi-backend/internal/room"
	"github.com/dotapulse/gsi-backend/pkg/types"
)

type Msg interface{ isHubMsg() }

type Register struct {
	Conn *Conn
}

type Unregister struct {
	ID     string
	Reason string
}

type Inbound struct {
	ID  string
	Msg types.ClientMessage
}

type PongReceived struct {
	ID string
}

type BroadcastSnapshot struct {
	Snapshot *gsi.Snapshot
}

type GetStats struct {
	Reply chan Stats
}

type Shutdown struct{}

func (Register) isHubMsg()          {}
func (Unregister) isHubMsg()        {}
func (Inbound) isHubMsg()           {}
func (PongReceived) isHubMsg()      {}
func (BroadcastSnapshot) isHubMsg() {}
func (GetStats) isHubMsg()          {}
func (Shutdown) isHubMsg()          {}

type Stats struct {
	Connections       int   `json:"connections"`
	Rooms             int   `json:"rooms"`
	BroadcastsSent    int64 `json:"broadcastsSent"`
	BroadcastsSkipped int64 `json:"broadcastsSkipped"`
}

type Options struct {
	AuthToken         string
	HeartbeatInterval time.Duration
	ClientTimeout     time.Duration
	RoomTTL           time.Duration
	RoomSweepInterval time.Duration
}

// Hub owns the connection map and the room registry. Everything flows
// through its inbox and runs on the single loop goroutine, so handlers never
// interleave and the registries need no locking.
type Hub struct {
	inbox chan Msg
	conns map[string]*Conn
	rooms *room.Registry
	opts  Options
	log   *zap.Logger

	broadcastsSent    int64
	broadcastsSkipped int64

	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

func NewHub(parent context.Context, opts Options, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		conns:  make(map[string]*Conn),
		rooms:  room.NewRegistry(opts.RoomTTL, log),
		opts:   opts,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Shutdown cancels the hub loop. Safe to call more than once.
func (h *Hub) Shutdown() { h.cancel() }

func (h *Hub) loop() {
	heartbeat := time.NewTicker(h.opts.HeartbeatInterval)
	roomSweep := time.NewTicker(h.opts.RoomSweepInterval)
	defer heartbeat.Stop()
	defer roomSweep.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-heartbeat.C:
			h.sweepConnections()

		case <-roomSweep.C:
			if removed := h.rooms.Cleanup(); removed > 0 {
				h.log.Info("room sweep", zap.Int("removed", removed))
			}

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				c := msg.Conn
				c.Alive = true
				c.LastSeen = time.Now()
				h.conns[c.ID] = c
				go c.run(h.ctx)
				h.log.Info("connection opened", zap.String("connId", c.ID))

			case Unregister:
				h.dropConn(msg.ID, websocket.StatusNormalClosure, msg.Reason)

			case Inbound:
				if c, ok := h.conns[msg.ID]; ok {
					h.handleCommand(c, msg.Msg)
				}

			case PongReceived:
				if c, ok := h.conns[msg.ID]; ok {
					c.Alive = true
					c.LastSeen = time.Now()
				}

			case BroadcastSnapshot:
				h.broadcastSnapshot(msg.Snapshot)

			case GetStats:
				msg.Reply <- Stats{
					Connections:       len(h.conns),
					Rooms:             h.rooms.Len(),
					BroadcastsSent:    h.broadcastsSent,
					BroadcastsSkipped: h.broadcastsSkipped,
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

// handleCommand dispatches one decoded client message. Until a connection
// has authenticated, auth is the only command it may issue.
func (h *Hub) handleCommand(c *Conn, msg types.ClientMessage) {
	c.Alive = true
	c.LastSeen = time.Now()

	if msg.Type == "auth" {
		h.handleAuth(c, msg.Token)
		return
	}
	if !c.Authenticated {
		h.send(c, types.ErrorMessage{Type: types.MsgError, Message: "not authenticated", Code: "auth_required"})
		return
	}

	switch msg.Type {
	case "subscribe":
		if msg.MatchID == "" {
			h.send(c, types.SubscribeResponse{Type: types.MsgSubscribeResponse, Success: false, Error: "missing matchId"})
			return
		}
		h.rooms.Subscribe(c.ID, msg.MatchID)
		c.MatchID = msg.MatchID
		h.send(c, types.SubscribeResponse{Type: types.MsgSubscribeResponse, Success: true, MatchID: msg.MatchID})

	case "unsubscribe":
		h.rooms.Unsubscribe(c.ID)
		c.MatchID = ""
		h.send(c, types.SubscribeResponse{Type: types.MsgSubscribeResponse, Success: true})

	case "ping":
		h.send(c, types.PongMessage{Type: types.MsgPong, Timestamp: time.Now().UnixMilli()})

	default:
		h.send(c, types.ErrorMessage{Type: types.MsgError, Message: "unknown message type", Code: "bad_request"})
	}
}

func (h *Hub) handleAuth(c *Conn, token string) {
	if h.opts.AuthToken == "" {
		h.log.Warn("no auth token configured, accepting client without credentials",
			zap.String("connId", c.ID))
	} else if token != h.opts.AuthToken {
		h.send(c, types.AuthResponse{Type: types.MsgAuthResponse, Success: false, Error: "invalid token"})
		return
	}

	c.Authenticated = true
	h.send(c, types.AuthResponse{Type: types.MsgAuthResponse, Success: true, ClientID: c.ID})

	// New clients start in the pre-match room so they receive broadcasts
	// before the game client reports a real match.
	h.rooms.Subscribe(c.ID, types.DefaultMatchID)
	c.MatchID = types.DefaultMatchID
}

func (h *Hub) send(c *Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal server message", zap.Error(err))
		return
	}
	if err := c.Send(data); err != nil {
		h.log.Debug("send failed", zap.String("connId", c.ID), zap.Error(err))
	}
}

// broadcastSnapshot fans one canonical snapshot out to the room for its
// match. Snapshots without a match id have no room and are counted skipped.
func (h *Hub) broadcastSnapshot(snap *gsi.Snapshot) {
	if snap == nil || snap.MatchID == nil {
		h.broadcastsSkipped++
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("marshal snapshot", zap.Error(err))
		h.broadcastsSkipped++
		return
	}
	envelope, err := json.Marshal(types.SnapshotMessage{Type: types.MsgSnapshot, Data: data})
	if err != nil {
		h.log.Error("marshal snapshot envelope", zap.Error(err))
		h.broadcastsSkipped++
		return
	}

	sent := h.rooms.Broadcast(*snap.MatchID, envelope, h.lookup, "")
	h.broadcastsSent += int64(sent)
	h.log.Debug("snapshot broadcast",
		zap.String("matchId", *snap.MatchID),
		zap.Int("sent", sent))
}

func (h *Hub) lookup(connID string) room.Sender {
	c, ok := h.conns[connID]
	if !ok {
		return nil
	}
	return c
}

// sweepConnections terminates connections that never refreshed liveness
// since the previous sweep or went quiet past the client timeout, then
// provisionally marks the survivors dead and pings them. A transport pong
// or any inbound command flips them back before the next sweep.
func (h *Hub) sweepConnections() {
	now := time.Now()
	for id, c := range h.conns {
		if !c.Alive || now.Sub(c.LastSeen) > h.opts.ClientTimeout {
			h.dropConn(id, websocket.StatusPolicyViolation, "liveness timeout")
			continue
		}
		c.Alive = false
		go h.ping(c)
	}
}

func (h *Hub) ping(c *Conn) {
	ctx, cancel := context.WithTimeout(h.ctx, h.opts.HeartbeatInterval)
	defer cancel()
	if err := c.transport.Ping(ctx); err != nil {
		return
	}
	select {
	case h.inbox <- PongReceived{ID: c.ID}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) dropConn(id string, code websocket.StatusCode, reason string) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	h.rooms.Unsubscribe(id)
	delete(h.conns, id)
	c.close(code, reason)
	h.log.Info("connection closed", zap.String("connId", id), zap.String("reason", reason))
}

func (h *Hub) shutdown() {
	if h.stopped {
		return
	}
	h.stopped = true
	for id, c := range h.conns {
		c.close(websocket.StatusGoingAway, "server shutting down")
		delete(h.conns, id)
	}
	h.rooms = room.NewRegistry(h.opts.RoomTTL, h.log)
	h.cancel()
	h.log.Info("hub stopped")
}
