package types

import "encoding/json"

// Client -> Server
//   auth:        { token: string }
//   subscribe:   { matchId: string }
//   unsubscribe: {}
//   ping:        {}
type ClientMessage struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	MatchID string `json:"matchId,omitempty"`
}

// Server -> Client message types.
const (
	MsgAuthResponse      = "auth_response"
	MsgSubscribeResponse = "subscribe_response"
	MsgSnapshot          = "snapshot"
	MsgPong              = "pong"
	MsgError             = "error"
)

type AuthResponse struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	ClientID string `json:"clientId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SubscribeResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	MatchID string `json:"matchId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SnapshotMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// DefaultMatchID is the sentinel room every freshly authenticated client is
// subscribed to until the game client reports a real match.
const DefaultMatchID = "no_active_match"
