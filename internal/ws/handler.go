package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dotapulse/gsi-backend/internal/hub"
	"github.com/dotapulse/gsi-backend/pkg/types"
)

// adapter narrows *websocket.Conn to the hub's Transport.
type adapter struct {
	conn *websocket.Conn
}

func (a adapter) WriteText(ctx context.Context, data []byte) error {
	return a.conn.Write(ctx, websocket.MessageText, data)
}

func (a adapter) Ping(ctx context.Context) error {
	return a.conn.Ping(ctx)
}

func (a adapter) Close(code websocket.StatusCode, reason string) error {
	return a.conn.Close(code, reason)
}

// Handler upgrades the request and shuttles decoded client messages into the
// hub inbox. All connection state lives in the hub; this handler only reads.
func Handler(h *hub.Hub, devMode bool, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := &websocket.AcceptOptions{}
		if devMode {
			opts.OriginPatterns = []string{"localhost:*", "127.0.0.1:*"}
		}
		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}

		clientID := uuid.NewString()
		c := hub.NewConn(clientID, adapter{conn: conn})
		h.Inbox() <- hub.Register{Conn: c}
		defer func() { h.Inbox() <- hub.Unregister{ID: clientID, Reason: "client disconnected"} }()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				payload, _ := json.Marshal(types.ErrorMessage{
					Type:    types.MsgError,
					Message: "bad json",
					Code:    "bad_request",
				})
				_ = conn.Write(r.Context(), websocket.MessageText, payload)
				continue
			}

			h.Inbox() <- hub.Inbound{ID: clientID, Msg: cm}
		}
	}
}
