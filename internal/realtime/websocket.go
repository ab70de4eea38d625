package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/vbonduro/fieldtech/internal/events"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Options configure one WebSocket connection.
type Options struct {
	// CheckOrigin validates the handshake Origin header. When nil the
	// origin host must match the request host.
	CheckOrigin func(r *http.Request) bool
	// Filter drops events the connected client may not see.
	Filter Filter
}

// ServeWS upgrades the request and streams hub events for the collections
// named in the comma separated "collections" query parameter.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, opts Options) {
	upgrader := ws.Upgrader{CheckOrigin: opts.CheckOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	collections := parseCollections(r.URL.Query().Get("collections"))
	stream, unsubscribe := hub.SubscribeFiltered(opts.Filter, collections...)
	slog.Info("websocket client connected", "collections", collections, "total", hub.Subscribers())

	done := make(chan struct{})
	go func() {
		defer close(done)
		readLoop(conn)
	}()

	writeLoop(conn, stream, done)
	unsubscribe()
	_ = conn.Close()
	slog.Info("websocket client disconnected")
}

// readLoop discards client messages and keeps the read deadline alive on pong.
func readLoop(conn *ws.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeLoop(conn *ws.Conn, stream <-chan events.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e, ok := <-stream:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func parseCollections(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
