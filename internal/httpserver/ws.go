// internal/httpserver/ws.go
//
// WebSocket snapshot stream for one game session.
//   - On connect the current snapshot is sent immediately.
//   - Every later transition (including server-driven reveal completion) is
//     pushed as a "state" message.
//   - Clients may send actions in wire form ({"type":"add_letter","letter":"あ"});
//     their effect arrives through the same stream.
//   - One writer goroutine owns the connection for writes; the reader only
//     parses and dispatches.

package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsReadLimit  = 512
)

// wsMessage is every server → client frame.
type wsMessage struct {
	Type string `json:"type"` // "state" | "error"
	*stateRes
	Error string `json:"error,omitempty"`
}

// checkOrigin accepts same-host requests, requests without Origin (native
// clients), and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.opts.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	ch, cancel, err := s.games.Subscribe(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	defer cancel()

	up := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		log.Warn().Err(err).Str("gameId", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	log.Info().Str("gameId", id).Msg("websocket connected")

	st, err := s.games.Snapshot(r.Context(), id)
	if err != nil {
		return
	}
	errs := make(chan string, 4)
	done := make(chan struct{})
	go s.wsReadPump(r.Context(), conn, id, errs, done)
	s.wsWritePump(conn, id, st, ch, errs, done)
	log.Info().Str("gameId", id).Msg("websocket closed")
}

// wsReadPump decodes client actions until the connection fails.
func (s *Server) wsReadPump(ctx context.Context, conn *websocket.Conn, id string, errs chan<- string, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var req actionReq
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", id).Msg("websocket read")
			}
			return
		}
		a, err := parseAction(req)
		if err == nil {
			// The snapshot comes back through the subscription.
			_, err = s.games.Dispatch(ctx, id, a)
		}
		if err != nil {
			select {
			case errs <- err.Error():
			default:
			}
		}
	}
}

// wsWritePump sends the initial snapshot, then every published one.
func (s *Server) wsWritePump(conn *websocket.Conn, id string, first game.State, ch <-chan game.State, errs <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	send := func(m wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(m); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("websocket write")
			return false
		}
		return true
	}
	state := func(st game.State) wsMessage {
		res := s.snapshotRes(id, st)
		return wsMessage{Type: "state", stateRes: &res}
	}

	if !send(state(first)) {
		return
	}
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				// Session removed.
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !send(state(st)) {
				return
			}
		case e := <-errs:
			if !send(wsMessage{Type: "error", Error: e}) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
