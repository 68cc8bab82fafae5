// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game. Mounted under /game:
//   - POST /game/new     → start a session; returns gameId, token and state
//   - GET  /game/state   → current snapshot
//   - POST /game/letter  → type one hiragana character
//   - POST /game/flick   → type the character a flick gesture selects
//   - POST /game/key     → physical keyboard: Enter, Backspace/Delete, or a character
//   - POST /game/delete  → delete the last character
//   - POST /game/submit  → submit the current row
//   - POST /game/reset   → start over
//   - POST /game/action  → any action in wire form ({"type": ..., "letter": ...})
//
// Every route but /game/new requires the session token. RevealComplete is
// driven by the server-side reveal timer and cannot be sent by clients.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/discord"
	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
	"github.com/mizukendesu/kotonoha-wordle/internal/session"
	"github.com/mizukendesu/kotonoha-wordle/internal/words"
)

// mountGame registers all /game JSON routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Get("/state", s.handleState)
			r.Post("/letter", s.handleLetter)
			r.Post("/flick", s.handleFlick)
			r.Post("/key", s.handleKey)
			r.Post("/delete", s.actionHandler(game.DeleteLetter{}))
			r.Post("/submit", s.actionHandler(game.SubmitGuess{}))
			r.Post("/reset", s.actionHandler(game.Reset{}))
			r.Post("/action", s.handleAction)
		})
	})
}

// stateRes is the snapshot payload returned by every game route.
type stateRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
	Answer string     `json:"answer,omitempty"` // only once lost and revealed
}

func (s *Server) snapshotRes(id string, st game.State) stateRes {
	res := stateRes{GameID: id, State: st}
	if st.GameStatus == game.StatusLost && !st.IsRevealing {
		res.Answer = s.games.Engine().Target()
	}
	return res
}

// -----------------------------------------------------------------------------
// /game/new

type newGameRes struct {
	GameID   string     `json:"gameId"`
	Token    string     `json:"token"`
	State    game.State `json:"state"`
	Embedded bool       `json:"embedded"` // request came from a Discord Activity frame
}

// handleNewGame creates a session and hands out its token (body + cookie).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.games.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signSessionToken(sess.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)

	embedded := discord.IsEmbedded(r.URL.Query())
	log.Info().Str("gameId", sess.ID()).Bool("embedded", embedded).Msg("new game")
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:   sess.ID(),
		Token:    tok,
		State:    sess.Snapshot(),
		Embedded: embedded,
	})
}

// -----------------------------------------------------------------------------
// /game/state and plain actions

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	st, err := s.games.Snapshot(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(s.snapshotRes(id, st))
}

// actionHandler serves a route that always dispatches the same action.
func (s *Server) actionHandler(a game.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.dispatch(w, r, a)
	}
}

// dispatch applies a to the caller's session and writes the snapshot.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a game.Action) {
	id := gameID(r)
	st, err := s.games.Dispatch(r.Context(), id, a)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(s.snapshotRes(id, st))
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	log.Error().Err(err).Msg("session")
	writeError(w, http.StatusInternalServerError, "session_error")
}

// -----------------------------------------------------------------------------
// /game/letter

type letterReq struct {
	Letter string `json:"letter"`
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !words.IsLetter(req.Letter) {
		writeError(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	s.dispatch(w, r, game.AddLetter{Letter: req.Letter})
}

// -----------------------------------------------------------------------------
// /game/flick

// flickReq is a completed gesture: pointer-down at Start, pointer-up at End.
type flickReq struct {
	Key   string      `json:"key"`
	Start flick.Point `json:"start"`
	End   flick.Point `json:"end"`
}

func (s *Server) handleFlick(w http.ResponseWriter, r *http.Request) {
	var req flickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	k, ok := s.layout.Key(req.Key)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_key")
		return
	}
	char := flick.Decode(k, req.Start, req.End)
	if !words.IsLetter(char) {
		writeError(w, http.StatusBadRequest, "invalid_letter")
		return
	}
	s.dispatch(w, r, game.AddLetter{Letter: char})
}

// -----------------------------------------------------------------------------
// /game/key

type keyReq struct {
	Key string `json:"key"`
}

// physicalKeyAction maps a KeyboardEvent.key value to an action.
// Keys outside Enter/Backspace/Delete/hiragana map to nil (ignored).
func physicalKeyAction(key string) game.Action {
	switch {
	case key == "Enter":
		return game.SubmitGuess{}
	case key == "Backspace" || key == "Delete":
		return game.DeleteLetter{}
	case words.IsLetter(key):
		return game.AddLetter{Letter: key}
	}
	return nil
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	a := physicalKeyAction(req.Key)
	if a == nil {
		s.handleState(w, r)
		return
	}
	s.dispatch(w, r, a)
}

// -----------------------------------------------------------------------------
// /game/action

// actionReq is the wire form of a game.Action. Also used over WebSocket.
type actionReq struct {
	Type   string `json:"type"`
	Letter string `json:"letter,omitempty"`
}

var errBadAction = errors.New("unsupported action")

// parseAction converts the wire form into a game.Action.
func parseAction(req actionReq) (game.Action, error) {
	switch req.Type {
	case "add_letter":
		if !words.IsLetter(req.Letter) {
			return nil, errors.New("invalid_letter")
		}
		return game.AddLetter{Letter: req.Letter}, nil
	case "delete_letter":
		return game.DeleteLetter{}, nil
	case "submit_guess":
		return game.SubmitGuess{}, nil
	case "reset":
		return game.Reset{}, nil
	}
	return nil, errBadAction
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	a, err := parseAction(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, r, a)
}
