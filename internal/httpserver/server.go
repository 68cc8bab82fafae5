// internal/httpserver/server.go
//
// HTTP server wiring for the kotonoha wordle backend.
// Responsibilities:
//   - Router + middleware (access log, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/keyboard".
//   - Game endpoints (session token required except /game/new): mounted under /game.
//   - WebSocket snapshot stream: /game/ws.
//   - Discord Activity OAuth code exchange: POST /api/token.
//   - Session token (JWT) + cookie handling.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The WebSocket route sits outside the request timeout.
//   - Disallowed game actions are not errors; handlers return the unchanged state.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/discord"
	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/session"
)

// Options carries the HTTP-facing configuration.
type Options struct {
	ClientOrigin string        // allowed CORS / WebSocket origin
	JWTSecret    string        // HS256 key for session tokens
	SessionTTL   time.Duration // token lifetime
	Production   bool          // Secure + SameSite=None cookies
}

// Server bundles router, session manager, keypad layout and Discord client.
type Server struct {
	r       *chi.Mux
	games   *session.Manager
	layout  flick.Layout
	discord *discord.Client
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(games *session.Manager, layout flick.Layout, dc *discord.Client, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), games: games, layout: layout, discord: dc, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)   // add X-Request-ID
	s.r.Use(chimw.RealIP)      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)         // one zerolog line per request
	s.r.Use(chimw.Recoverer)   // recover from panics
	s.r.Use(s.corsFromOptions) // credentials-friendly CORS

	// Snapshot stream: long-lived, so no timeout.
	s.r.With(s.requireSession()).Get("/game/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"kotonoha-wordle","endpoints":["/health","/keyboard","POST /game/new","/game/*","POST /api/token"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/keyboard", s.handleKeyboard)

		s.mountGame(r)

		r.Post("/api/token", s.handleDiscordToken)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromOptions enables credentialed CORS for a single origin.
func (s *Server) corsFromOptions(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeError emits {"error": code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ KEYBOARD -----------------------------------

type keyRes struct {
	flick.Key
	Guides []flick.Guide `json:"guides"`
}

type keyboardRes struct {
	WordLength  int      `json:"wordLength"`
	MaxAttempts int      `json:"maxAttempts"`
	Keys        []keyRes `json:"keys"`
}

// handleKeyboard returns the flick layout and board dimensions.
func (s *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	out := keyboardRes{
		WordLength:  s.games.Engine().WordLength(),
		MaxAttempts: s.games.Engine().MaxAttempts(),
		Keys:        make([]keyRes, 0, len(s.layout.Keys)),
	}
	for _, k := range s.layout.Keys {
		out.Keys = append(out.Keys, keyRes{Key: k, Guides: k.Guides()})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// ------------------------------- DISCORD -----------------------------------

type tokenReq struct {
	Code string `json:"code"`
}

// handleDiscordToken exchanges an Activity authorization code for an access token.
func (s *Server) handleDiscordToken(w http.ResponseWriter, r *http.Request) {
	var req tokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	tok, err := s.discord.Exchange(r.Context(), req.Code)
	if err != nil {
		var xe *discord.ExchangeError
		switch {
		case errors.Is(err, discord.ErrMissingCode):
			writeError(w, http.StatusBadRequest, "Authorization code is required")
		case errors.Is(err, discord.ErrNotConfigured):
			log.Error().Msg("discord client credentials missing")
			writeError(w, http.StatusInternalServerError, "Server configuration error")
		case errors.As(err, &xe):
			log.Warn().Int("status", xe.Status).Str("body", xe.Body).Msg("discord token exchange failed")
			writeError(w, xe.Status, "Token exchange failed")
		default:
			log.Error().Err(err).Msg("discord token exchange")
			writeError(w, http.StatusBadGateway, "Token exchange failed")
		}
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
}

// -------------------------- session tokens ---------------------------------

const sessionCookieName = "kotonoha_session"

// ctxGameKey is the context key type for the authenticated game ID.
type ctxGameKey struct{}

// signSessionToken creates an HS256 JWT naming the game.
func (s *Server) signSessionToken(gameID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseSessionToken validates a token and returns its game ID.
func (s *Server) parseSessionToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errors.New("invalid token")
	}
	return gid, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Production {
		sameSite = http.SameSiteNoneMode // required inside the Discord iframe
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// sessionToken extracts a token from the Authorization header, the session
// cookie, or (for WebSocket handshakes) the token query parameter.
func sessionToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// requireSession enforces a valid session token and injects the game ID.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := sessionToken(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			gid, err := s.parseSessionToken(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxGameKey{}, gid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// gameID returns the game ID placed in context by requireSession.
func gameID(r *http.Request) string {
	id, _ := r.Context().Value(ctxGameKey{}).(string)
	return id
}
