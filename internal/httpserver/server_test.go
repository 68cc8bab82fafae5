package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mizukendesu/kotonoha-wordle/internal/discord"
	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
	"github.com/mizukendesu/kotonoha-wordle/internal/session"
	"github.com/mizukendesu/kotonoha-wordle/internal/store"
)

const testTarget = "さくらもち"

type heldTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *heldTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// heldScheduler keeps reveal callbacks until the test releases them.
type heldScheduler struct {
	mu     sync.Mutex
	timers []*heldTimer
}

func (s *heldScheduler) AfterFunc(d time.Duration, f func()) session.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &heldTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *heldScheduler) release() {
	s.mu.Lock()
	ts := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range ts {
		if t.Stop() {
			t.f()
		}
	}
}

func newTestServer(t *testing.T, dc *discord.Client) (*Server, *heldScheduler) {
	t.Helper()
	e, err := game.NewEngine(game.Config{WordLength: 5, MaxAttempts: 6, Target: testTarget})
	if err != nil {
		t.Fatal(err)
	}
	sched := &heldScheduler{}
	m := session.NewManager(e, store.NewMemoryStore(), sched)
	if dc == nil {
		dc = discord.NewClient("", "", "")
	}
	return New(m, flick.DefaultLayout(), dc, Options{JWTSecret: "test-secret"}), sched
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateRes {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res stateRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func newGame(t *testing.T, s *Server) newGameRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("new game status = %d", rec.Code)
	}
	var res newGameRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func typeWord(t *testing.T, s *Server, token, word string) stateRes {
	t.Helper()
	var res stateRes
	for _, r := range word {
		res = decodeState(t, do(t, s, http.MethodPost, "/game/letter", token, letterReq{Letter: string(r)}))
	}
	return res
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "not_found") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewGame(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/game/new?frame_id=abc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res newGameRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.GameID == "" || res.Token == "" {
		t.Fatalf("missing id or token: %+v", res)
	}
	if !res.Embedded {
		t.Error("embedded = false with frame_id")
	}
	if len(res.State.Board) != 6 || len(res.State.Board[0]) != 5 {
		t.Errorf("board = %dx%d", len(res.State.Board), len(res.State.Board[0]))
	}
	if res.State.GameStatus != game.StatusPlaying {
		t.Errorf("status = %s", res.State.GameStatus)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != res.Token || !cookie.HttpOnly {
		t.Fatalf("session cookie = %+v", cookie)
	}
}

func TestSessionTokenRequired(t *testing.T) {
	s, _ := newTestServer(t, nil)

	if rec := do(t, s, http.MethodGet, "/game/state", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/game/state", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", rec.Code)
	}

	other, _ := newTestServer(t, nil)
	other.opts.JWTSecret = "someone-else"
	foreign, _, err := other.signSessionToken("x")
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(t, s, http.MethodGet, "/game/state", foreign, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign token: %d", rec.Code)
	}

	orphan, _, err := s.signSessionToken("no-such-game")
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(t, s, http.MethodGet, "/game/state", orphan, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown game: %d", rec.Code)
	}
}

func TestCookieAuth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	g := newGame(t, s)
	req := httptest.NewRequest(http.MethodGet, "/game/state", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: g.Token})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if res := decodeState(t, rec); res.GameID != g.GameID {
		t.Fatalf("gameId = %q, want %q", res.GameID, g.GameID)
	}
}

func TestLetterValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	g := newGame(t, s)
	for _, bad := range []string{"", "a", "さく", "カ"} {
		if rec := do(t, s, http.MethodPost, "/game/letter", g.Token, letterReq{Letter: bad}); rec.Code != http.StatusBadRequest {
			t.Errorf("letter %q: status %d", bad, rec.Code)
		}
	}
	res := decodeState(t, do(t, s, http.MethodPost, "/game/letter", g.Token, letterReq{Letter: "さ"}))
	if res.State.CurrentCol != 1 || res.State.Board[0][0].Letter != "さ" {
		t.Fatalf("after letter: col=%d cell=%+v", res.State.CurrentCol, res.State.Board[0][0])
	}
}

func TestFlick(t *testing.T) {
	s, _ := newTestServer(t, nil)
	g := newGame(t, s)

	cases := []struct {
		key        string
		start, end flick.Point
		want       string
	}{
		{"さ", flick.Point{X: 0, Y: 0}, flick.Point{X: 0, Y: -30}, "す"},
		{"か", flick.Point{X: 10, Y: 10}, flick.Point{X: 12, Y: 12}, "か"},
		{"わ", flick.Point{X: 0, Y: 0}, flick.Point{X: 30, Y: 0}, "ん"},
	}
	for i, tc := range cases {
		res := decodeState(t, do(t, s, http.MethodPost, "/game/flick", g.Token, flickReq{Key: tc.key, Start: tc.start, End: tc.end}))
		if got := res.State.Board[0][i].Letter; got != tc.want {
			t.Errorf("flick %s %v→%v = %q, want %q", tc.key, tc.start, tc.end, got, tc.want)
		}
	}

	if rec := do(t, s, http.MethodPost, "/game/flick", g.Token, flickReq{Key: "ア"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown key: status %d", rec.Code)
	}
}

func TestPhysicalKeys(t *testing.T) {
	s, _ := newTestServer(t, nil)
	g := newGame(t, s)
	typeWord(t, s, g.Token, "さく")

	// Enter on a partial row and unrecognised keys leave the state alone.
	for _, k := range []string{"Enter", "Tab", "a", "Shift"} {
		res := decodeState(t, do(t, s, http.MethodPost, "/game/key", g.Token, keyReq{Key: k}))
		if res.State.CurrentCol != 2 || res.State.IsRevealing {
			t.Errorf("key %q changed state: col=%d revealing=%v", k, res.State.CurrentCol, res.State.IsRevealing)
		}
	}

	res := decodeState(t, do(t, s, http.MethodPost, "/game/key", g.Token, keyReq{Key: "Backspace"}))
	if res.State.CurrentCol != 1 {
		t.Errorf("Backspace: col = %d", res.State.CurrentCol)
	}
	res = decodeState(t, do(t, s, http.MethodPost, "/game/key", g.Token, keyReq{Key: "Delete"}))
	if res.State.CurrentCol != 0 {
		t.Errorf("Delete: col = %d", res.State.CurrentCol)
	}
	res = decodeState(t, do(t, s, http.MethodPost, "/game/key", g.Token, keyReq{Key: "ら"}))
	if res.State.Board[0][0].Letter != "ら" {
		t.Errorf("hiragana key: cell = %+v", res.State.Board[0][0])
	}
}

func TestWinFlow(t *testing.T) {
	s, sched := newTestServer(t, nil)
	g := newGame(t, s)
	typeWord(t, s, g.Token, testTarget)

	res := decodeState(t, do(t, s, http.MethodPost, "/game/submit", g.Token, nil))
	if res.State.GameStatus != game.StatusWon || !res.State.IsRevealing {
		t.Fatalf("after submit: status=%s revealing=%v", res.State.GameStatus, res.State.IsRevealing)
	}
	// Reset is accepted mid-reveal.
	res = decodeState(t, do(t, s, http.MethodPost, "/game/reset", g.Token, nil))
	if res.State.GameStatus != game.StatusPlaying {
		t.Fatalf("reset should always be accepted, got %s", res.State.GameStatus)
	}

	typeWord(t, s, g.Token, testTarget)
	decodeState(t, do(t, s, http.MethodPost, "/game/submit", g.Token, nil))
	sched.release()

	res = decodeState(t, do(t, s, http.MethodGet, "/game/state", g.Token, nil))
	if res.State.IsRevealing || res.State.CurrentRow != 0 || res.State.CurrentCol != 5 {
		t.Fatalf("after reveal: revealing=%v row=%d col=%d", res.State.IsRevealing, res.State.CurrentRow, res.State.CurrentCol)
	}
	if res.Answer != "" {
		t.Errorf("answer leaked on win: %q", res.Answer)
	}
}

func TestLossRevealsAnswer(t *testing.T) {
	s, sched := newTestServer(t, nil)
	g := newGame(t, s)

	var res stateRes
	for i := 0; i < 6; i++ {
		typeWord(t, s, g.Token, "あいうえお")
		res = decodeState(t, do(t, s, http.MethodPost, "/game/action", g.Token, actionReq{Type: "submit_guess"}))
		if i < 5 && res.State.GameStatus != game.StatusPlaying {
			t.Fatalf("attempt %d: status %s", i, res.State.GameStatus)
		}
		if res.Answer != "" {
			t.Fatalf("attempt %d: answer shown while revealing", i)
		}
		sched.release()
	}
	if res.State.GameStatus != game.StatusLost {
		t.Fatalf("status = %s, want lost", res.State.GameStatus)
	}
	res = decodeState(t, do(t, s, http.MethodGet, "/game/state", g.Token, nil))
	if res.Answer != testTarget {
		t.Fatalf("answer = %q", res.Answer)
	}
}

func TestActionRejectsRevealComplete(t *testing.T) {
	s, _ := newTestServer(t, nil)
	g := newGame(t, s)
	for _, req := range []actionReq{{Type: "reveal_complete"}, {Type: "bogus"}, {Type: "add_letter", Letter: "x"}} {
		if rec := do(t, s, http.MethodPost, "/game/action", g.Token, req); rec.Code != http.StatusBadRequest {
			t.Errorf("%+v: status %d", req, rec.Code)
		}
	}
}

func TestKeyboardLayout(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/keyboard", "", nil)
	var res keyboardRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.WordLength != 5 || res.MaxAttempts != 6 || len(res.Keys) != 10 {
		t.Fatalf("keyboard = %+v", res)
	}
	if res.Keys[0].Label != "あ" || len(res.Keys[0].Guides) != 4 {
		t.Errorf("first key = %+v", res.Keys[0])
	}
}

func TestDiscordToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok-123"}`)
	}))
	defer upstream.Close()

	s, _ := newTestServer(t, discord.NewClient("id", "secret", upstream.URL))

	rec := do(t, s, http.MethodPost, "/api/token", "", tokenReq{Code: "good"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tok-123") {
		t.Fatalf("good code: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodPost, "/api/token", "", tokenReq{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing code: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/token", "", tokenReq{Code: "bad"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("rejected code: %d", rec.Code)
	}

	unconfigured, _ := newTestServer(t, nil)
	if rec := do(t, unconfigured, http.MethodPost, "/api/token", "", tokenReq{Code: "good"}); rec.Code != http.StatusInternalServerError {
		t.Errorf("unconfigured: %d", rec.Code)
	}
}

func TestWebSocketStream(t *testing.T) {
	s, sched := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	g := newGame(t, s)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + g.Token}})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	read := func() stateRes {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var raw struct {
			Type string `json:"type"`
			stateRes
			Error string `json:"error"`
		}
		if err := conn.ReadJSON(&raw); err != nil {
			t.Fatal(err)
		}
		if raw.Type != "state" {
			t.Fatalf("message type %q (%s)", raw.Type, raw.Error)
		}
		return raw.stateRes
	}

	if first := read(); first.GameID != g.GameID || first.State.CurrentCol != 0 {
		t.Fatalf("initial snapshot = %+v", first)
	}

	for _, r := range testTarget {
		if err := conn.WriteJSON(actionReq{Type: "add_letter", Letter: string(r)}); err != nil {
			t.Fatal(err)
		}
		read()
	}
	if err := conn.WriteJSON(actionReq{Type: "submit_guess"}); err != nil {
		t.Fatal(err)
	}
	if st := read(); !st.State.IsRevealing || st.State.GameStatus != game.StatusWon {
		t.Fatalf("after submit = %+v", st.State)
	}

	sched.release()
	if st := read(); st.State.IsRevealing {
		t.Fatal("reveal completion not pushed")
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}
}
