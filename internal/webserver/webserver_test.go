package webserver_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"briefdesk/internal/events"
	"briefdesk/internal/relay"
	"briefdesk/internal/store"
	"briefdesk/internal/webserver"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, cfg webserver.Config) (*webserver.Server, *store.Store, *events.Registry) {
	t.Helper()
	st, _ := store.Open(":memory:")
	st.Migrate()
	t.Cleanup(func() { st.Close() })
	reg := events.NewRegistry()
	return webserver.New(st, reg, cfg, discardLogger()), st, reg
}

func newAuthServer(t *testing.T) (*webserver.Server, *store.Store) {
	t.Helper()
	srv, st, _ := newServer(t, webserver.Config{
		Enabled: true,
		Host:    "127.0.0.1",
		Auth: webserver.AuthConfig{
			JWTSecret:       "test-secret",
			RefreshTokenTTL: "168h",
		},
	})
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	st.CreateAccount("alice", string(hash))
	return srv, st
}

func login(t *testing.T, srv *webserver.Server) map[string]string {
	t.Helper()
	body := `{"username":"alice","password":"password"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	srv, _ := newAuthServer(t)
	resp := login(t, srv)
	if resp["access_token"] == "" {
		t.Error("expected access_token in response")
	}
	if resp["refresh_token"] == "" {
		t.Error("expected refresh_token in response")
	}
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	srv, _ := newAuthServer(t)
	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefreshEndpoint_RotatesToken(t *testing.T) {
	srv, st := newAuthServer(t)
	loginResp := login(t, srv)

	body := fmt.Sprintf(`{"refresh_token":"%s"}`, loginResp["refresh_token"])
	req := httptest.NewRequest("POST", "/api/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["access_token"] == "" {
		t.Error("expected new access_token")
	}
	if _, err := st.GetRefreshToken(loginResp["refresh_token"]); err == nil {
		t.Error("old refresh token should be deleted after rotation")
	}
}

func TestLogoutEndpoint(t *testing.T) {
	srv, st := newAuthServer(t)
	loginResp := login(t, srv)

	body := fmt.Sprintf(`{"refresh_token":"%s"}`, loginResp["refresh_token"])
	req := httptest.NewRequest("POST", "/api/auth/logout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 204 {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, err := st.GetRefreshToken(loginResp["refresh_token"]); err == nil {
		t.Error("refresh token should be deleted after logout")
	}
}

func TestBriefingsEndpoint(t *testing.T) {
	srv, st, _ := newServer(t, webserver.Config{Enabled: true, Host: "127.0.0.1"})
	st.InsertBriefing("daily", "/inbox/daily.md", "Long body text here.")

	req := httptest.NewRequest("GET", "/api/briefings", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result struct {
		Briefings []*store.Briefing `json:"briefings"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Briefings) != 1 {
		t.Fatalf("expected 1 briefing, got %d", len(result.Briefings))
	}
	if result.Briefings[0].Body != "" {
		t.Error("list endpoint should omit briefing bodies")
	}
}

func TestBriefingDetailEndpoint(t *testing.T) {
	srv, st, _ := newServer(t, webserver.Config{Enabled: true, Host: "127.0.0.1"})
	id, _ := st.InsertBriefing("daily", "/inbox/daily.md", "Full body.")

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/briefings/%d", id), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var b store.Briefing
	json.NewDecoder(w.Body).Decode(&b)
	if b.Body != "Full body." {
		t.Errorf("body: got %q", b.Body)
	}

	req = httptest.NewRequest("GET", "/api/briefings/99999", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 404 {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
}

func TestAuthMiddleware_ProtectsAPI(t *testing.T) {
	srv, _ := newAuthServer(t)

	req := httptest.NewRequest("GET", "/api/briefings", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	resp := login(t, srv)
	req = httptest.NewRequest("GET", "/api/briefings", nil)
	req.Header.Set("Authorization", "Bearer "+resp["access_token"])
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWebsocketSurface_ReceivesRelayedEvent(t *testing.T) {
	srv, _, reg := newServer(t, webserver.Config{Enabled: true, Host: "127.0.0.1"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The surface attaches inside the handler goroutine; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for len(reg.Surfaces()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("surface never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rel := relay.New(reg, discardLogger())
	rel.NotifyBriefingCreated(7)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e events.Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if e.Type != events.BriefingCreated || e.BriefingID != 7 {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestWebsocketSurface_DetachesOnClose(t *testing.T) {
	srv, _, reg := newServer(t, webserver.Config{Enabled: true, Host: "127.0.0.1"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(reg.Surfaces()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("surface never attached")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for len(reg.Surfaces()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("surface never detached after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
