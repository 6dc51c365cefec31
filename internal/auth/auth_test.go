package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/jfmyers9/stylus/internal/config"
)

// writeBody writes a response body and fails the test on error
func writeBody(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("failed to write response: %v", err)
	}
}

// fakeTokenEndpoint captures token exchange requests and serves a fixed grant
type fakeTokenEndpoint struct {
	server    *httptest.Server
	grantType string
	code      string
	requests  int
}

func newFakeTokenEndpoint(t *testing.T) *fakeTokenEndpoint {
	t.Helper()
	f := &fakeTokenEndpoint{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request form: %v", err)
		}
		f.grantType = r.FormValue("grant_type")
		f.code = r.FormValue("code")

		w.Header().Set("Content-Type", "application/json")
		writeBody(t, w, `{"access_token":"fresh-access","token_type":"Bearer","refresh_token":"fresh-refresh","expires_in":3600}`)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestHandler(t *testing.T, tokenURL string) *callbackHandler {
	t.Helper()
	cfg := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		RedirectURL:  "http://127.0.0.1:8888/callback",
	}
	return newCallbackHandler(cfg, "good-state")
}

// TestCallbackHandler_Exchange tests that a valid redirect exchanges the
// authorization code and delivers the token on the result channel.
func TestCallbackHandler_Exchange(t *testing.T) {
	endpoint := newFakeTokenEndpoint(t)
	handler := newTestHandler(t, endpoint.server.URL+"/api/token")

	callback := httptest.NewServer(handler)
	defer callback.Close()

	resp, err := http.Get(callback.URL + "/callback?state=good-state&code=auth-code-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	select {
	case res := <-handler.result:
		if res.err != nil {
			t.Fatalf("unexpected result error: %v", res.err)
		}
		if res.token.AccessToken != "fresh-access" {
			t.Errorf("expected access token %q, got %q", "fresh-access", res.token.AccessToken)
		}
		if res.token.RefreshToken != "fresh-refresh" {
			t.Errorf("expected refresh token %q, got %q", "fresh-refresh", res.token.RefreshToken)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	if endpoint.grantType != "authorization_code" {
		t.Errorf("expected grant_type authorization_code, got %q", endpoint.grantType)
	}
	if endpoint.code != "auth-code-1" {
		t.Errorf("expected code auth-code-1, got %q", endpoint.code)
	}
}

// TestCallbackHandler_StateMismatch tests that a wrong state parameter is
// rejected without hitting the token endpoint.
func TestCallbackHandler_StateMismatch(t *testing.T) {
	endpoint := newFakeTokenEndpoint(t)
	handler := newTestHandler(t, endpoint.server.URL+"/api/token")

	callback := httptest.NewServer(handler)
	defer callback.Close()

	resp, err := http.Get(callback.URL + "/callback?state=evil&code=auth-code-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}

	select {
	case res := <-handler.result:
		if res.err == nil {
			t.Fatal("expected a result error")
		}
		if !strings.Contains(res.err.Error(), "state mismatch") {
			t.Errorf("expected state mismatch error, got %v", res.err)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	if endpoint.requests != 0 {
		t.Errorf("token endpoint hit %d times, expected none", endpoint.requests)
	}
}

// TestCallbackHandler_AuthorizationDenied tests the redirect Spotify sends
// when the user declines the consent screen.
func TestCallbackHandler_AuthorizationDenied(t *testing.T) {
	endpoint := newFakeTokenEndpoint(t)
	handler := newTestHandler(t, endpoint.server.URL+"/api/token")

	callback := httptest.NewServer(handler)
	defer callback.Close()

	resp, err := http.Get(callback.URL + "/callback?state=good-state&error=access_denied")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}

	res := <-handler.result
	if res.err == nil || !strings.Contains(res.err.Error(), "access_denied") {
		t.Errorf("expected access_denied error, got %v", res.err)
	}
}

// TestCallbackHandler_SendsResultOnce tests that only the first callback hit
// produces a result.
func TestCallbackHandler_SendsResultOnce(t *testing.T) {
	endpoint := newFakeTokenEndpoint(t)
	handler := newTestHandler(t, endpoint.server.URL+"/api/token")

	callback := httptest.NewServer(handler)
	defer callback.Close()

	for _, target := range []string{
		"/callback?state=evil",
		"/callback?state=good-state&code=auth-code-1",
	} {
		resp, err := http.Get(callback.URL + target)
		if err != nil {
			t.Fatalf("callback request failed: %v", err)
		}
		resp.Body.Close()
	}

	res := <-handler.result
	if res.err == nil {
		t.Error("expected the first (failed) callback to win")
	}

	select {
	case extra := <-handler.result:
		t.Errorf("unexpected second result: %+v", extra)
	default:
	}
}

// TestFlow_URL tests the shape of the authorization URL.
func TestFlow_URL(t *testing.T) {
	flow := NewFlow("client-id", "client-secret", 9911)

	u, err := url.Parse(flow.URL())
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}

	q := u.Query()
	if got := q.Get("client_id"); got != "client-id" {
		t.Errorf("expected client_id client-id, got %q", got)
	}
	if got := q.Get("response_type"); got != "code" {
		t.Errorf("expected response_type code, got %q", got)
	}
	if got := q.Get("redirect_uri"); got != "http://127.0.0.1:9911/callback" {
		t.Errorf("expected loopback redirect_uri, got %q", got)
	}
	if q.Get("state") == "" {
		t.Error("expected a non-empty state parameter")
	}
	if !strings.Contains(q.Get("scope"), "user-read-playback-state") {
		t.Errorf("expected playback scope, got %q", q.Get("scope"))
	}
}

// TestTokenFromConfig tests rebuilding the stored token.
func TestTokenFromConfig(t *testing.T) {
	empty := &config.Config{}
	if tok := TokenFromConfig(empty); tok != nil {
		t.Errorf("expected nil token for empty config, got %+v", tok)
	}

	cfg := &config.Config{}
	cfg.Spotify.AccessToken = "stored-access"
	cfg.Spotify.RefreshToken = "stored-refresh"
	cfg.Spotify.TokenExpiry = "2026-08-23T10:00:00Z"

	tok := TokenFromConfig(cfg)
	if tok == nil {
		t.Fatal("expected a token")
	}
	if tok.AccessToken != "stored-access" {
		t.Errorf("expected access token stored-access, got %q", tok.AccessToken)
	}
	if tok.RefreshToken != "stored-refresh" {
		t.Errorf("expected refresh token stored-refresh, got %q", tok.RefreshToken)
	}
	want := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	if !tok.Expiry.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, tok.Expiry)
	}
}

// TestSaveToken_RoundTrip tests that a saved token survives a config reload
// and that a refresh without a rotated refresh token keeps the stored one.
func TestSaveToken_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg.Spotify.RefreshToken = "old-refresh"

	tok := &oauth2.Token{
		AccessToken: "new-access",
		Expiry:      time.Date(2026, 8, 23, 12, 30, 0, 0, time.UTC),
	}
	if err := SaveToken(cfg, tok); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}

	if cfg.Spotify.RefreshToken != "old-refresh" {
		t.Errorf("refresh token was clobbered: %q", cfg.Spotify.RefreshToken)
	}

	reloaded, err := config.Load()
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if reloaded.Spotify.AccessToken != "new-access" {
		t.Errorf("expected persisted access token new-access, got %q", reloaded.Spotify.AccessToken)
	}
	if reloaded.Spotify.RefreshToken != "old-refresh" {
		t.Errorf("expected persisted refresh token old-refresh, got %q", reloaded.Spotify.RefreshToken)
	}
	if reloaded.Spotify.TokenExpiry != "2026-08-23T12:30:00Z" {
		t.Errorf("expected persisted expiry 2026-08-23T12:30:00Z, got %q", reloaded.Spotify.TokenExpiry)
	}
}
