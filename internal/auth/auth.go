package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"

	"github.com/jfmyers9/stylus/internal/config"
)

// scopes covers everything the CLI touches: playback state and control,
// library and follow management, playlists, listening history and top items.
var scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"user-top-read",
	"user-library-read",
	"user-library-modify",
	"user-follow-read",
	"user-follow-modify",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
	"ugc-image-upload",
}

// newOAuthConfig builds the oauth2 config for the Spotify accounts service
func newOAuthConfig(clientID, clientSecret string, port int) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     spotifyauth.Endpoint,
		RedirectURL:  fmt.Sprintf("http://127.0.0.1:%d/callback", port),
	}
}

// Flow runs the OAuth2 authorization code flow against a local callback server
type Flow struct {
	config *oauth2.Config
	state  string
	port   int
}

// NewFlow creates a flow for the given application credentials.
// The state parameter is randomly generated for CSRF protection.
func NewFlow(clientID, clientSecret string, port int) *Flow {
	return &Flow{
		config: newOAuthConfig(clientID, clientSecret, port),
		state:  uuid.NewString(),
		port:   port,
	}
}

// URL returns the authorization URL the user must visit in a browser
func (f *Flow) URL() string {
	return f.config.AuthCodeURL(f.state)
}

// Wait serves the callback endpoint until the browser redirect arrives, then
// exchanges the authorization code for a token. It returns when the exchange
// completes or the context is cancelled.
func (f *Flow) Wait(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on callback port: %w", err)
	}

	handler := newCallbackHandler(f.config, f.state)

	mux := http.NewServeMux()
	mux.Handle("/callback", handler)

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			handler.send(callbackResult{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-handler.result:
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type callbackResult struct {
	token *oauth2.Token
	err   error
}

// callbackHandler handles the OAuth2 redirect: it validates the state
// parameter, exchanges the authorization code, and reports the outcome
// through the result channel exactly once.
type callbackHandler struct {
	config *oauth2.Config
	state  string
	result chan callbackResult
	once   sync.Once
}

func newCallbackHandler(config *oauth2.Config, state string) *callbackHandler {
	return &callbackHandler{
		config: config,
		state:  state,
		result: make(chan callbackResult, 1),
	}
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s := r.URL.Query().Get("state"); s != h.state {
		h.send(callbackResult{err: errors.New("state mismatch in authorization callback")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		h.send(callbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(callbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Authorization successful. You can close this window and return to the terminal.")
	h.send(callbackResult{token: token})
}

// send delivers the result exactly once; later callback hits are ignored
func (h *callbackHandler) send(res callbackResult) {
	h.once.Do(func() {
		h.result <- res
	})
}

// TokenFromConfig rebuilds the stored OAuth token, or nil when none is saved
func TokenFromConfig(cfg *config.Config) *oauth2.Token {
	if cfg.Spotify.AccessToken == "" && cfg.Spotify.RefreshToken == "" {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  cfg.Spotify.AccessToken,
		RefreshToken: cfg.Spotify.RefreshToken,
		TokenType:    "Bearer",
	}
	if cfg.Spotify.TokenExpiry != "" {
		if expiry, err := time.Parse(time.RFC3339, cfg.Spotify.TokenExpiry); err == nil {
			tok.Expiry = expiry
		}
	}
	return tok
}

// SaveToken writes the token back to the config file. A refresh response
// without a rotated refresh token keeps the stored one.
func SaveToken(cfg *config.Config, tok *oauth2.Token) error {
	cfg.Spotify.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cfg.Spotify.RefreshToken = tok.RefreshToken
	}
	cfg.Spotify.TokenExpiry = tok.Expiry.UTC().Format(time.RFC3339)
	return cfg.Save()
}

// TokenSource returns a source that refreshes the stored token as needed and
// persists any rotation back to the config file.
func TokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	tok := TokenFromConfig(cfg)
	if tok == nil {
		return nil, errors.New("no stored token")
	}

	oc := newOAuthConfig(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectPort)
	return &persistingSource{
		cfg:   cfg,
		inner: oc.TokenSource(ctx, tok),
		last:  tok.AccessToken,
	}, nil
}

// persistingSource wraps an oauth2.TokenSource and writes refreshed tokens
// back to the config file so the next invocation starts with a live token
type persistingSource struct {
	cfg   *config.Config
	inner oauth2.TokenSource

	mu   sync.Mutex
	last string // last persisted access token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.cfg, tok); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
	}
	return tok, nil
}
