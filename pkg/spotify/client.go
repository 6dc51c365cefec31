package spotify

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds client configuration.
type Config struct {
	Token      string        // Required: OAuth bearer access token
	HTTPClient *http.Client  // Optional: HTTP client (defaults to one with Timeout applied)
	BaseURL    string        // Optional: Base URL for the API (defaults to Spotify, used for testing)
	Timeout    time.Duration // Optional: per-request timeout when HTTPClient is not supplied (defaults to 30s)
	Logger     Logger        // Optional: Logger interface for debug logging
	Limiter    *rate.Limiter // Optional: client-side request pacing; nil disables pacing
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Spotify Web API operations.
//
// A Client holds exactly one bearer token at a time. All methods issue
// best-effort single-attempt requests: there is no retry machinery, and any
// retry policy belongs to the caller.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     Logger
	limiter    *rate.Limiter

	player  *Player
	library *LibraryService
}

const (
	// DefaultBaseURL is the default Spotify Web API host.
	DefaultBaseURL = "https://api.spotify.com"

	// DefaultTimeout is the per-request timeout applied when no HTTP client
	// is supplied.
	DefaultTimeout = 30 * time.Second
)

// NewClient creates a new Spotify Web API client.
//
// Returns an error if required configuration (Token) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		token:      cfg.Token,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
		limiter:    cfg.Limiter,
	}

	c.player = &Player{client: c}
	c.library = &LibraryService{client: c}

	return c, nil
}

// Player returns the playback control surface for the current user.
func (c *Client) Player() *Player {
	return c.player
}

// Library returns the current user's library service (saved items, follows,
// top and recently played).
func (c *Client) Library() *LibraryService {
	return c.library
}

// SetToken replaces the bearer token used for subsequent requests, for
// example after an OAuth refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
