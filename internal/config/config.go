package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Output format template for the now command
	// Default: "{{.Artist}} - {{.Name}}"
	OutputFormat string

	// Fixed display width for the now command (0 = disabled)
	OutputWidth int

	// Marquee scrolling for output longer than OutputWidth
	MarqueeEnabled   bool
	MarqueeSpeed     int // characters per second
	MarqueeSeparator string

	// Poll interval for the watcher daemon (in seconds)
	PollInterval int

	// Path to the listening history database
	HistoryDB string

	// How often the daemon reconciles against the recently-played feed
	// (in seconds)
	HistorySyncInterval int

	// How long plays are kept, in days (0 = keep forever)
	HistoryRetentionDays int

	// Discord application id for rich presence (empty disables)
	DiscordAppID string

	// Spotify Web API credentials and tokens
	Spotify SpotifyConfig
}

// SpotifyConfig holds Spotify specific configuration
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectPort int
	AccessToken  string
	RefreshToken string
	TokenExpiry  string // RFC 3339
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	// Load .env before env binding so dev credentials are picked up
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("output_format", "{{.Artist}} - {{.Name}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("marquee.enabled", false)
	v.SetDefault("marquee.speed", 2)
	v.SetDefault("marquee.separator", "   ")
	v.SetDefault("poll_interval", 5)
	v.SetDefault("history.db_path", filepath.Join(DefaultDataDir(), "history.db"))
	v.SetDefault("history.sync_interval", 300)
	v.SetDefault("history.retention_days", 0)
	v.SetDefault("discord.app_id", "")
	v.SetDefault("spotify.redirect_port", 8888)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables (STYLUS_SPOTIFY_CLIENT_ID etc.)
	v.SetEnvPrefix("STYLUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		OutputFormat:         v.GetString("output_format"),
		OutputWidth:          v.GetInt("output_width"),
		MarqueeEnabled:       v.GetBool("marquee.enabled"),
		MarqueeSpeed:         v.GetInt("marquee.speed"),
		MarqueeSeparator:     v.GetString("marquee.separator"),
		PollInterval:         v.GetInt("poll_interval"),
		HistoryDB:            v.GetString("history.db_path"),
		HistorySyncInterval:  v.GetInt("history.sync_interval"),
		HistoryRetentionDays: v.GetInt("history.retention_days"),
		DiscordAppID:         v.GetString("discord.app_id"),
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
			RedirectPort: v.GetInt("spotify.redirect_port"),
			AccessToken:  v.GetString("spotify.access_token"),
			RefreshToken: v.GetString("spotify.refresh_token"),
			TokenExpiry:  v.GetString("spotify.token_expiry"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "stylus")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// DefaultDataDir returns the default directory for state and history files
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "stylus")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("marquee.enabled", c.MarqueeEnabled)
	v.Set("marquee.speed", c.MarqueeSpeed)
	v.Set("marquee.separator", c.MarqueeSeparator)
	v.Set("poll_interval", c.PollInterval)
	v.Set("history.db_path", c.HistoryDB)
	v.Set("history.sync_interval", c.HistorySyncInterval)
	v.Set("history.retention_days", c.HistoryRetentionDays)
	v.Set("discord.app_id", c.DiscordAppID)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("spotify.redirect_port", c.Spotify.RedirectPort)
	v.Set("spotify.access_token", c.Spotify.AccessToken)
	v.Set("spotify.refresh_token", c.Spotify.RefreshToken)
	v.Set("spotify.token_expiry", c.Spotify.TokenExpiry)

	// Write to file
	return v.WriteConfigAs(configFile)
}
