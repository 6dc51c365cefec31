package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/pkg/spotify"
	"github.com/spf13/cobra"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Resume Spotify playback",
	Long:  `Resume playback on the active Spotify device. If paused, starts playing the current track.`,
	RunE:  runPlay,
}

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause Spotify playback",
	Long:  `Pause playback on the active Spotify device.`,
	RunE:  runPause,
}

// playpauseCmd represents the playpause command
var playpauseCmd = &cobra.Command{
	Use:   "playpause",
	Short: "Toggle play/pause",
	Long:  `Toggle between play and pause on the active Spotify device. If playing, pauses. If paused, resumes.`,
	RunE:  runPlayPause,
}

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	Long:  `Skip to the next track in the current playlist or queue.`,
	RunE:  runNext,
}

// prevCmd represents the prev command
var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to the previous track",
	Long:  `Return to the previous track in the current playlist or queue.`,
	RunE:  runPrev,
}

// shuffleCmd represents the shuffle command
var shuffleCmd = &cobra.Command{
	Use:   "shuffle [on|off]",
	Short: "Toggle or set shuffle mode",
	Long: `Control shuffle mode on the active Spotify device.

Without arguments, toggles shuffle on/off and prints the new state.
With 'on' or 'off' argument, explicitly sets shuffle state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShuffle,
}

// volumeCmd represents the volume command
var volumeCmd = &cobra.Command{
	Use:   "volume [0-100]",
	Short: "Show or set playback volume",
	Long: `Control the playback volume on the active Spotify device.

Volume level must be between 0 (muted) and 100 (maximum).
Without arguments, displays the current volume.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

// seekCmd represents the seek command
var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek within the current track",
	Long: `Seek to a position in the currently playing track.

The position is either absolute (seconds or mm:ss) or relative with a
leading + or - (seconds):

  stylus seek 90       seek to 1:30
  stylus seek 1:30     seek to 1:30
  stylus seek +30      skip ahead 30 seconds
  stylus seek -10      rewind 10 seconds`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

// repeatCmd represents the repeat command
var repeatCmd = &cobra.Command{
	Use:   "repeat [off|context|track]",
	Short: "Show or set repeat mode",
	Long: `Control the repeat mode on the active Spotify device.

Modes:
  off      no repeat
  context  repeat the current album or playlist
  track    repeat the current track

Without arguments, displays the current repeat mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepeat,
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(playpauseCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(repeatCmd)
}

// playerFromConfig loads configuration and returns an authenticated player.
func playerFromConfig() (*spotify.Player, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := clientFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return client.Player(), nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}
	if err := player.Resume(ctx, ""); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}
	if err := player.Pause(ctx, ""); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return nil
}

func runPlayPause(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	playing, err := player.IsPlaying(ctx)
	if err != nil {
		return fmt.Errorf("failed to get playback state: %w", err)
	}

	if playing {
		err = player.Pause(ctx, "")
	} else {
		err = player.Resume(ctx, "")
	}
	if err != nil {
		return fmt.Errorf("failed to playpause: %w", err)
	}

	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}
	if err := player.SkipNext(ctx, ""); err != nil {
		return fmt.Errorf("failed to skip to next track: %w", err)
	}

	return nil
}

func runPrev(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}
	if err := player.SkipPrevious(ctx, ""); err != nil {
		return fmt.Errorf("failed to go to previous track: %w", err)
	}

	return nil
}

func runShuffle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	// Without an argument, toggle the current state
	if len(args) == 0 {
		current, err := player.Shuffle(ctx)
		if err != nil {
			return fmt.Errorf("failed to get shuffle state: %w", err)
		}
		if err := player.SetShuffle(ctx, !current, ""); err != nil {
			return fmt.Errorf("failed to set shuffle: %w", err)
		}
		if current {
			fmt.Println("Shuffle off")
		} else {
			fmt.Println("Shuffle on")
		}
		return nil
	}

	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("invalid shuffle argument: %s (must be 'on' or 'off')", args[0])
	}

	if err := player.SetShuffle(ctx, enabled, ""); err != nil {
		return fmt.Errorf("failed to set shuffle: %w", err)
	}

	return nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	// Without an argument, display the current volume
	if len(args) == 0 {
		level, err := player.Volume(ctx)
		if err != nil {
			return fmt.Errorf("failed to get volume: %w", err)
		}
		fmt.Println(level)
		return nil
	}

	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid volume level: %s (must be a number 0-100)", args[0])
	}

	if err := player.SetVolume(ctx, level, ""); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return nil
}

func runSeek(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	arg := args[0]
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")

	offset, err := parsePosition(strings.TrimPrefix(arg, "+"))
	if err != nil {
		return err
	}

	position := offset
	if relative {
		current, err := player.Position(ctx)
		if err != nil {
			return fmt.Errorf("failed to get playback position: %w", err)
		}
		position = current + offset
		if position < 0 {
			position = 0
		}
	}

	if err := player.Seek(ctx, position, ""); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// parsePosition parses a track position given as seconds ("90"), as
// minutes and seconds ("1:30"), or as a signed offset ("-10"). The
// leading + of a relative offset must be stripped by the caller.
func parsePosition(s string) (time.Duration, error) {
	if minutes, seconds, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return 0, fmt.Errorf("invalid position: %s (must be seconds or mm:ss)", s)
		}
		sec, err := strconv.Atoi(seconds)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid position: %s (must be seconds or mm:ss)", s)
		}
		return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
	}

	sec, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position: %s (must be seconds or mm:ss)", s)
	}
	return time.Duration(sec) * time.Second, nil
}

func runRepeat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	// Without an argument, display the current mode
	if len(args) == 0 {
		mode, err := player.Repeat(ctx)
		if err != nil {
			return fmt.Errorf("failed to get repeat mode: %w", err)
		}
		fmt.Println(string(mode))
		return nil
	}

	mode := spotify.RepeatMode(args[0])
	if err := player.SetRepeat(ctx, mode, ""); err != nil {
		return fmt.Errorf("failed to set repeat: %w", err)
	}

	return nil
}
