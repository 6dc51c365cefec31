package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// queueCmd represents the queue command
var queueCmd = &cobra.Command{
	Use:   "queue <track>",
	Short: "Add a track to the playback queue",
	Long: `Add a track to the end of the playback queue on the active device.

The track is given as a Spotify id or URI:

  stylus queue 4uLU6hMCjMI75M1A2tKUQC
  stylus queue spotify:track:4uLU6hMCjMI75M1A2tKUQC

Track ids come from 'stylus search' output.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	trackID, err := trackIDFromArg(args[0])
	if err != nil {
		return err
	}

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	if err := player.Enqueue(ctx, trackID, ""); err != nil {
		return fmt.Errorf("failed to queue track: %w", err)
	}

	return nil
}

// trackIDFromArg extracts the bare track id from an id or a
// spotify:track: URI. URIs for other kinds are rejected.
func trackIDFromArg(arg string) (string, error) {
	if rest, ok := strings.CutPrefix(arg, "spotify:"); ok {
		kind, id, found := strings.Cut(rest, ":")
		if !found || kind != "track" || id == "" {
			return "", fmt.Errorf("invalid track URI: %s", arg)
		}
		return id, nil
	}
	if arg == "" || strings.ContainsAny(arg, " :/") {
		return "", fmt.Errorf("invalid track id: %s", arg)
	}
	return arg, nil
}
