package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/internal/history"
	"github.com/jfmyers9/stylus/internal/watcher"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local listening history",
	Long: `Inspect the listening history recorded by the stylus daemon.

The history lives in a local SQLite database, fed by the daemon's
playback watcher and reconciled against the Spotify recently-played
feed. Use the subcommands to list plays, pull the feed on demand, or
summarize listening habits.`,
}

// historyListCmd represents the history list subcommand
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded plays, newest first",
	RunE:  runHistoryList,
}

// historySyncCmd represents the history sync subcommand
var historySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the recently-played feed into the history",
	Long: `Fetch the account's recently-played feed and record any plays the
history does not have yet. The daemon does this periodically on its
own; sync is for catching up manually after the daemon has been off.`,
	RunE: runHistorySync,
}

// historyStatsCmd represents the history stats subcommand
var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize listening habits",
	RunE:  runHistoryStats,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySyncCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyCmd.PersistentFlags().String("db", "", "Path to the history database (overrides config)")
	historyListCmd.Flags().IntP("limit", "n", 20, "Maximum number of plays to list")
	historyStatsCmd.Flags().Int("days", 0, "Only consider plays from the last N days (0 = all time)")
	historyStatsCmd.Flags().Int("top", 5, "Number of top tracks and artists to show")
}

// historyStore opens the history database, honoring the --db override.
func historyStore(cmd *cobra.Command) (*history.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.HistoryDB
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, cfg, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, _, err := historyStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	plays, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list plays: %w", err)
	}

	if len(plays) == 0 {
		fmt.Println("No plays recorded yet. Start the daemon with 'stylus daemon' or run 'stylus history sync'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PLAYED\tTRACK\tARTIST\tALBUM\tSOURCE")
	for _, p := range plays {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.PlayedAt.Local().Format("Jan 02 15:04"),
			p.TrackName, p.Artist, p.Album, p.Source)
	}

	return nil
}

func runHistorySync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, cfg, err := historyStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := clientFromConfig(cfg)
	if err != nil {
		return err
	}

	inserted, err := watcher.SyncRecentlyPlayed(ctx, client, store, zerolog.Nop())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count plays: %w", err)
	}

	fmt.Printf("Recorded %d new plays (%d total)\n", inserted, count)

	if last, err := store.LastPlayedAt(ctx); err == nil && !last.IsZero() {
		fmt.Printf("Most recent play: %s\n", last.Local().Format("Jan 02 15:04"))
	}

	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, _, err := historyStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	days, _ := cmd.Flags().GetInt("days")
	top, _ := cmd.Flags().GetInt("top")

	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	stats, err := store.Stats(ctx, since, top)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	if days > 0 {
		fmt.Printf("Listening stats for the last %d days:\n\n", days)
	} else {
		fmt.Printf("Listening stats, all time:\n\n")
	}

	fmt.Printf("  Plays:          %d\n", stats.TotalPlays)
	fmt.Printf("  Unique tracks:  %d\n", stats.UniqueTracks)
	fmt.Printf("  Unique artists: %d\n", stats.UniqueArtists)
	fmt.Printf("  Time listened:  %s\n", fmtListenTime(stats.TotalTime))

	if len(stats.TopTracks) > 0 {
		fmt.Printf("\nTop tracks:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for i, t := range stats.TopTracks {
			fmt.Fprintf(w, "  %d.\t%s\t%s\t%d plays\n", i+1, t.TrackName, t.Artist, t.Plays)
		}
		w.Flush()
	}

	if len(stats.TopArtists) > 0 {
		fmt.Printf("\nTop artists:\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for i, a := range stats.TopArtists {
			fmt.Fprintf(w, "  %d.\t%s\t%d plays\n", i+1, a.Artist, a.Plays)
		}
		w.Flush()
	}

	return nil
}

// fmtListenTime renders a total listening duration in hours and minutes.
func fmtListenTime(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
