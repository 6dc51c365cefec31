package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps a persistent log of listened tracks using SQLite
type Store struct {
	db *sql.DB
}

// Play is one listened track. The watcher stamps a play at its approximate
// start while the recently-played sync carries the API's timestamp, so the
// store treats two plays of the same track closer together than the track's
// own length as a single listen.
type Play struct {
	ID        int64
	TrackID   string
	TrackName string
	Artist    string
	Album     string
	Duration  time.Duration
	PlayedAt  time.Time
	Source    string // "watcher" or "sync"
}

// Stats summarizes a slice of listening history
type Stats struct {
	TotalPlays    int
	UniqueTracks  int
	UniqueArtists int
	TotalTime     time.Duration
	TopTracks     []TrackStat
	TopArtists    []ArtistStat
}

// TrackStat is a play count for one track
type TrackStat struct {
	TrackID   string
	TrackName string
	Artist    string
	Plays     int
}

// ArtistStat is a play count for one artist
type ArtistStat struct {
	Artist string
	Plays  int
}

// NewStore creates a new listening history store backed by SQLite
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool size to 1 for in-memory databases to ensure consistency
	// For file-based databases, this still works well for our use case
	db.SetMaxOpenConns(1)

	// Configure SQLite for optimal performance and safety
	pragmas := []string{
		"PRAGMA foreign_keys = ON",    // Enforce foreign key constraints
		"PRAGMA busy_timeout = 10000", // Wait up to 10 seconds on lock
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrent access
		"PRAGMA temp_store = MEMORY",  // Use memory for temp tables
		"PRAGMA cache_size = -64000",  // 64MB cache
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	// Create the schema
	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id TEXT NOT NULL,
			track_name TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT,
			duration INTEGER NOT NULL,
			played_at INTEGER NOT NULL,
			source TEXT NOT NULL DEFAULT 'watcher',
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			UNIQUE(track_id, played_at)
		);

		CREATE INDEX IF NOT EXISTS idx_played_at ON plays(played_at);
		CREATE INDEX IF NOT EXISTS idx_track ON plays(track_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const insertPlay = `
	INSERT OR IGNORE INTO plays (track_id, track_name, artist, album, duration, played_at, source)
	SELECT ?, ?, ?, ?, ?, ?, ?
	WHERE NOT EXISTS (
		SELECT 1 FROM plays WHERE track_id = ? AND ABS(played_at - ?) < ?
	)
`

// dedupeWindow is the near-duplicate window in seconds for a play: a second
// row for the same track inside this window is the same listen seen from a
// different source. A full track cannot play twice within its own length.
func dedupeWindow(play Play) int64 {
	secs := int64(play.Duration.Seconds())
	if secs < 60 {
		return 60
	}
	return secs
}

// RecordPlay inserts one play. Returns false when the play is already
// stored, exactly or as a near duplicate of the same track.
func (s *Store) RecordPlay(ctx context.Context, play Play) (bool, error) {
	result, err := s.db.ExecContext(ctx, insertPlay,
		play.TrackID,
		play.TrackName,
		play.Artist,
		play.Album,
		int64(play.Duration.Seconds()),
		play.PlayedAt.Unix(),
		play.Source,
		play.TrackID,
		play.PlayedAt.Unix(),
		dedupeWindow(play),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert play: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// RecordPlays inserts a batch of plays in one transaction and returns how
// many were new. Duplicates are skipped silently.
func (s *Store) RecordPlays(ctx context.Context, plays []Play) (int, error) {
	if len(plays) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertPlay)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, play := range plays {
		result, err := stmt.ExecContext(ctx,
			play.TrackID,
			play.TrackName,
			play.Artist,
			play.Album,
			int64(play.Duration.Seconds()),
			play.PlayedAt.Unix(),
			play.Source,
			play.TrackID,
			play.PlayedAt.Unix(),
			dedupeWindow(play),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert play %q: %w", play.TrackID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// List retrieves plays ordered newest first.
// Optionally limits the number of results.
func (s *Store) List(ctx context.Context, limit int) ([]Play, error) {
	query := `
		SELECT id, track_id, track_name, artist, COALESCE(album, ''), duration, played_at, source
		FROM plays
		ORDER BY played_at DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var durationSecs int64
		var playedAtUnix int64

		err := rows.Scan(
			&p.ID,
			&p.TrackID,
			&p.TrackName,
			&p.Artist,
			&p.Album,
			&durationSecs,
			&playedAtUnix,
			&p.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		p.Duration = time.Duration(durationSecs) * time.Second
		p.PlayedAt = time.Unix(playedAtUnix, 0)

		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}

// LastPlayedAt returns the newest played_at in the store, or the zero time
// when the store is empty.
func (s *Store) LastPlayedAt(ctx context.Context) (time.Time, error) {
	var ts int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(played_at), 0) FROM plays").Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last played: %w", err)
	}

	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts, 0), nil
}

// Count returns the number of plays in the store
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}

	return count, nil
}

// Stats aggregates the plays since the given time. The zero time covers the
// whole store. top bounds the top-track and top-artist lists (default 5).
func (s *Store) Stats(ctx context.Context, since time.Time, top int) (*Stats, error) {
	if top <= 0 {
		top = 5
	}
	cutoff := int64(0)
	if !since.IsZero() {
		cutoff = since.Unix()
	}

	stats := &Stats{}

	var totalSecs int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT track_id), COUNT(DISTINCT artist), COALESCE(SUM(duration), 0)
		FROM plays
		WHERE played_at >= ?
	`, cutoff).Scan(&stats.TotalPlays, &stats.UniqueTracks, &stats.UniqueArtists, &totalSecs)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	stats.TotalTime = time.Duration(totalSecs) * time.Second

	trackRows, err := s.db.QueryContext(ctx, `
		SELECT track_id, track_name, artist, COUNT(*) AS plays
		FROM plays
		WHERE played_at >= ?
		GROUP BY track_id
		ORDER BY plays DESC, MAX(played_at) DESC
		LIMIT ?
	`, cutoff, top)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var t TrackStat
		if err := trackRows.Scan(&t.TrackID, &t.TrackName, &t.Artist, &t.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan top track: %w", err)
		}
		stats.TopTracks = append(stats.TopTracks, t)
	}
	if err := trackRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top tracks: %w", err)
	}

	artistRows, err := s.db.QueryContext(ctx, `
		SELECT artist, COUNT(*) AS plays
		FROM plays
		WHERE played_at >= ?
		GROUP BY artist
		ORDER BY plays DESC, MAX(played_at) DESC
		LIMIT ?
	`, cutoff, top)
	if err != nil {
		return nil, fmt.Errorf("failed to query top artists: %w", err)
	}
	defer artistRows.Close()

	for artistRows.Next() {
		var a ArtistStat
		if err := artistRows.Scan(&a.Artist, &a.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan top artist: %w", err)
		}
		stats.TopArtists = append(stats.TopArtists, a)
	}
	if err := artistRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top artists: %w", err)
	}

	return stats, nil
}

// Prune removes plays older than the given age to bound database growth
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM plays WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old plays: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
