package watcher

import (
	"time"
)

// Play-recording rules constants
const (
	// MinimumTrackDuration is the minimum track length required for a play
	// to count (30 seconds)
	MinimumTrackDuration = 30 * time.Second

	// RecordPercentage is the percentage of track that must be played (50%)
	RecordPercentage = 0.5

	// MaxRecordThreshold is the maximum time that needs to be played (4 minutes)
	MaxRecordThreshold = 4 * time.Minute
)

// ShouldRecord determines if a play should be written to history:
// 1. Track must be longer than 30 seconds
// 2. Track must have been played for at least 50% of its duration OR 4 minutes, whichever comes first
//
// Parameters:
//   - trackDuration: Total duration of the track
//   - playedDuration: How long the track has been played
//
// Returns:
//   - true if the play should be recorded
//   - false if the play should not be recorded
func ShouldRecord(trackDuration, playedDuration time.Duration) bool {
	// Rule 1: Track must be longer than 30 seconds
	if trackDuration < MinimumTrackDuration {
		return false
	}

	// Rule 2: Calculate the record threshold
	// The threshold is the minimum of:
	//   - 50% of track duration
	//   - 4 minutes
	threshold := time.Duration(float64(trackDuration) * RecordPercentage)
	if threshold > MaxRecordThreshold {
		threshold = MaxRecordThreshold
	}

	// Check if we've played enough to record
	return playedDuration >= threshold
}

// RecordThreshold calculates the exact time threshold at which a play counts
// This is useful for watcher logic to know when to trigger a record
func RecordThreshold(trackDuration time.Duration) time.Duration {
	// Track must be at least 30 seconds
	if trackDuration < MinimumTrackDuration {
		// Return a value that can never be met
		return time.Duration(-1)
	}

	// Calculate 50% of duration
	threshold := time.Duration(float64(trackDuration) * RecordPercentage)

	// Cap at 4 minutes
	if threshold > MaxRecordThreshold {
		threshold = MaxRecordThreshold
	}

	return threshold
}

// IsEligible checks if a track is eligible for recording based on its duration alone
// This can be used to quickly filter out tracks that are too short before tracking them
func IsEligible(trackDuration time.Duration) bool {
	return trackDuration >= MinimumTrackDuration
}
