//go:build integration

package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// isolatedEnv returns an environment with HOME pointed at an empty temp
// directory, so the host's real stylus config cannot leak into the test.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	return []string{
		"HOME=" + t.TempDir(),
		"PATH=" + os.Getenv("PATH"),
	}
}

// TestDaemonMissingCredentials verifies the daemon refuses to start without
// Spotify credentials and says how to fix it
func TestDaemonMissingCredentials(t *testing.T) {
	// Build the binary first
	buildCmd := exec.Command("go", "build", "-o", "stylus_test", ".")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	defer os.Remove("stylus_test")

	cmd := exec.Command("./stylus_test", "daemon", "--data-dir", t.TempDir())
	cmd.Env = isolatedEnv(t)

	output, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatal("Daemon started without credentials, expected it to refuse")
	}
	if !strings.Contains(string(output), "stylus auth") {
		t.Errorf("Error message should point at 'stylus auth', got: %s", output)
	}
}

// TestDaemonExitsWhenTokenRefreshFails verifies the daemon fails fast, with a
// non-zero exit, when the stored refresh token cannot be exchanged
func TestDaemonExitsWhenTokenRefreshFails(t *testing.T) {
	// Build the binary first
	buildCmd := exec.Command("go", "build", "-o", "stylus_test", ".")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	defer os.Remove("stylus_test")

	cmd := exec.Command("./stylus_test", "daemon",
		"--data-dir", t.TempDir(),
		"--log-level", "debug")
	cmd.Env = append(isolatedEnv(t),
		"STYLUS_SPOTIFY_CLIENT_ID=test_client",
		"STYLUS_SPOTIFY_CLIENT_SECRET=test_secret",
		"STYLUS_SPOTIFY_REFRESH_TOKEN=test_refresh",
	)

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}

	done := make(chan error)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Daemon exited cleanly with a bogus refresh token, expected an error")
		}
	case <-time.After(15 * time.Second):
		cmd.Process.Kill()
		t.Error("Daemon did not exit within 15 seconds on a failed token refresh")
	}
}

// TestNowCommand tests the "now" command
func TestNowCommand(t *testing.T) {
	// Build the binary first
	buildCmd := exec.Command("go", "build", "-o", "stylus_test", ".")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	defer os.Remove("stylus_test")

	// Run the "now" command
	cmd := exec.Command("./stylus_test", "now")
	output, err := cmd.CombinedOutput()

	// The command fails without stored credentials, which is okay
	if err != nil {
		t.Logf("Now command failed (expected without auth): %v", err)
		t.Logf("Output: %s", output)
		return
	}

	// With credentials and active playback we should get some output
	if len(output) == 0 {
		t.Logf("No output from now command (playback might be paused/stopped)")
	} else {
		t.Logf("Now command output: %s", output)
	}
}

// TestAuthFlow tests the authentication flow (manual test)
func TestAuthFlow(t *testing.T) {
	t.Skip("Requires manual interaction - run manually with valid API credentials")

	// This test requires:
	// 1. A Spotify application with client id and secret
	// 2. Manual browser interaction to authorize
	// It's meant to be run manually, not in CI

	// Example manual test:
	// 1. go test -tags=integration -run TestAuthFlow
	// 2. Enter client id and secret when prompted
	// 3. Authorize in browser
	// 4. Verify tokens are saved to config
}

// TestLaunchdInstallation tests installing and uninstalling the daemon
func TestLaunchdInstallation(t *testing.T) {
	t.Skip("Modifies the user's launchd agents - run manually")

	// This test modifies the system and should be run manually
	// It's here as documentation for manual testing

	// Manual test steps:
	// 1. Build the binary: go build -o stylus .
	// 2. Run: ./stylus install
	// 3. Verify plist exists: ls ~/Library/LaunchAgents/com.stylus.daemon.plist
	// 4. Verify daemon is running: launchctl list | grep stylus
	// 5. Run: ./stylus uninstall
	// 6. Verify plist removed: ls ~/Library/LaunchAgents/com.stylus.daemon.plist
}

// TestDaemonResourceUsage tests CPU and memory usage of the daemon
func TestDaemonResourceUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode")
	}
	if os.Getenv("STYLUS_SPOTIFY_REFRESH_TOKEN") == "" {
		t.Skip("Requires real credentials in STYLUS_SPOTIFY_* env vars")
	}

	// Build the binary first
	buildCmd := exec.Command("go", "build", "-o", "stylus_test", ".")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}
	defer os.Remove("stylus_test")

	// Start the daemon with the caller's credentials
	cmd := exec.Command("./stylus_test", "daemon",
		"--data-dir", t.TempDir(),
		"--log-level", "error")
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}

	// Let it run for 30 seconds and monitor resource usage
	// Note: This is a basic test - for real load testing, use tools like
	// pprof, top, or process monitoring
	time.Sleep(30 * time.Second)

	cmd.Process.Signal(os.Interrupt)
	cmd.Wait()

	// In a real test, you would:
	// 1. Monitor CPU usage (should be < 1% when idle)
	// 2. Monitor memory usage (should be < 50MB)
	// 3. Check for memory leaks (RSS should be stable)
	// 4. Use tools like: ps, top, or runtime/pprof

	t.Log("Daemon ran for 30 seconds - check manually for resource usage")
	t.Log("Expected: CPU < 1%, Memory < 50MB")
}
