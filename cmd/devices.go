package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available Spotify devices",
	Long: `List the Spotify devices registered to the account.

The active device is marked with *. Use the device id with the
transfer subcommand to move playback.`,
	RunE: runDevices,
}

// transferCmd represents the devices transfer subcommand
var transferCmd = &cobra.Command{
	Use:   "transfer <device-id>",
	Short: "Transfer playback to another device",
	Long: `Transfer playback to the given device.

By default the playback state (playing or paused) is kept. With --play,
playback starts on the new device even if it was paused.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransfer,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(transferCmd)

	transferCmd.Flags().Bool("play", false, "Start playing after the transfer")
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	devices, err := player.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found. Open Spotify on a device to register it.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, " \tNAME\tTYPE\tVOLUME\tID")
	for _, d := range devices {
		active := " "
		if d.Active {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n", active, d.Name, d.Type, d.VolumePercent, d.ID)
	}

	return nil
}

func runTransfer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player, err := playerFromConfig()
	if err != nil {
		return err
	}

	play, _ := cmd.Flags().GetBool("play")

	if err := player.TransferPlayback(ctx, args[0], play); err != nil {
		return fmt.Errorf("failed to transfer playback: %w", err)
	}

	return nil
}
