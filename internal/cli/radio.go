package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/tail"
)

var (
	radioDevice    string
	radioNoEmoji   bool
	radioTimestamp bool
	radioFormat    string
)

var radioCmd = &cobra.Command{
	Use:   "radio <prompt>",
	Short: "Play a station for a prompt and follow it",
	Long: `Start a station for the prompt and print what happens as it plays.

The station waits for the configured Spotify device, plays the first
recommended song, and keeps the backlog topped up until interrupted.

Events printed:
  - Device ready
  - Prompt submitted
  - Track changes
  - Pause/Resume
  - Seeks
  - Backlog replenished
  - Notices (failed commands, missing tracks)`,
	Example: `  airadio radio "rainy sunday morning"
  airadio radio --device Kitchen --timestamp "late night jazz"
  airadio radio -f '{{.Artist}} - {{.Title}}' "90s trip hop"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRadio,
}

func init() {
	radioCmd.Flags().StringVarP(&radioDevice, "device", "d", "", "device to play on (overrides spotify.device)")
	radioCmd.Flags().BoolVar(&radioNoEmoji, "no-emoji", false, "disable emoji output")
	radioCmd.Flags().BoolVarP(&radioTimestamp, "timestamp", "t", false, "show timestamps")
	radioCmd.Flags().StringVarP(&radioFormat, "format", "f", "", "custom format template")

	rootCmd.AddCommand(radioCmd)
}

func runRadio(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if radioDevice != "" {
		cfg.Spotify.Device = radioDevice
	}

	st, err := newStation()
	if err != nil {
		return err
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!radioNoEmoji),
		tail.WithTimestamp(radioTimestamp),
		tail.WithTemplate(radioFormat),
	)

	// Handle Ctrl+C gracefully
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	snapshots, unsubscribe := st.radio.Subscribe()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		errCh <- st.run(ctx)
	}()

	// A prompt submitted before the device is ready is held and played
	// once it appears.
	go func() {
		if err := st.radio.SubmitPrompt(ctx, prompt); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("prompt failed")
		}
	}()

	var prev *radio.Snapshot
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return <-errCh
			}
			printEvents(tail.Diff(prev, &snap), formatter)
			prev = &snap

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

func printEvents(events []tail.Event, formatter *tail.Formatter) {
	for _, e := range events {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"event":     e.Type.String(),
				"timestamp": e.Timestamp,
				"snapshot":  e.Current,
			})
			continue
		}
		fmt.Println(formatter.Format(e))
	}
}
