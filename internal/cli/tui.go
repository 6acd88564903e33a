package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui [prompt]",
	Aliases: []string{"ui"},
	Short:   "Launch the interactive radio",
	Long: `Launch the interactive terminal radio.

The dashboard shows:
  • Prompt - the current station
  • Now Playing - current track, progress, device
  • Up Next - the recommended backlog
  • History - tracks played this session

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            New prompt
  Space        Play/Pause
  n            Next song
  p            First song again
  ←/→          Seek 10s
  Tab          Switch panel

Logs are written to log.file, or to airadio.log in the config directory.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	st, err := newStation()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- st.run(ctx)
	}()

	uiErr := tui.Run(ctx, st.radio, tui.Options{
		Prompt: strings.Join(args, " "),
		Theme:  cfg.TUI.Theme,
	})
	cancel()
	if err := <-errCh; err != nil {
		logger.Warn().Err(err).Msg("radio stopped with error")
	}
	return uiErr
}
