package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <prompt>",
	Short: "Print song recommendations for a prompt",
	Long: `Ask the recommender for songs matching the prompt and print them.

Uses recommend.url when set, otherwise calls OpenAI with
recommend.openai_api_key (or OPENAI_API_KEY).`,
	Example: `  airadio recommend "songs for a long drive"
  airadio recommend --json "sad indie"
  airadio recommend --resolve "90s trip hop"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <title artist>",
	Short: "Look up a song in the Spotify catalog",
	Long:  `Resolve a "<title> <artist>" descriptor to a Spotify track, as the radio does before playing.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

var recommendResolve bool

func init() {
	recommendCmd.Flags().BoolVar(&recommendResolve, "resolve", false, "Look up each song in the Spotify catalog")
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Recommend.TimeoutDuration())
	defer cancel()

	songs, err := newRecommender().Recommend(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if recommendResolve {
		return resolveSongs(cmd.Context(), songs)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{"songs": songs})
	}

	if len(songs) == 0 {
		fmt.Println("No recommendations")
		return nil
	}
	table := NewTable("#", "TITLE", "ARTIST")
	for i, s := range songs {
		table.Row(fmt.Sprintf("%d", i+1), TruncateString(s.Title, 40), TruncateString(s.Artist, 30))
	}
	table.Flush()
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	p, err := newPlayer()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Radio.CommandDeadline())
	defer cancel()

	d := core.Descriptor(strings.Join(args, " "))
	track, err := p.SearchTrack(ctx, d.String())
	if err != nil {
		return err
	}
	if track == nil {
		return fmt.Errorf("%w: %s", apperr.ErrTrackNotFound, d)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(track)
	}

	fmt.Printf("%s - %s\n", track.Artist, track.Title)
	if track.Album != "" {
		Normal("Album", track.Album)
	}
	Normal("Length", FormatDuration(int(track.Duration.Seconds())))
	Normal("URI", track.URI)
	return nil
}

type resolvedSong struct {
	Descriptor core.Descriptor `json:"descriptor"`
	Track      *core.Track     `json:"track"`
}

// resolveSongs looks up every recommended song, reporting misses without
// stopping.
func resolveSongs(ctx context.Context, songs []core.Song) error {
	p, err := newPlayer()
	if err != nil {
		return err
	}

	var result apperr.PartialResult[[]resolvedSong]
	for _, d := range core.Descriptors(songs) {
		lookupCtx, cancel := context.WithTimeout(ctx, cfg.Radio.CommandDeadline())
		track, err := p.SearchTrack(lookupCtx, d.String())
		cancel()
		if err == nil && track == nil {
			err = apperr.ErrTrackNotFound
		}
		if err != nil {
			result.AddError(fmt.Errorf("%s: %w", d, err))
			continue
		}
		result.Data = append(result.Data, resolvedSong{Descriptor: d, Track: track})
	}

	if JSONOutput() {
		out := map[string]interface{}{"tracks": result.Data}
		if result.HasErrors() {
			errs := make([]string, len(result.Errors))
			for i, e := range result.Errors {
				errs[i] = e.Error()
			}
			out["errors"] = errs
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if len(result.Data) > 0 {
		table := NewTable("TITLE", "ARTIST", "LENGTH", "URI")
		for _, r := range result.Data {
			table.Row(
				TruncateString(r.Track.Title, 40),
				TruncateString(r.Track.Artist, 30),
				FormatDuration(int(r.Track.Duration.Seconds())),
				r.Track.URI,
			)
		}
		table.Flush()
	}
	if result.HasErrors() {
		fmt.Fprintf(os.Stderr, "\n%s\n", strings.TrimRight(result.ErrorSummary(), "\n"))
	}
	return nil
}
