package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/server"
)

var (
	serveAddr  string
	serveRadio bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the recommendation endpoint over HTTP.

Routes:
  GET  /hc                     Health check
  POST /api/generate-tracks    {"prompt": "..."} -> {"songs": [...]}

With --radio, a station is started as well and can be driven remotely:
  GET  /api/radio/state        Current session snapshot
  GET  /api/radio/ws           Snapshot stream (websocket)
  POST /api/radio/prompt       {"prompt": "..."}
  POST /api/radio/skip
  POST /api/radio/previous
  POST /api/radio/toggle
  POST /api/radio/seek         {"position_ms": n} or {"delta_ms": n}`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveRadio, "radio", false, "run a station and expose the control API")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	srvCfg := server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          verbose,
	}
	if serveAddr != "" {
		srvCfg.Addr = serveAddr
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var r *radio.Radio
	if serveRadio {
		st, err := newStation()
		if err != nil {
			return err
		}
		r = st.radio
		g.Go(func() error { return st.run(ctx) })
	}

	srv := server.New(srvCfg, newRecommender(), r, logger)
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
