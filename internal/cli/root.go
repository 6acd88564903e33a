package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/config"
	apperr "github.com/timmfy/ai-radio/internal/errors"
	"github.com/timmfy/ai-radio/internal/logging"
)

var (
	cfgFile  string
	jsonOut  bool
	verbose  bool
	tokenArg string

	cfg      *config.Config
	logger   = zerolog.Nop()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "airadio",
	Short: "AI radio for Spotify",
	Long: `airadio turns a free-text prompt into an endless Spotify station.

Songs are recommended for the prompt, resolved against the Spotify catalog
and played one after another on a Connect device, with more songs fetched
automatically as the backlog runs low.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLog()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.airadiorc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&tokenArg, "token", "", "Spotify access token (overrides the token file)")
}

func initConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidConfig, err)
	}

	return initLogger(cmd)
}

// initLogger builds the logger from config. Interactive commands always log
// to a file so the terminal stays clean.
func initLogger(cmd *cobra.Command) error {
	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if cmd == tuiCmd && logCfg.File == "" {
		logCfg.File = defaultLogFile()
	}

	l, closer, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	logger, closeLog = l, closer
	logging.SetGlobal(l)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperr.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
