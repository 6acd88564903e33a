package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing airadio configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  spotify.device          Device the radio plays on
  spotify.market          Market used for catalog search (e.g. US)
  recommend.url           Remote generate-tracks service
  recommend.openai_model  OpenAI model
  radio.watermark         Backlog length that triggers more recommendations
  server.addr             HTTP listen address
  tui.theme               auto, dark, or light
  log.level               debug, info, warn, or error

Examples:
  airadio config set spotify.device "Kitchen"
  airadio config set radio.watermark 5`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetDeviceCmd = &cobra.Command{
	Use:   "set-device",
	Short: "Interactively select the radio device",
	Long:  `Shows a picker to select the device the radio plays on.`,
	RunE:  runConfigSetDevice,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetDeviceCmd)
	rootCmd.AddCommand(configCmd)
}

// redacted returns a copy of cfg safe to print.
func redacted(c *config.Config) config.Config {
	out := *c
	if out.Recommend.OpenAIAPIKey != "" {
		out.Recommend.OpenAIAPIKey = "********"
	}
	return out
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := redacted(cfg)
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(shown)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(shown)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"path":   path,
			"exists": exists,
		})
	}
	if exists {
		Minimal(path)
	} else {
		MinimalF("%s (not created)", path)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'airadio config init' first", configPath)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := config.Save(config.Default(), configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Set OPENAI_API_KEY, or recommend.url to use a remote recommender")
		fmt.Println("  2. Run 'airadio auth token' to store a Spotify access token")
		fmt.Println("  3. Run 'airadio devices --pick' to choose a device")
	}

	return nil
}

// getConfigPath returns the file config writes go to: --config, the file
// that was loaded, or the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadFileConfig reads only the config file, without defaults or
// environment overrides, so that writing it back does not persist them.
func loadFileConfig(path string) (*config.Config, error) {
	c := &config.Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

func setConfigValue(c *config.Config, key, value string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	}

	var err error
	switch key {
	case "spotify.device":
		c.Spotify.Device = value
	case "spotify.market":
		c.Spotify.Market = strings.ToUpper(value)
	case "spotify.client_id":
		c.Spotify.ClientID = value
	case "recommend.url":
		c.Recommend.URL = value
	case "recommend.openai_model":
		c.Recommend.OpenAIModel = value
	case "radio.watermark":
		c.Radio.Watermark, err = atoi()
	case "server.addr":
		c.Server.Addr = value
	case "tui.theme":
		c.TUI.Theme = value
	case "log.level":
		c.Log.Level = value
	default:
		return fmt.Errorf("unknown key %q (see 'airadio config set --help')", key)
	}
	if err != nil {
		return err
	}

	check := *c
	check.ApplyDefaults()
	return check.Validate()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	fileCfg, err := loadFileConfig(configPath)
	if err != nil {
		return err
	}
	if err := setConfigValue(fileCfg, key, value); err != nil {
		return err
	}
	if err := config.Save(fileCfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}

	return nil
}

func runConfigSetDevice(cmd *cobra.Command, args []string) error {
	devices, err := listDevices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	if len(devices) == 0 {
		return fmt.Errorf("no devices found. Make sure Spotify is open on at least one device")
	}

	// Build options for picker
	var options []huh.Option[string]
	for _, d := range devices {
		label := d.Name
		if d.Type != "" {
			label = fmt.Sprintf("%s (%s)", d.Name, d.Type)
		}
		if d.IsActive {
			label = label + " [active]"
		}
		options = append(options, huh.NewOption(label, d.Name))
	}

	selected := cfg.Spotify.Device
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select radio device").
				Description("The radio waits for this device before playing").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	return runConfigSet(cmd, []string{"spotify.device", selected})
}
