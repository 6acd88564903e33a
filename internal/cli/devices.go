package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/core"
)

var devicesPick bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available Spotify Connect devices",
	Long: `Lists the Spotify Connect devices visible to your account.

The device named by spotify.device is marked; the radio waits for it
before playing. Use --pick to choose it interactively.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVarP(&devicesPick, "pick", "p", false, "choose the radio device and save it to the config file")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	if devicesPick {
		return runConfigSetDevice(cmd, args)
	}

	devices, err := listDevices(cmd.Context())
	if err != nil {
		return err
	}

	if JSONOutput() {
		return outputDevicesJSON(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found. Open Spotify on a device and try again.")
		return nil
	}
	for _, d := range devices {
		printDevice(d)
	}
	return nil
}

func listDevices(ctx context.Context) ([]core.Device, error) {
	p, err := newPlayer()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return p.GetDevices(ctx)
}

func isConfiguredDevice(d core.Device) bool {
	return cfg.Spotify.Device != "" && strings.EqualFold(d.Name, cfg.Spotify.Device)
}

func outputDevicesJSON(devices []core.Device) error {
	output := make([]map[string]interface{}, 0, len(devices))

	for _, d := range devices {
		output = append(output, map[string]interface{}{
			"id":         d.ID,
			"name":       d.Name,
			"type":       d.Type,
			"is_active":  d.IsActive,
			"configured": isConfiguredDevice(d),
		})
	}

	return json.NewEncoder(os.Stdout).Encode(output)
}

func printDevice(d core.Device) {
	marks := ""
	if d.IsActive {
		marks += " " + StatusIcon(true)
	}
	if isConfiguredDevice(d) {
		marks += " (radio)"
	}

	fmt.Printf("  %s %s%s\n", getDeviceIcon(d.Type), d.Name, marks)

	if Verbose() {
		fmt.Printf("      ID: %s\n", d.ID)
		fmt.Printf("      Type: %s\n", d.Type)
	}
}

func getDeviceIcon(deviceType core.DeviceType) string {
	switch deviceType {
	case core.DeviceTypeComputer:
		return "💻"
	case core.DeviceTypePhone:
		return "📱"
	case core.DeviceTypeSpeaker:
		return "🔊"
	case core.DeviceTypeTV:
		return "📺"
	default:
		return "🎧"
	}
}
