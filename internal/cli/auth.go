package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timmfy/ai-radio/internal/spotify/auth"
	"github.com/timmfy/ai-radio/internal/spotify/client"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify credentials",
	Long: `Commands for managing the Spotify access token airadio plays with.

airadio does not run the OAuth flow itself. Obtain an access token with the
playback scopes elsewhere and store it with 'airadio auth token', pass it
with --token, or set AIRADIO_SPOTIFY_TOKEN.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token [access-token]",
	Short: "Store a Spotify access token",
	Long:  `Stores an access token in the token file. Reads it from stdin when no argument is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthToken,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify token from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the current Spotify authentication status.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authTokenCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	var access string
	if len(args) == 1 {
		access = args[0]
	} else {
		if !JSONOutput() {
			fmt.Fprint(os.Stderr, "Paste access token: ")
		}
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read token: %w", err)
		}
		access = line
	}
	access = strings.TrimSpace(access)
	if access == "" {
		return fmt.Errorf("access token is empty")
	}

	storage, err := tokenStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}
	if err := storage.Save(auth.NewBearerToken(access)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "saved",
			"path":   storage.Path(),
		})
	} else {
		fmt.Printf("Token saved to %s\n", storage.Path())
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := tokenStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "not_authenticated"})
		} else {
			fmt.Println("Not authenticated with Spotify.")
		}
		return nil
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "logged_out"})
	} else {
		fmt.Println("Logged out of Spotify.")
	}

	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := tokenStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	source := storage.Path()
	spotifyClient := client.New(cfg.Spotify.ClientID, storage, client.WithLogger(logger))
	if tok := explicitToken(); tok != "" {
		source = "command line or environment"
		spotifyClient.UseAccessToken(tok)
	} else if err := spotifyClient.LoadToken(); err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	token := spotifyClient.Token()
	if token == nil {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"authenticated": false,
			})
		} else {
			fmt.Println("Not authenticated with Spotify.")
			fmt.Println("Run 'airadio auth token' to store an access token.")
		}
		return nil
	}

	missing := auth.MissingScopes(token.Scope)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	user, err := spotifyClient.GetCurrentUser(ctx)
	if err != nil {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"authenticated": true,
				"valid":         false,
				"source":        source,
				"error":         err.Error(),
			})
		} else {
			fmt.Printf("Token may be expired or invalid: %v\n", err)
			fmt.Println("Run 'airadio auth token' to store a fresh one.")
		}
		return nil
	}

	if JSONOutput() {
		out := map[string]interface{}{
			"authenticated":  true,
			"valid":          true,
			"source":         source,
			"user_id":        user.ID,
			"display_name":   user.DisplayName,
			"product":        user.Product,
			"missing_scopes": missing,
		}
		if !token.ExpiresAt.IsZero() {
			out["expires_at"] = token.ExpiresAt
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return nil
	}

	fmt.Printf("Authenticated as: %s\n", user.DisplayName)
	fmt.Printf("Account type: %s\n", user.Product)
	if !user.IsPremium() {
		fmt.Println("Warning: playback control requires Spotify Premium.")
	}
	fmt.Printf("Token source: %s\n", source)
	if source == storage.Path() {
		fmt.Printf("Token stored: %s\n", humanize.Time(storage.ModTime()))
	}
	if !token.ExpiresAt.IsZero() {
		fmt.Printf("Token expires: %s\n", humanize.Time(token.ExpiresAt))
	}
	if len(missing) > 0 {
		fmt.Printf("Missing scopes: %s\n", strings.Join(missing, ", "))
	}

	return nil
}
