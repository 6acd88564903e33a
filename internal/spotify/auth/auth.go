package auth

import "strings"

// SpotifyTokenURL is the Spotify token endpoint.
const SpotifyTokenURL = "https://accounts.spotify.com/api/token"

// tokenURL is the endpoint used for refreshes. Tests point it at a local server.
var tokenURL = SpotifyTokenURL

// RequiredScopes are the scopes an access token needs for radio playback.
var RequiredScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"streaming",
}

// MissingScopes returns the required scopes absent from a space-separated
// scope string. An empty scope string is treated as unknown and reports nothing.
func MissingScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	granted := make(map[string]bool)
	for _, s := range strings.Fields(scope) {
		granted[s] = true
	}
	var missing []string
	for _, s := range RequiredScopes {
		if !granted[s] {
			missing = append(missing, s)
		}
	}
	return missing
}
