// This file implements the authorization code half of the Spotify OAuth
// flow: building the login URL and exchanging the returned code for an
// access token.

package spotify

import (
	"context"
	"errors"
	"net/http"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Sonify-Go/pkg/music"
)

// Scopes requested during login: streaming, profile read, private playlist
// read and playback state read/modify.
var Scopes = []string{
	spotify.ScopeStreaming,
	spotify.ScopeUserReadEmail,
	spotify.ScopeUserReadPrivate,
	spotify.ScopePlaylistReadPrivate,
	spotify.ScopeUserReadPlaybackState,
	spotify.ScopeUserModifyPlaybackState,
}

// AuthConfig holds the client credentials registered with Spotify.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURL must match the callback configured in the Spotify
	// developer dashboard.
	RedirectURL string
	// AuthURL and TokenURL default to the public Spotify accounts service.
	AuthURL  string
	TokenURL string
	// HTTPClient is used for the token request. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Authenticator performs the Spotify authorization code exchange.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

var _ music.Authenticator = (*Authenticator)(nil)

// NewAuthenticator returns an Authenticator for the given credentials.
// Client credentials are sent in the token request body.
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	authURL, tokenURL := cfg.AuthURL, cfg.TokenURL
	if authURL == "" {
		authURL = spotify.AuthURL
	}
	if tokenURL == "" {
		tokenURL = spotify.TokenURL
	}
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: cfg.HTTPClient,
	}
}

// AuthURL returns the authorization URL with the client ID, redirect URI
// and scopes pre-populated.
func (a *Authenticator) AuthURL() string {
	return a.config.AuthCodeURL("")
}

// Exchange trades code for an access token. Any failure, including a
// non-success response from the token endpoint, is music.ErrUpstreamAuth.
// The exchange is attempted exactly once since a rejected code cannot be
// redeemed again.
func (a *Authenticator) Exchange(ctx context.Context, code string) (music.AccessToken, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		se := music.NewStageError(music.ErrUpstreamAuth, err)
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			se.Status = re.Response.StatusCode
		}
		return "", se
	}
	return music.AccessToken(tok.AccessToken), nil
}
