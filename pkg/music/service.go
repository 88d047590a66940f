// Package music defines the data that flows through the mood playlist
// pipeline and the interfaces each upstream provider implements. Concrete
// providers live in their own packages (weather, mood, spotify) so the
// pipeline can stay agnostic about the services behind it.
//
// Every value here is request scoped: nothing is cached or retained once a
// request completes.
package music

import (
	"context"
	"fmt"
	"math"
)

// Location is a coordinate pair supplied by the caller.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether both coordinates are finite and inside the
// ranges a weather provider accepts.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be a finite value between -90 and 90")
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be a finite value between -180 and 180")
	}
	return nil
}

// AccessToken is the opaque bearer credential issued by the streaming
// provider. It formats as a redacted placeholder so it cannot leak into
// logs by accident; use string(token) when the raw value is required.
type AccessToken string

const redacted = "[redacted]"

// String implements fmt.Stringer.
func (AccessToken) String() string { return redacted }

// GoString implements fmt.GoStringer so %#v is redacted too.
func (AccessToken) GoString() string { return redacted }

// MarshalText implements encoding.TextMarshaler. Structured loggers encode
// field values through it.
func (AccessToken) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// WeatherSnapshot holds the two weather fields the classifier consumes.
type WeatherSnapshot struct {
	// Temperature in degrees Celsius.
	Temperature float64
	Description string
}

// Mood is a single lowercase word describing the feeling evoked by the
// weather. It doubles as the catalog search term.
type Mood string

// PlaylistResult identifies the playlist chosen for a mood.
type PlaylistResult struct {
	ID   string `json:"playlist_id"`
	Name string `json:"playlist_name"`
}

// Authenticator performs the OAuth authorization code flow with the
// streaming provider.
type Authenticator interface {
	// AuthURL returns the provider authorization page the user must visit.
	AuthURL() string

	// Exchange trades an authorization code for an access token. Failures
	// are reported as ErrUpstreamAuth and must not be retried with the
	// same code.
	Exchange(ctx context.Context, code string) (AccessToken, error)
}

// WeatherFetcher resolves the current conditions at a location.
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, loc Location) (WeatherSnapshot, error)
}

// MoodClassifier derives a mood label from weather conditions.
type MoodClassifier interface {
	Classify(ctx context.Context, w WeatherSnapshot) (Mood, error)
}

// PlaylistResolver finds a playlist in the catalog matching a mood. The
// token authorizes the search on behalf of the caller.
type PlaylistResolver interface {
	FindPlaylist(ctx context.Context, token AccessToken, mood Mood) (PlaylistResult, error)
}
