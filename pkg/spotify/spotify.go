// Package spotify wraps the Spotify client library providing the two
// Spotify-facing stages of the pipeline: the OAuth authorization code
// exchange (Authenticator) and the mood playlist search (PlaylistResolver).
// Errors are reported as music.StageError values; the underlying library
// error is kept as the cause so callers can inspect it if needed.
//
// The wrapped library does not accept a context, so requests are bound to
// the caller's context at the transport level and cancellation is also
// checked explicitly before each call.

package spotify

import (
	"context"
	"errors"
	"net/http"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Sonify-Go/pkg/music"
)

// searcher defines the subset of the spotify.Client used by this package.
// It allows the concrete client to be replaced in tests.
type searcher interface {
	SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error)
}

// PlaylistResolver searches the Spotify catalog on behalf of a user.
type PlaylistResolver struct {
	httpClient *http.Client
	// newSearcher builds a client authorized with the caller's token.
	newSearcher func(ctx context.Context, token music.AccessToken) searcher
}

// Compile-time interface check ensuring PlaylistResolver satisfies the
// music.PlaylistResolver interface used by the pipeline.
var _ music.PlaylistResolver = (*PlaylistResolver)(nil)

// NewPlaylistResolver returns a resolver issuing requests through
// httpClient. A nil client uses http.DefaultClient.
func NewPlaylistResolver(httpClient *http.Client) *PlaylistResolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	r := &PlaylistResolver{httpClient: httpClient}
	r.newSearcher = r.userClient
	return r
}

// userClient creates a Spotify client presenting token as a bearer
// credential. Every request it sends is bound to ctx, which carries the
// request deadline; the client itself has no Timeout because
// oauth2.Transport does not support CancelRequest.
func (r *PlaylistResolver) userClient(ctx context.Context, token music.AccessToken) searcher {
	base := r.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: string(token), TokenType: "Bearer"}),
			Base:   contextTransport{ctx: ctx, base: base},
		},
	}
	c := spotify.NewClient(hc)
	return &c
}

// FindPlaylist searches for playlists matching "<mood> mood" and returns
// the first hit. A non-success response is music.ErrUpstreamSearch while a
// successful response without a usable first item is
// music.ErrNoPlaylistFound.
func (r *PlaylistResolver) FindPlaylist(ctx context.Context, token music.AccessToken, mood music.Mood) (music.PlaylistResult, error) {
	if err := ctx.Err(); err != nil {
		return music.PlaylistResult{}, music.NewStageError(music.ErrUpstreamSearch, err)
	}
	if r.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.httpClient.Timeout)
		defer cancel()
	}
	limit := 1
	results, err := r.newSearcher(ctx, token).SearchOpt(string(mood)+" mood", spotify.SearchTypePlaylist, &spotify.Options{Limit: &limit})
	if err != nil {
		se := music.NewStageError(music.ErrUpstreamSearch, err)
		var apiErr spotify.Error
		if errors.As(err, &apiErr) {
			se.Status = apiErr.Status
		}
		return music.PlaylistResult{}, se
	}
	if results == nil || results.Playlists == nil || len(results.Playlists.Playlists) == 0 {
		return music.PlaylistResult{}, music.NewStageError(music.ErrNoPlaylistFound, nil)
	}
	// Spotify may return null entries, which decode as zero values.
	p := results.Playlists.Playlists[0]
	if p.ID == "" {
		return music.PlaylistResult{}, music.NewStageError(music.ErrNoPlaylistFound, nil)
	}
	return music.PlaylistResult{ID: string(p.ID), Name: p.Name}, nil
}

// contextTransport attaches ctx to outgoing requests that were created
// without one.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
