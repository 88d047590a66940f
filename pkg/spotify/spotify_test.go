package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	libspotify "github.com/zmb3/spotify"

	"Sonify-Go/pkg/music"
)

type fakeSearcher struct {
	lastQuery string
	lastType  libspotify.SearchType
	lastOpt   *libspotify.Options
	result    *libspotify.SearchResult
	err       error
}

func (f *fakeSearcher) SearchOpt(query string, t libspotify.SearchType, opt *libspotify.Options) (*libspotify.SearchResult, error) {
	f.lastQuery = query
	f.lastType = t
	f.lastOpt = opt
	return f.result, f.err
}

func resolverWith(fs *fakeSearcher) (*PlaylistResolver, *music.AccessToken) {
	var seen music.AccessToken
	r := NewPlaylistResolver(nil)
	r.newSearcher = func(ctx context.Context, token music.AccessToken) searcher {
		seen = token
		return fs
	}
	return r, &seen
}

func playlists(items ...libspotify.SimplePlaylist) *libspotify.SearchResult {
	return &libspotify.SearchResult{Playlists: &libspotify.SimplePlaylistPage{Playlists: items}}
}

func TestFindPlaylistFound(t *testing.T) {
	fs := &fakeSearcher{result: playlists(
		libspotify.SimplePlaylist{ID: "abc123", Name: "Joyful Vibes"},
		libspotify.SimplePlaylist{ID: "other", Name: "Ignored"},
	)}
	r, seen := resolverWith(fs)

	got, err := r.FindPlaylist(context.Background(), "tok", "joyful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (music.PlaylistResult{ID: "abc123", Name: "Joyful Vibes"}) {
		t.Errorf("unexpected result: %+v", got)
	}
	if fs.lastQuery != "joyful mood" || fs.lastType != libspotify.SearchTypePlaylist {
		t.Errorf("Search called with %s %v", fs.lastQuery, fs.lastType)
	}
	if fs.lastOpt == nil || fs.lastOpt.Limit == nil || *fs.lastOpt.Limit != 1 {
		t.Errorf("expected limit 1, got %+v", fs.lastOpt)
	}
	if *seen != "tok" {
		t.Errorf("token not forwarded")
	}
}

// TestFindPlaylistEmptyVersusFailure checks an empty result set and a
// failed search are reported as different kinds.
func TestFindPlaylistEmptyVersusFailure(t *testing.T) {
	r, _ := resolverWith(&fakeSearcher{result: playlists()})
	_, err := r.FindPlaylist(context.Background(), "tok", "calm")
	if !errors.Is(err, music.ErrNoPlaylistFound) || errors.Is(err, music.ErrUpstreamSearch) {
		t.Fatalf("expected no playlist error, got %v", err)
	}

	r, _ = resolverWith(&fakeSearcher{result: &libspotify.SearchResult{}})
	_, err = r.FindPlaylist(context.Background(), "tok", "calm")
	if !errors.Is(err, music.ErrNoPlaylistFound) {
		t.Fatalf("expected no playlist error for missing page, got %v", err)
	}

	r, _ = resolverWith(&fakeSearcher{err: libspotify.Error{Message: "bad gateway", Status: 502}})
	_, err = r.FindPlaylist(context.Background(), "tok", "calm")
	if !errors.Is(err, music.ErrUpstreamSearch) || errors.Is(err, music.ErrNoPlaylistFound) {
		t.Fatalf("expected search error, got %v", err)
	}
	var se *music.StageError
	if !errors.As(err, &se) || se.Status != 502 {
		t.Errorf("expected status 502, got %+v", se)
	}
}

func TestFindPlaylistCanceled(t *testing.T) {
	fs := &fakeSearcher{result: playlists(libspotify.SimplePlaylist{ID: "1"})}
	r, _ := resolverWith(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.FindPlaylist(ctx, "tok", "calm")
	if !errors.Is(err, music.ErrUpstreamSearch) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled search error, got %v", err)
	}
	if fs.lastQuery != "" {
		t.Errorf("search should not run after cancellation")
	}
}

type rt struct {
	status int
	body   string
	req    *http.Request
}

func (r *rt) RoundTrip(req *http.Request) (*http.Response, error) {
	r.req = req
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(r.status)
	rec.WriteString(r.body)
	return rec.Result(), nil
}

// TestFindPlaylistHTTP drives the real Spotify client through a fake
// transport and inspects the outgoing request.
func TestFindPlaylistHTTP(t *testing.T) {
	tr := &rt{status: 200, body: `{"playlists":{"href":"","items":[{"id":"abc123","name":"Joyful Vibes"}],"limit":1,"total":1}}`}
	r := NewPlaylistResolver(&http.Client{Transport: tr})

	got, err := r.FindPlaylist(context.Background(), "user-token", "joyful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "abc123" || got.Name != "Joyful Vibes" {
		t.Errorf("unexpected result %+v", got)
	}
	if h := tr.req.Header.Get("Authorization"); h != "Bearer user-token" {
		t.Errorf("unexpected authorization header %q", h)
	}
	q := tr.req.URL.Query()
	if tr.req.URL.Path != "/v1/search" || q.Get("q") != "joyful mood" || q.Get("type") != "playlist" || q.Get("limit") != "1" {
		t.Errorf("unexpected request %s", tr.req.URL)
	}
}

func TestFindPlaylistHTTPErrors(t *testing.T) {
	r := NewPlaylistResolver(&http.Client{Transport: &rt{status: 401, body: `{"error":{"status":401,"message":"The access token expired"}}`}})
	_, err := r.FindPlaylist(context.Background(), "expired", "sad")
	if !errors.Is(err, music.ErrUpstreamSearch) {
		t.Fatalf("expected search error, got %v", err)
	}

	for _, body := range []string{
		`{"playlists":{"items":[],"total":0}}`,
		`{"playlists":{"items":[null],"total":1}}`,
	} {
		r = NewPlaylistResolver(&http.Client{Transport: &rt{status: 200, body: body}})
		got, err := r.FindPlaylist(context.Background(), "tok", "sad")
		if !errors.Is(err, music.ErrNoPlaylistFound) {
			t.Fatalf("%s: expected no playlist error, got %+v %v", body, got, err)
		}
	}
}

// blockingRT waits for the request context to end and records whether it
// carried a deadline.
type blockingRT struct {
	hasDeadline bool
}

func (b *blockingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	_, b.hasDeadline = req.Context().Deadline()
	<-req.Context().Done()
	return nil, req.Context().Err()
}

// TestFindPlaylistTimeout checks the client timeout is applied as a
// context deadline on the outgoing request.
func TestFindPlaylistTimeout(t *testing.T) {
	tr := &blockingRT{}
	r := NewPlaylistResolver(&http.Client{Transport: tr, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := r.FindPlaylist(context.Background(), "tok", "sad")
	if !errors.Is(err, music.ErrUpstreamSearch) {
		t.Fatalf("expected search error, got %v", err)
	}
	if !tr.hasDeadline {
		t.Errorf("request context has no deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}
}
