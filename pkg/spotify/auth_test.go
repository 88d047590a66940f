package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"Sonify-Go/pkg/music"
)

func TestAuthURL(t *testing.T) {
	a := NewAuthenticator(AuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost:8000/callback"})
	u, err := url.Parse(a.AuthURL())
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
		t.Errorf("unexpected auth url %s", u)
	}
	q := u.Query()
	if q.Get("client_id") != "id" || q.Get("response_type") != "code" || q.Get("redirect_uri") != "http://localhost:8000/callback" {
		t.Errorf("unexpected query %s", u.RawQuery)
	}
	want := "streaming user-read-email user-read-private playlist-read-private user-read-playback-state user-modify-playback-state"
	if q.Get("scope") != want {
		t.Errorf("scope = %q want %q", q.Get("scope"), want)
	}
	if strings.Contains(u.RawQuery, "secret") {
		t.Errorf("client secret leaked into auth url")
	}
}

func tokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "good" ||
			r.PostForm.Get("client_id") != "id" || r.PostForm.Get("client_secret") != "secret" ||
			r.PostForm.Get("redirect_uri") != "http://cb" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestExchangeSuccess(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, `{"access_token":"access","token_type":"Bearer","expires_in":3600,"refresh_token":"r"}`)
	defer srv.Close()
	a := NewAuthenticator(AuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://cb", TokenURL: srv.URL, HTTPClient: srv.Client()})

	tok, err := a.Exchange(context.Background(), "good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(tok) != "access" {
		t.Errorf("unexpected token %q", string(tok))
	}
}

// TestExchangeRejected ensures a non-success token response maps to the
// auth error kind with the upstream status.
func TestExchangeRejected(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, `{"access_token":"access"}`)
	defer srv.Close()
	a := NewAuthenticator(AuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://cb", TokenURL: srv.URL, HTTPClient: srv.Client()})

	_, err := a.Exchange(context.Background(), "reused")
	if !errors.Is(err, music.ErrUpstreamAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	var se *music.StageError
	if !errors.As(err, &se) || se.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %+v", se)
	}
}

func TestExchangeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	a := NewAuthenticator(AuthConfig{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})
	if _, err := a.Exchange(context.Background(), "good"); !errors.Is(err, music.ErrUpstreamAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}
