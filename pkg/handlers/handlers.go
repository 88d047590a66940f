// Package handlers exposes the mood playlist pipeline over HTTP. The
// Application struct bundles the dependencies shared by every handler;
// routes are registered by the caller (see cmd/web).

package handlers

import (
	"context"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"Sonify-Go/pkg/music"
)

// Pipeline is the subset of music.Orchestrator used by the handlers.
type Pipeline interface {
	AuthURL() string
	Authenticate(ctx context.Context, code string) (music.AccessToken, error)
	Recommend(ctx context.Context, loc music.Location, token music.AccessToken) (music.PlaylistResult, error)
}

var _ Pipeline = (*music.Orchestrator)(nil)

// Application holds the dependencies used by the HTTP handlers.
type Application struct {
	Pipeline Pipeline
	// FrontendURL receives the access token once login completes.
	FrontendURL string
	Logger      log.FieldLogger
}

func (app *Application) logger() log.FieldLogger {
	if app.Logger == nil {
		return log.StandardLogger()
	}
	return app.Logger
}

// Health reports that the process is serving requests.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login returns the Spotify authorization URL the client should visit.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"auth_url": app.Pipeline.AuthURL()})
}

// OAuthCallback completes the OAuth flow by exchanging the authorization
// code for an access token and redirecting to the frontend with the token
// appended as the access_token query parameter.
func (app *Application) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		respondJSONError(w, http.StatusBadRequest, "authorization denied: "+reason)
		return
	}
	code := q.Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "missing code parameter")
		return
	}
	token, err := app.Pipeline.Authenticate(r.Context(), code)
	if err != nil {
		app.respondPipelineError(w, err)
		return
	}
	dest, err := url.Parse(app.FrontendURL)
	if err != nil {
		app.logger().WithError(err).Error("invalid frontend url")
		respondJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	v := dest.Query()
	v.Set("access_token", string(token))
	dest.RawQuery = v.Encode()
	http.Redirect(w, r, dest.String(), http.StatusTemporaryRedirect)
}

// playlistRequest is the body accepted by GetPlaylist. Pointers
// distinguish a missing coordinate from zero.
type playlistRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// GetPlaylist resolves a mood playlist for the posted location using the
// caller's bearer token.
func (app *Application) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	token, ok := requireBearer(w, r)
	if !ok {
		return
	}
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respondJSONError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	loc := music.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := loc.Validate(); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := app.Pipeline.Recommend(r.Context(), loc, token)
	if err != nil {
		app.respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
