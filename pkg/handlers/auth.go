// Package handlers contains HTTP handlers for Sonify-Go. This file groups
// the helpers that deal with the caller's Spotify credential. The service
// never stores the credential: it is read from the Authorization header on
// each request and passed straight to the playlist search.

package handlers

import (
	"net/http"
	"strings"

	"Sonify-Go/pkg/music"
)

// bearerToken extracts the credential from an "Authorization: Bearer"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (music.AccessToken, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return music.AccessToken(token), true
}

// requireBearer is a helper used by handlers to enforce authentication. It
// writes a 401 response on failure and returns the token otherwise.
func requireBearer(w http.ResponseWriter, r *http.Request) (music.AccessToken, bool) {
	token, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondJSONError(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return token, true
}
