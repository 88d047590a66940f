package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"Sonify-Go/pkg/music"
)

// errorResponse maps a pipeline error to the status and detail shown to
// the client. Only mood failures expose the upstream message; the others
// carry a fixed description.
func errorResponse(err error) (int, string) {
	switch music.Kind(err) {
	case music.ErrUpstreamAuth:
		return http.StatusBadRequest, "Failed to get Spotify token"
	case music.ErrUpstreamWeather:
		return http.StatusBadRequest, "Failed to get weather data"
	case music.ErrMoodInference:
		cause := err
		var se *music.StageError
		if errors.As(err, &se) && se.Err != nil {
			cause = se.Err
		}
		return http.StatusBadRequest, fmt.Sprintf("Failed to get mood from OpenAI: %v", cause)
	case music.ErrUpstreamSearch:
		return http.StatusBadRequest, "Failed to search Spotify playlists"
	case music.ErrNoPlaylistFound:
		return http.StatusNotFound, "No playlists found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (app *Application) respondPipelineError(w http.ResponseWriter, err error) {
	status, detail := errorResponse(err)
	if status == http.StatusInternalServerError {
		app.logger().WithError(err).Error("unexpected pipeline error")
	}
	respondJSONError(w, status, detail)
}
