package music

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Match them with errors.Is; the
// concrete value returned by a stage is a *StageError carrying the cause.
var (
	ErrUpstreamAuth    = errors.New("failed to get spotify token")
	ErrUpstreamWeather = errors.New("failed to get weather data")
	ErrMoodInference   = errors.New("failed to get mood from language model")
	ErrUpstreamSearch  = errors.New("failed to search spotify playlists")
	ErrNoPlaylistFound = errors.New("no playlists found")
)

// StageError is the single failure shape produced by every provider. Kind
// is one of the Err* values above, Status is the upstream HTTP status when
// one was received and Err is the underlying cause, if any.
type StageError struct {
	Kind   error
	Status int
	Err    error
}

// NewStageError builds a StageError without an upstream status.
func NewStageError(kind, cause error) *StageError {
	return &StageError{Kind: kind, Err: cause}
}

// StatusError builds a StageError for a non-success upstream response.
func StatusError(kind error, status int) *StageError {
	return &StageError{Kind: kind, Status: status}
}

func (e *StageError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%v (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%v (status %d)", e.Kind, e.Status)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause so errors.Is and errors.As
// work against either.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the error kind of err, or nil when err did not originate
// from a pipeline stage.
func Kind(err error) error {
	for _, k := range []error{ErrUpstreamAuth, ErrUpstreamWeather, ErrMoodInference, ErrUpstreamSearch, ErrNoPlaylistFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
