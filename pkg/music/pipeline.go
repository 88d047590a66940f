// This file implements the Orchestrator which chains the weather, mood and
// playlist stages for a single request.

package music

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Stage names used for logging and metrics.
const (
	StageAuth     = "auth"
	StageWeather  = "weather"
	StageMood     = "mood"
	StagePlaylist = "playlist"
)

// Observer is notified after every stage completes. err is nil on success.
type Observer interface {
	ObserveStage(stage string, elapsed time.Duration, err error)
}

// Orchestrator runs the recommendation pipeline. Stages execute strictly
// in sequence and the first failure is returned unchanged; no partial
// result is ever produced. An Orchestrator holds no per-request state and
// is safe for concurrent use.
type Orchestrator struct {
	Auth      Authenticator
	Weather   WeatherFetcher
	Mood      MoodClassifier
	Playlists PlaylistResolver

	// Observer and Logger are optional.
	Observer Observer
	Logger   log.FieldLogger
}

// Authenticate exchanges an OAuth authorization code for an access token.
// It is independent of the recommendation pipeline.
func (o *Orchestrator) Authenticate(ctx context.Context, code string) (AccessToken, error) {
	var tok AccessToken
	err := o.run(StageAuth, func() (err error) {
		tok, err = o.Auth.Exchange(ctx, code)
		return err
	})
	return tok, err
}

// AuthURL returns the provider authorization URL for the login redirect.
func (o *Orchestrator) AuthURL() string {
	return o.Auth.AuthURL()
}

// Recommend resolves a playlist for the weather at loc using token to
// search the catalog.
func (o *Orchestrator) Recommend(ctx context.Context, loc Location, token AccessToken) (PlaylistResult, error) {
	var weather WeatherSnapshot
	if err := o.run(StageWeather, func() (err error) {
		weather, err = o.Weather.CurrentWeather(ctx, loc)
		return err
	}); err != nil {
		return PlaylistResult{}, err
	}

	var mood Mood
	if err := o.run(StageMood, func() (err error) {
		mood, err = o.Mood.Classify(ctx, weather)
		return err
	}); err != nil {
		return PlaylistResult{}, err
	}
	o.logger().WithField("mood", string(mood)).Debug("mood classified")

	var result PlaylistResult
	if err := o.run(StagePlaylist, func() (err error) {
		result, err = o.Playlists.FindPlaylist(ctx, token, mood)
		return err
	}); err != nil {
		return PlaylistResult{}, err
	}
	return result, nil
}

// run times fn and reports the outcome to the observer and the log.
func (o *Orchestrator) run(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	if o.Observer != nil {
		o.Observer.ObserveStage(stage, time.Since(start), err)
	}
	if err != nil {
		o.logger().WithFields(log.Fields{"stage": stage, "error": err}).Warn("pipeline stage failed")
	}
	return err
}

func (o *Orchestrator) logger() log.FieldLogger {
	if o.Logger == nil {
		return log.StandardLogger()
	}
	return o.Logger
}
