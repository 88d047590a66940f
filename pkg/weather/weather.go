// Package weather implements music.WeatherFetcher using the OpenWeatherMap
// current conditions API. Temperatures are requested in metric units.
//
// Network calls are performed using the provided http.Client allowing
// callers to substitute a test client.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"Sonify-Go/pkg/music"
)

// DefaultURL is the OpenWeatherMap current weather endpoint.
const DefaultURL = "http://api.openweathermap.org/data/2.5/weather"

// Client provides access to the OpenWeatherMap API.
type Client struct {
	Key string
	// URL overrides DefaultURL when set.
	URL    string
	Client *http.Client
}

// ensure Client implements the music.WeatherFetcher interface.
var _ music.WeatherFetcher = (*Client)(nil)

// currentResponse lists the only fields read from the response body.
type currentResponse struct {
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentWeather fetches the conditions at loc. The snapshot carries the
// primary temperature and the first condition description; everything
// else in the response is ignored. Any failure is reported as
// music.ErrUpstreamWeather.
func (c *Client) CurrentWeather(ctx context.Context, loc music.Location) (music.WeatherSnapshot, error) {
	hc := c.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	u := c.URL
	if u == "" {
		u = DefaultURL
	}
	params := url.Values{
		"lat":   {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
		"appid": {c.Key},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return music.WeatherSnapshot{}, music.NewStageError(music.ErrUpstreamWeather, err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return music.WeatherSnapshot{}, music.NewStageError(music.ErrUpstreamWeather, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return music.WeatherSnapshot{}, music.StatusError(music.ErrUpstreamWeather, resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return music.WeatherSnapshot{}, music.NewStageError(music.ErrUpstreamWeather, err)
	}
	if body.Main.Temp == nil {
		return music.WeatherSnapshot{}, music.NewStageError(music.ErrUpstreamWeather, errors.New("response missing main.temp"))
	}
	if len(body.Weather) == 0 {
		return music.WeatherSnapshot{}, music.NewStageError(music.ErrUpstreamWeather, errors.New("response missing weather conditions"))
	}
	return music.WeatherSnapshot{
		Temperature: *body.Main.Temp,
		Description: body.Weather[0].Description,
	}, nil
}
