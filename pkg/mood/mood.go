// Package mood implements music.MoodClassifier on top of the OpenAI chat
// completions API. The model is asked to name, in one word, the mood that
// a set of weather conditions evokes.
package mood

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"Sonify-Go/pkg/music"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.GPT3Dot5Turbo

const systemPrompt = "You are a mood expert that can decide which mood is invoked by given weather conditions."

// completer is the subset of the openai.Client used by this package.
// It allows the concrete client to be replaced in tests.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config configures the classifier.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the public API address, e.g. for a proxy.
	BaseURL    string
	HTTPClient *http.Client
}

// Classifier asks a language model for a mood label.
type Classifier struct {
	client completer
	model  string
}

var _ music.MoodClassifier = (*Classifier)(nil)

// NewClassifier returns a Classifier backed by the OpenAI API.
func NewClassifier(cfg Config) *Classifier {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Classifier{client: openai.NewClientWithConfig(oc), model: model}
}

// Classify returns the trimmed, lowercased first completion for w. Every
// failure, whether transport, provider or an unusable answer, is reported
// as music.ErrMoodInference wrapping the cause.
func (c *Classifier) Classify(ctx context.Context, w music.WeatherSnapshot) (music.Mood, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(w)},
		},
	})
	if err != nil {
		return "", music.NewStageError(music.ErrMoodInference, err)
	}
	if len(resp.Choices) == 0 {
		return "", music.NewStageError(music.ErrMoodInference, errors.New("completion returned no choices"))
	}
	label := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	if label == "" {
		return "", music.NewStageError(music.ErrMoodInference, errors.New("completion was empty"))
	}
	return music.Mood(label), nil
}

func userPrompt(w music.WeatherSnapshot) string {
	return fmt.Sprintf("What mood would be invoked by this weather: Temperature: %s°C, Description: %s? Respond with a single word.",
		formatTemperature(w.Temperature), w.Description)
}

// formatTemperature prints t without rounding. Whole numbers keep one
// decimal place, so 22 becomes "22.0".
func formatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
