// Package chat answers customer questions about the shop through a hosted language model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vinoteca/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// FallbackResponse is shown when no answer can be produced.
const FallbackResponse = "Sorry, our assistant is not available right now. " +
	"Call us at +506 6430 6861 or write to info@wineandcheese.cr and we will gladly help."

var (
	// ErrEmptyMessage is returned for blank questions.
	ErrEmptyMessage = errors.New("message is required")
	// ErrUnavailable is returned when the backend cannot answer.
	ErrUnavailable = errors.New("chat backend unavailable")
)

// Responder answers one customer message.
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

const preamble = `You are the virtual assistant of Wine & Cheese, a restaurant and wine shop
specialised in wine and cheese pairings in La Ceiba, Alajuela, Costa Rica.

Shop information:
- Phone: +506 6430 6861
- Email: info@wineandcheese.cr
- Hours: Tuesday to Sunday, 12:00 to 22:00. Closed on Mondays.
- Services: wine tastings, private events, gourmet menu.
- Orders placed online are held for 48 hours and paid at pickup.
- Customers get 15% off their order on their birthday.

Answer in the customer's language, be friendly and concise (2 to 4 lines).`

// generator is the part of the genai client used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiResponder answers through the Gemini API.
type GeminiResponder struct {
	models  generator
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGeminiResponder creates a Gemini client from cfg.
func NewGeminiResponder(ctx context.Context, cfg config.ChatConfig, logger zerolog.Logger) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiResponder(client.Models, cfg.Model, cfg.Timeout, logger), nil
}

func newGeminiResponder(models generator, model string, timeout time.Duration, logger zerolog.Logger) *GeminiResponder {
	return &GeminiResponder{
		models:  models,
		model:   model,
		timeout: timeout,
		logger:  logger.With().Str("component", "chat").Str("model", model).Logger(),
	}
}

// Respond sends message with the shop preamble and returns the model's text.
func (r *GeminiResponder) Respond(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(preamble, genai.RoleUser),
	})
	if err != nil {
		r.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("chat request failed")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		r.logger.Warn().Dur("duration", time.Since(start)).Msg("chat backend returned no text")
		return "", ErrUnavailable
	}

	r.logger.Debug().Dur("duration", time.Since(start)).Int("length", len(text)).Msg("chat answered")
	return text, nil
}

// Disabled is used when no chat backend is configured.
type Disabled struct{}

// Respond validates message and reports the backend as unavailable.
func (Disabled) Respond(_ context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	return "", ErrUnavailable
}
