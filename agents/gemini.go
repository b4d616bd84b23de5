package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexdraft-backend/logger"

	"github.com/google/generative-ai-go/genai"
)

const (
	defaultGeminiModel = "gemini-1.5-pro"
	maxRetries         = 3
	initialBackoff     = time.Second
)

var ErrGenerationFailed = errors.New("failed to generate content")

// GeminiGenerator is a TextGenerator backed by the Gemini API
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	backoff     time.Duration
	log         *logger.Logger
}

// GeminiOption is a functional option for GeminiGenerator
type GeminiOption func(*GeminiGenerator)

// GeminiWithModel sets the model name
func GeminiWithModel(model string) GeminiOption {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// GeminiWithTemperature sets the sampling temperature
func GeminiWithTemperature(t float32) GeminiOption {
	return func(g *GeminiGenerator) {
		g.temperature = t
	}
}

// GeminiWithLogger sets the logger
func GeminiWithLogger(log *logger.Logger) GeminiOption {
	return func(g *GeminiGenerator) {
		g.log = log
	}
}

// NewGeminiGenerator wraps an initialized client
func NewGeminiGenerator(client *genai.Client, opts ...GeminiOption) *GeminiGenerator {
	g := &GeminiGenerator{
		client:      client,
		model:       defaultGeminiModel,
		temperature: 0.3,
		backoff:     initialBackoff,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "GeminiGenerator", "model", g.model)
	return g
}

// GenerateText asks the model for a JSON response, retrying transient
// failures with exponential backoff.
func (g *GeminiGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	backoff := g.backoff
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			lastErr = err
			g.log.Warn("generation attempt failed", "attempt", attempt+1, "error", err)
			continue
		}

		content, err := g.extractText(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrGenerationFailed, maxRetries, lastErr)
}

func (g *GeminiGenerator) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("no candidates returned")
	}

	var sb strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			g.log.Warn("candidate finished early", "candidate", i, "reason", candidate.FinishReason.String())
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}

	if sb.Len() == 0 {
		return "", errors.New("candidates have no text parts")
	}
	return sb.String(), nil
}
