package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/sevigo/repo-pilot/internal/core"
)

// Request is a single model call.
type Request struct {
	APIKey         string
	Model          string
	Prompt         string
	Schema         *genai.Schema
	ThinkingBudget int32
}

// Generator sends a prompt to a model and returns the raw text of its answer.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type geminiGenerator struct {
	logger *slog.Logger
}

// NewGeminiGenerator returns a Generator backed by the Gemini API. A client is
// built per call because the API key belongs to the caller's session.
func NewGeminiGenerator(logger *slog.Logger) Generator {
	return &geminiGenerator{logger: logger}
}

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &core.AIProviderError{Message: err.Error(), Err: err}
	}

	config := &genai.GenerateContentConfig{}
	if req.ThinkingBudget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(req.ThinkingBudget)}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	g.logger.Debug("sending prompt to model", "model", req.Model, "prompt_chars", len(req.Prompt), "structured", req.Schema != nil)
	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		g.logger.Error("model call failed", "model", req.Model, "error", err)
		return "", &core.AIProviderError{Message: providerMessage(err), Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &core.AIProviderError{Message: fmt.Sprintf("model %s returned an empty response", req.Model)}
	}
	return text, nil
}

func providerMessage(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
