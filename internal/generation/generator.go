// Package generation turns questionnaire answers into a Markdown resume
// through the configured LLM provider.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/resumebuilder/internal/llm"
)

var errEmptyOutput = errors.New("model returned no text")

// GenerationError wraps any failure of the upstream generation call.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate resume via %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type Generator struct {
	gateway llm.Gateway
	opts    Options
}

func NewGenerator(gw llm.Gateway, opts Options) *Generator {
	return &Generator{gateway: gw, opts: opts}
}

// Generate builds the prompt for fields in language lang and returns the raw
// model output. It calls the provider once and never persists anything.
func (g *Generator) Generate(ctx context.Context, fields map[string]any, lang string) (string, error) {
	prompt, err := BuildPrompt(fields, lang)
	if err != nil {
		return "", err
	}

	provider := g.gateway.DefaultProvider()
	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model: g.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return "", &GenerationError{Provider: provider, Err: err}
	}

	if strings.TrimSpace(resp.Content) == "" {
		return "", &GenerationError{Provider: provider, Err: errEmptyOutput}
	}

	slog.Info("resume generated",
		"provider", resp.Provider,
		"model", resp.Model,
		"lang", lang,
		"total_tokens", resp.TotalTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp.Content, nil
}
