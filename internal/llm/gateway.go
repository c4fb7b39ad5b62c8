package llm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nikhilbhutani/resumebuilder/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewGateway builds a provider for every vendor that has credentials and fails
// if the configured default provider cannot be built.
func NewGateway(ctx context.Context, cfg config.LLMConfig) (Gateway, error) {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.Provider,
	}

	if cfg.GeminiKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		g.providers["gemini"] = p
	}
	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIURL)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.Provider == "ollama" && cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	p, ok := g.providers[g.defaultProvider]
	if !ok {
		return nil, fmt.Errorf("default provider %q is not configured", g.defaultProvider)
	}
	if !knownModel(p, cfg.Model) {
		slog.Warn("configured model is not in the provider's model list",
			"provider", p.Name(),
			"model", cfg.Model,
			"known", p.Models(),
		)
	}
	return g, nil
}

// knownModel reports whether model is listed by p. An empty model is left to
// the provider's default.
func knownModel(p Provider, model string) bool {
	return model == "" || slices.Contains(p.Models(), model)
}

// NewGatewayWithProviders is used when providers are constructed by the caller.
func NewGatewayWithProviders(defaultProvider string, providers ...Provider) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) DefaultProvider() string { return g.defaultProvider }

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := g.provider(g.defaultProvider)
	if err != nil {
		return nil, err
	}

	resp, err := p.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Debug("llm call completed",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}
