package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/resumebuilder/internal/config"
)

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Models() []string { return []string{m.name + "-small", m.name + "-large"} }

func (m *MockProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*ChatResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGatewayChatUsesDefaultProvider(t *testing.T) {
	primary := &MockProvider{name: "gemini"}
	other := &MockProvider{name: "openai"}
	req := ChatRequest{Model: "gemini-1.5-pro-latest", Messages: []Message{{Role: "user", Content: "hi"}}}
	primary.On("ChatCompletion", mock.Anything, req).Return(&ChatResponse{Provider: "gemini", Content: "hello"}, nil).Once()

	gw := NewGatewayWithProviders("gemini", primary, other)
	resp, err := gw.Chat(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	primary.AssertExpectations(t)
	other.AssertNotCalled(t, "ChatCompletion", mock.Anything, mock.Anything)
}

func TestGatewayChatDoesNotRetry(t *testing.T) {
	primary := &MockProvider{name: "gemini"}
	upstream := errors.New("quota exceeded")
	primary.On("ChatCompletion", mock.Anything, mock.Anything).Return(nil, upstream).Once()

	gw := NewGatewayWithProviders("gemini", primary)
	_, err := gw.Chat(context.Background(), ChatRequest{Model: "m"})

	assert.ErrorIs(t, err, upstream)
	primary.AssertNumberOfCalls(t, "ChatCompletion", 1)
}

func TestGatewayUnknownDefaultProvider(t *testing.T) {
	gw := NewGatewayWithProviders("mistral", &MockProvider{name: "gemini"})

	_, err := gw.Chat(context.Background(), ChatRequest{Model: "m"})
	assert.ErrorContains(t, err, `provider "mistral" not configured`)
}

func TestKnownModel(t *testing.T) {
	p := &MockProvider{name: "gemini"}

	assert.True(t, knownModel(p, "gemini-small"))
	assert.True(t, knownModel(p, ""))
	assert.False(t, knownModel(p, "gemini-ultra"))
}

func TestNewGatewayRequiresDefaultProvider(t *testing.T) {
	_, err := NewGateway(context.Background(), config.LLMConfig{Provider: "anthropic", OpenAIKey: "sk-test"})
	assert.ErrorContains(t, err, `default provider "anthropic" is not configured`)
}

func TestNewGatewayOllama(t *testing.T) {
	gw, err := NewGateway(context.Background(), config.LLMConfig{Provider: "ollama", Model: "llama3", OllamaURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", gw.DefaultProvider())
}

func TestNewGatewayWarnsOnUnlistedModel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := NewGateway(context.Background(), config.LLMConfig{Provider: "ollama", Model: "phi4", OllamaURL: "http://localhost:11434"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "configured model is not in the provider's model list")
	assert.Contains(t, buf.String(), `"model":"phi4"`)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.00125+0.005, CalculateCost("gemini-1.5-pro-latest", 1000, 1000), 1e-9)
	assert.Zero(t, CalculateCost("unknown-model", 1000, 1000))
}
