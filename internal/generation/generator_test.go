package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/resumebuilder/internal/llm"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*llm.ChatResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) DefaultProvider() string { return "gemini" }

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(map[string]any{
		"years_experience": "5",
		"profession":       "electrician",
		"certifications":   []any{"OSHA 10", "NEC"},
	}, "hi")
	require.NoError(t, err)

	assert.Contains(t, prompt, "A user has provided this info in hi:")
	assert.Contains(t, prompt, "The resume MUST be in the user's language (hi).")
	assert.Contains(t, prompt, "- Certifications: OSHA 10, NEC\n- Profession: electrician\n- Years experience: 5")
	assert.Contains(t, prompt, "clean Markdown")
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	fields := map[string]any{"a": 1, "b": true, "c": "x", "d": nil}
	first, err := BuildPrompt(fields, "en")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := BuildPrompt(fields, "en")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "Years experience", labelFor("years_experience"))
	assert.Equal(t, "Name", labelFor("NAME"))
	assert.Equal(t, "", labelFor(""))
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := render("hello {{who}}", map[string]string{})
	assert.ErrorContains(t, err, "missing template variables: who")
}

func TestGenerateSuccess(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Chat", mock.Anything, mock.MatchedBy(func(req llm.ChatRequest) bool {
		return req.Model == "gemini-1.5-pro-latest" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == "system" &&
			req.Messages[1].Role == "user"
	})).Return(&llm.ChatResponse{Provider: "gemini", Content: "# Jane Doe"}, nil).Once()

	g := NewGenerator(gw, Options{Model: "gemini-1.5-pro-latest"})
	text, err := g.Generate(context.Background(), map[string]any{"profession": "welder"}, "en")

	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe", text)
	gw.AssertExpectations(t)
}

func TestGenerateWrapsUpstreamError(t *testing.T) {
	upstream := errors.New("503 unavailable")
	gw := new(MockGateway)
	gw.On("Chat", mock.Anything, mock.Anything).Return(nil, upstream).Once()

	g := NewGenerator(gw, Options{Model: "m"})
	_, err := g.Generate(context.Background(), map[string]any{"profession": "welder"}, "en")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "gemini", genErr.Provider)
	assert.ErrorIs(t, err, upstream)
	gw.AssertNumberOfCalls(t, "Chat", 1)
}

func TestGenerateRejectsBlankOutput(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Chat", mock.Anything, mock.Anything).Return(&llm.ChatResponse{Content: "  \n"}, nil).Once()

	g := NewGenerator(gw, Options{Model: "m"})
	_, err := g.Generate(context.Background(), map[string]any{"profession": "welder"}, "en")

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}
