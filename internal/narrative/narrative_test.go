package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

type mockMessager struct {
	response *anthropic.Message
	err      error
	params   anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = params
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func withMockClient(mock *mockMessager) func() {
	old := newAnthropicClient
	newAnthropicClient = func(_ string) AnthropicMessager { return mock }
	return func() { newAnthropicClient = old }
}

type mockCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (m *mockCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.req = req
	return m.resp, m.err
}

func sampleRequest() Request {
	in := feasibility.DerivedInputs{Risk: 25, TimeValue: 8, ROITime: 18, LengthTimeFactor: 24, InterestRate: 8}
	return Request{
		ReportID: "rep-1",
		IdeaText: "Subscription coffee delivery at 8% financing, ROI in 18 months.",
		Mode:     feasibility.ModeSafe,
		Result:   feasibility.ComputeFeasibility(feasibility.ModeSafe, in, feasibility.DefaultCoefficients.For(feasibility.ModeSafe)),
		Inputs:   in,
	}
}

func TestBuildPromptCarriesScoreAndIdea(t *testing.T) {
	p := BuildPrompt(sampleRequest())
	for _, want := range []string{"Subscription coffee delivery", "Safe", "66/100", "Feasible", "18 months"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestAnthropicGeneratorReturnsText(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("  The idea clears the safe bar.  ")}
	defer withMockClient(mock)()

	g := NewAnthropicGenerator("test-key", "", 0)
	got, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "The idea clears the safe bar." {
		t.Fatalf("text=%q", got)
	}
	if mock.params.Model != defaultAnthropicModel {
		t.Fatalf("model=%s want=%s", mock.params.Model, defaultAnthropicModel)
	}
	if mock.params.MaxTokens != 400 {
		t.Fatalf("max_tokens=%d want=400", mock.params.MaxTokens)
	}
}

func TestAnthropicGeneratorEmptyContent(t *testing.T) {
	defer withMockClient(&mockMessager{response: &anthropic.Message{Content: []anthropic.ContentBlockUnion{}}})()

	_, err := NewAnthropicGenerator("k", "", 0).Generate(context.Background(), sampleRequest())
	if !errors.Is(err, ErrEmptyNarrative) {
		t.Fatalf("expected ErrEmptyNarrative, got %v", err)
	}
}

func TestOpenAIGeneratorReturnsFirstChoice(t *testing.T) {
	mock := &mockCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "```\nSolid under safe.\n```"}}},
	}}
	g := newOpenAIGenerator(mock, "", 0)
	got, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Solid under safe." {
		t.Fatalf("text=%q", got)
	}
	if mock.req.Model != openai.GPT4 || len(mock.req.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", mock.req)
	}
	if mock.req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first message role=%s", mock.req.Messages[0].Role)
	}
}

func TestOpenAIGeneratorNoChoices(t *testing.T) {
	g := newOpenAIGenerator(&mockCompleter{}, "gpt-4o", 100)
	if _, err := g.Generate(context.Background(), sampleRequest()); !errors.Is(err, ErrEmptyNarrative) {
		t.Fatalf("expected ErrEmptyNarrative, got %v", err)
	}
}

type fakeGemini struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeGemini) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func geminiText(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
	}}}
}

func TestGeminiGeneratorReturnsCleanText(t *testing.T) {
	fake := &fakeGemini{resp: geminiText("```\nViable under safe assumptions.\n```")}
	g := newGeminiGenerator(fake, "")
	got, err := g.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Viable under safe assumptions." {
		t.Fatalf("text=%q", got)
	}
	if fake.model != defaultGeminiModel {
		t.Fatalf("model=%q", fake.model)
	}
	if !strings.Contains(fake.prompt, "Subscription coffee delivery") {
		t.Fatalf("prompt=%q", fake.prompt)
	}
	if fake.config == nil || fake.config.SystemInstruction == nil || fake.config.SystemInstruction.Parts[0].Text != systemPrompt {
		t.Fatalf("system instruction not set: %+v", fake.config)
	}
}

func TestGeminiGeneratorEmptyAndFailure(t *testing.T) {
	for _, resp := range []*genai.GenerateContentResponse{nil, {}, geminiText("   ")} {
		g := newGeminiGenerator(&fakeGemini{resp: resp}, "gemini-2.5-pro")
		if _, err := g.Generate(context.Background(), sampleRequest()); !errors.Is(err, ErrEmptyNarrative) {
			t.Fatalf("expected ErrEmptyNarrative, got %v", err)
		}
	}
	boom := errors.New("quota exceeded")
	g := newGeminiGenerator(&fakeGemini{err: boom}, "")
	if _, err := g.Generate(context.Background(), sampleRequest()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

type scriptedGenerator struct {
	errs  []error
	text  string
	calls int
}

func (s *scriptedGenerator) Generate(context.Context, Request) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return "", s.errs[s.calls-1]
	}
	return s.text, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{errors.New("POST: 429 Too Many Requests"), ErrEmptyNarrative}, text: "ok"}
	r := WithRetry(inner, 3)
	r.sleep = noSleep

	got, err := r.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || inner.calls != 3 {
		t.Fatalf("got=%q calls=%d", got, inner.calls)
	}
}

func TestRetryStopsOnClientError(t *testing.T) {
	inner := &scriptedGenerator{errs: []error{errors.New("status code: 401 unauthorized")}, text: "never"}
	r := WithRetry(inner, 3)
	r.sleep = noSleep

	if _, err := r.Generate(context.Background(), sampleRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("calls=%d want=1", inner.calls)
	}
}

func TestClassifyTransportError(t *testing.T) {
	cases := []struct {
		err  error
		want failureClass
	}{
		{context.DeadlineExceeded, failureTimeout},
		{errors.New("got 429"), failureRateLimit},
		{errors.New("status code: 503"), failureServer},
		{errors.New("status code: 400"), failureClient},
		{errors.New("weird"), failureServer},
	}
	for _, tc := range cases {
		if got := classifyTransportError(tc.err); got != tc.want {
			t.Errorf("classify(%v)=%s want=%s", tc.err, got, tc.want)
		}
	}
}

func TestNewGeneratorFromConfigWithoutKeyDisables(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	g, err := NewGeneratorFromConfig(context.Background(), Config{Provider: ProviderAnthropic, MaxAttempts: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != nil {
		t.Fatalf("expected nil generator, got %T", g)
	}
}

func TestNewGeneratorFromConfigAnthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	defer withMockClient(&mockMessager{response: newMockMessage("fine")})()

	g, err := NewGeneratorFromConfig(context.Background(), Config{Provider: "Anthropic", MaxAttempts: 2, MaxTokens: 50}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := g.Generate(context.Background(), sampleRequest())
	if err != nil || got != "fine" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func TestNewGeneratorFromConfigUnknownProvider(t *testing.T) {
	_, err := NewGeneratorFromConfig(context.Background(), Config{Provider: "mystery", APIKey: "k"}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
