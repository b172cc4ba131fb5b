package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/deepresearch-ai/deepresearch/internal/llm"
	"github.com/deepresearch-ai/deepresearch/internal/rank"
)

// SectionSchema is the fixed report structure the model is instructed to
// produce and the parser enforces, in order.
var SectionSchema = []string{
	"Summary",
	"Detailed Analysis",
	"Applications",
	"Future Outlook",
}

// Section is one synthesized report section.
type Section struct {
	Heading string
	Body    string
}

// Result is the parsed, validated model output. Citations maps every
// citation id used in the sections to the source it was assigned to.
type Result struct {
	Sections  []Section
	Citations map[int]rank.Ranked
}

// ErrAuth marks an authorization rejection from the model backend. It is
// fatal and never retried.
var ErrAuth = errors.New("model authorization rejected")

// Synthesizer calls the language model once per run and parses its
// structured response. Transport failures are retried with exponential
// backoff; authorization and parse failures are surfaced immediately.
type Synthesizer struct {
	Client llm.Client
	Model  string
	// Retries is the number of retry attempts after the initial call for
	// transport errors. Negative disables retrying; zero applies the default.
	Retries int
	// newBackOff is a test seam for the retry policy.
	newBackOff func() backoff.BackOff
}

const defaultRetries = 2

// Synthesize builds the prompt from the topic and ranked sources, invokes
// the model, and returns the parsed result. Citation ids are assigned in
// ranked order: [1] is the highest-ranked source.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, sources []rank.Ranked) (Result, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return Result{}, errors.New("synthesizer not configured")
	}
	if len(sources) == 0 {
		return Result{}, errors.New("no sources to synthesize from")
	}

	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage()},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(topic, sources)},
		},
		Temperature: 0.1,
		N:           1,
	}

	resp, err := s.invoke(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if len(resp.Choices) == 0 {
		return Result{}, &ParseError{Reason: "model returned no choices"}
	}
	return Parse(resp.Choices[0].Message.Content, sources)
}

// invoke performs the chat call with bounded exponential backoff on
// transport errors. Authorization errors abort immediately.
func (s *Synthesizer) invoke(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	retries := s.Retries
	if retries == 0 {
		retries = defaultRetries
	}
	if retries < 0 {
		retries = 0
	}

	policy := s.newBackOff
	if policy == nil {
		policy = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		}
	}

	var resp openai.ChatCompletionResponse
	op := func() error {
		var err error
		resp, err = s.Client.CreateChatCompletion(ctx, req)
		if err == nil {
			return nil
		}
		if isAuthError(err) {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrAuth, err))
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy(), uint64(retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, ErrAuth) {
			return openai.ChatCompletionResponse{}, err
		}
		return openai.ChatCompletionResponse{}, fmt.Errorf("synthesis transport: %w", err)
	}
	return resp, nil
}

func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403
	}
	return false
}

func systemMessage() string {
	return "You are a careful research writer. Use ONLY the provided sources for facts. " +
		"Cite precisely with bracketed numeric indices like [1] that map to the numbered source list. " +
		"Do not invent sources or content. Keep the style concise and factual."
}

func userMessage(topic string, sources []rank.Ranked) string {
	var sb strings.Builder
	sb.WriteString("Write a research report in Markdown with exactly these H2 sections, in order:")
	for _, h := range SectionSchema {
		sb.WriteString("\n## ")
		sb.WriteString(h)
	}
	sb.WriteString("\n\nEvery factual claim must carry an inline citation marker [n] referencing the numbered sources below.")
	sb.WriteString("\nDo not use citation numbers outside the provided range.")
	sb.WriteString("\nDo not add sections beyond the four listed. Do not include a references list; it is appended separately.")
	sb.WriteString("\nIf the sources conflict, present both positions. If the sources cannot support a section, say what could not be determined.")
	sb.WriteString("\n\nResearch topic: ")
	sb.WriteString(topic)
	sb.WriteString("\n\nSources (cite with [n]):\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("[%d] %s — %s\n", i+1, src.Title, src.URL))
		if strings.TrimSpace(src.Body) != "" {
			sb.WriteString(src.Body)
			sb.WriteString("\n\n")
		}
	}
	sb.WriteString("\nOutput only the Markdown document, nothing else.")
	return sb.String()
}
