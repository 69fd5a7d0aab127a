// internal/flags/judge.go

package flags

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

type Verdict string

const (
	VerdictAligned       Verdict = "ALIGNED"
	VerdictContradictory Verdict = "CONTRADICTORY"
	VerdictNeutral       Verdict = "NEUTRAL"
)

// JudgmentRequest carries one answer and the profile context it is judged
// against
type JudgmentRequest struct {
	ProfileContext string
	QuestionText   string
	AnswerText     string
}

type Judgment struct {
	Verdict   Verdict
	Rationale string
}

// Judge classifies a single screening answer against the recipient's
// stated profile context
type Judge interface {
	Assess(ctx context.Context, req *JudgmentRequest) (*Judgment, error)
}

const judgeSystemPrompt = `You are a compatibility reviewer for a matrimonial matching service.
You will be given a member's stated profile context, a screening question the member authored, and the answer another member gave.

Classify the answer strictly from the stated context. Do not infer preferences that are not written in the context. If the context does not speak to the answer, the verdict is NEUTRAL.

Respond in exactly two lines:
Line 1: one of ALIGNED, CONTRADICTORY, NEUTRAL
Line 2: one sentence addressed to the member who authored the question, explaining the verdict.`

type openAIJudge struct {
	client *openai.Client
	model  string
}

func NewOpenAIJudge(apiKey, model string) Judge {
	return &openAIJudge{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (j *openAIJudge) Assess(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
	userPrompt := fmt.Sprintf(
		"Profile context:\n%s\n\nQuestion:\n%s\n\nAnswer:\n%s",
		req.ProfileContext, req.QuestionText, req.AnswerText,
	)

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       j.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("judge returned no choices")
	}

	return parseJudgment(resp.Choices[0].Message.Content), nil
}

// parseJudgment reads the verdict token defensively. Anything unparseable
// defaults to NEUTRAL so a malformed completion can never promote an
// answer to aligned or contradictory.
func parseJudgment(content string) *Judgment {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	verdict := VerdictNeutral
	rationale := ""

	if len(lines) > 0 {
		switch Verdict(strings.ToUpper(strings.TrimSpace(lines[0]))) {
		case VerdictAligned:
			verdict = VerdictAligned
		case VerdictContradictory:
			verdict = VerdictContradictory
		case VerdictNeutral:
			verdict = VerdictNeutral
		}
	}

	if len(lines) > 1 {
		rationale = strings.TrimSpace(strings.Join(lines[1:], " "))
	}
	if rationale == "" {
		rationale = "This answer could not be assessed against the stated profile."
		verdict = VerdictNeutral
	}

	return &Judgment{Verdict: verdict, Rationale: rationale}
}

// MockJudge implements Judge for testing. Safe for the concurrent fan-out
// the pipeline performs.
type MockJudge struct {
	AssessFunc func(ctx context.Context, req *JudgmentRequest) (*Judgment, error)

	mu    sync.Mutex
	calls int
}

func (m *MockJudge) Assess(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.AssessFunc != nil {
		return m.AssessFunc(ctx, req)
	}
	return &Judgment{Verdict: VerdictNeutral, Rationale: "No assessment available."}, nil
}

func (m *MockJudge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
