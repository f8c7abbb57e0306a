package llm

import (
	"context"
	"strings"
	"sync"
)

// MockProvider replays scripted replies in order and records every request.
// Used by tests and by the "mock" provider setting for offline demos.
type MockProvider struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	calls    [][]Message
	Fallback string // returned once the script runs out; empty means ErrScriptExhausted
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider scripts the given replies.
func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{replies: replies}
}

// FailNext makes the next call return err instead of a reply.
func (p *MockProvider) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

// Calls returns a copy of the recorded requests.
func (p *MockProvider) Calls() [][]Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]Message, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *MockProvider) Name() string { return ProviderMock }

func (p *MockProvider) next(messages []Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]Message(nil), messages...))

	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return "", err
	}
	if len(p.replies) == 0 {
		if p.Fallback != "" {
			return p.Fallback, nil
		}
		return "", ErrScriptExhausted
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *MockProvider) GenerateResponse(ctx context.Context, messages []Message, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	return p.next(messages)
}

// StreamResponse emits the scripted reply word by word.
func (p *MockProvider) StreamResponse(ctx context.Context, messages []Message, opts Options, onDelta DeltaFunc) (string, error) {
	reply, err := p.GenerateResponse(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	if onDelta != nil {
		for _, word := range strings.SplitAfter(reply, " ") {
			if err := onDelta(word); err != nil {
				return "", err
			}
		}
	}
	return reply, nil
}

func (p *MockProvider) AdaptInstructions(raw string) string {
	return raw
}
