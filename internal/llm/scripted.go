package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Reply is one scripted answer.
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration // simulated latency; subject to the invocation timeout
}

// ScriptedGenerator replays canned replies in order and records every prompt.
// Once the script is exhausted it fails with ErrProcess.
type ScriptedGenerator struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
}

// NewScripted creates a generator that answers with replies in order.
func NewScripted(replies ...Reply) *ScriptedGenerator {
	return &ScriptedGenerator{replies: replies}
}

// Invoke returns the next reply.
func (g *ScriptedGenerator) Invoke(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	if len(g.replies) == 0 {
		g.mu.Unlock()
		return "", &InvocationError{Provider: "scripted", Kind: ErrProcess, Err: errors.New("script exhausted")}
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	g.mu.Unlock()

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if reply.Delay > 0 {
		timer := time.NewTimer(reply.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", &InvocationError{Provider: "scripted", Kind: ErrTimeout, Err: ctx.Err()}
		}
	}

	if reply.Err != nil {
		return "", reply.Err
	}
	return checkOutput("scripted", reply.Text)
}

// Prompts returns every prompt received so far.
func (g *ScriptedGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// Calls returns the number of invocations.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}
