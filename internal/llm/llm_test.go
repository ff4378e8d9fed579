package llm

// Test Plan for Generators:
// - New selects the implementation by provider and returns nil for "none"
// - New rejects unknown providers and a command provider without argv
// - InvocationError unwraps to its sentinel kind and its cause
// - ScriptedGenerator replays replies in order, records prompts, fails when exhausted
// - ScriptedGenerator delays longer than the timeout yield ErrTimeout
// - CommandGenerator echoes stdin, maps exit codes to ErrProcess,
//   blank output to ErrMalformedOutput, and slow processes to ErrTimeout

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	g, err := New(config.LLMConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, g)

	g, err = New(config.LLMConfig{Provider: "anthropic", APIKey: "test"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicGenerator{}, g)

	g, err = New(config.LLMConfig{Provider: "OpenAI", APIKey: "test"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, g)

	g, err = New(config.LLMConfig{Provider: "command", Command: []string{"cat"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CommandGenerator{}, g)

	g, err = New(config.LLMConfig{Provider: "command"}, nil)
	assert.ErrorIs(t, err, config.ErrEmptyCommand)
	assert.Nil(t, g)

	_, err = New(config.LLMConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidProvider)
}

func TestInvocationError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := error(&InvocationError{Provider: "openai", Kind: ErrProcess, Err: cause})

	assert.ErrorIs(t, err, ErrProcess)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "openai: generation process failed: connection reset", err.Error())

	var ie *InvocationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "openai", ie.Provider)
}

func TestScriptedGenerator(t *testing.T) {
	t.Parallel()

	g := NewScripted(
		Reply{Text: "first"},
		Reply{Err: &InvocationError{Provider: "scripted", Kind: ErrMalformedOutput}},
		Reply{Text: "   "},
	)
	ctx := context.Background()

	out, err := g.Invoke(ctx, "p1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = g.Invoke(ctx, "p2", time.Second)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = g.Invoke(ctx, "p3", time.Second)
	assert.ErrorIs(t, err, ErrMalformedOutput, "blank text is malformed")

	_, err = g.Invoke(ctx, "p4", time.Second)
	assert.ErrorIs(t, err, ErrProcess, "exhausted script")

	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, g.Prompts())
	assert.Equal(t, 4, g.Calls())
}

func TestScriptedGenerator_Timeout(t *testing.T) {
	t.Parallel()

	g := NewScripted(Reply{Text: "late", Delay: time.Second})

	start := time.Now()
	_, err := g.Invoke(context.Background(), "p", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestScriptedGenerator_Cancelled(t *testing.T) {
	t.Parallel()

	g := NewScripted(Reply{Text: "late", Delay: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Invoke(ctx, "p", time.Minute)
	assert.ErrorIs(t, err, ErrTimeout, "cancellation is treated like a timeout")
}

func TestCommandGenerator(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	tests := []struct {
		name    string
		argv    []string
		timeout time.Duration
		want    string
		wantErr error
	}{
		{"echoes stdin", []string{"cat"}, time.Second * 5, "# Doc", nil},
		{"non-zero exit", []string{"sh", "-c", "echo boom >&2; exit 3"}, time.Second * 5, "", ErrProcess},
		{"blank output", []string{"sh", "-c", "cat >/dev/null"}, time.Second * 5, "", ErrMalformedOutput},
		{"too slow", []string{"sh", "-c", "sleep 5"}, 50 * time.Millisecond, "", ErrTimeout},
		{"missing binary", []string{"scribe-no-such-binary"}, time.Second, "", ErrProcess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := NewCommandGenerator(tt.argv, nil)
			require.NoError(t, err)

			out, err := g.Invoke(context.Background(), "# Doc\n", tt.timeout)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
