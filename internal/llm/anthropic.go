package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mvp-joe/project-scribe/internal/config"
)

// DefaultAnthropicModel is used when llm.model is empty.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewAnthropicGenerator creates a generator. An empty api_key falls back to
// ANTHROPIC_API_KEY through the SDK's defaults.
func NewAnthropicGenerator(cfg config.LLMConfig, logger *slog.Logger) *AnthropicGenerator {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// Rounds are never retried; a failed prompt goes to the fallback.
	opts = append(opts, option.WithMaxRetries(0))

	client := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.Default().LLM.MaxTokens
	}

	return &AnthropicGenerator{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
		logger:    orDiscard(logger),
	}
}

// Invoke sends prompt as a single user message.
func (g *AnthropicGenerator) Invoke(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	start := time.Now()
	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(ctx, "anthropic", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		switch blk := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(blk.Text)
		}
	}

	g.logger.Debug("anthropic generation complete",
		"model", g.model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"elapsed", time.Since(start))

	return checkOutput("anthropic", b.String())
}
