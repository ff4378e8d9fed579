package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/mvp-joe/project-scribe/internal/config"
)

// DefaultOpenAIModel is used when llm.model is empty.
const DefaultOpenAIModel = "gpt-4.1-mini"

// OpenAIGenerator calls the OpenAI Responses API.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewOpenAIGenerator creates a generator. An empty api_key falls back to
// OPENAI_API_KEY through the SDK's defaults.
func NewOpenAIGenerator(cfg config.LLMConfig, logger *slog.Logger) *OpenAIGenerator {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, option.WithMaxRetries(0))

	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.Default().LLM.MaxTokens
	}

	return &OpenAIGenerator{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
		logger:    orDiscard(logger),
	}
}

// Invoke sends the system framing and prompt as input messages.
func (g *OpenAIGenerator) Invoke(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(g.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(SystemPrompt, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		MaxOutputTokens: openai.Int(int64(g.maxTokens)),
	}

	start := time.Now()
	result, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", classify(ctx, "openai", err)
	}

	g.logger.Debug("openai generation complete",
		"model", g.model,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"elapsed", time.Since(start))

	return checkOutput("openai", result.OutputText())
}
