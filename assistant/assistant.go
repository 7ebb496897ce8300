package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Gateway is the single seam to the generative model. One outbound call per
// Ask, no retry, no caching; both are the caller's business.
type Gateway interface {
	Ask(ctx context.Context, conv *Conversation) (json.RawMessage, error)
	AskLong(ctx context.Context, conv *Conversation, maxTokens int) (json.RawMessage, error)
}

// Assistant implements Gateway on top of the OpenAI chat completions API
// with JSON-schema constrained responses.
type Assistant struct {
	client openai.Client
	model  string
}

func New() *Assistant {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Assistant{
		client: openai.NewClient(option.WithAPIKey(os.Getenv("OPENAI_API_KEY"))),
		model:  model,
	}
}

func (a *Assistant) Ask(ctx context.Context, conv *Conversation) (json.RawMessage, error) {
	return a.ask(ctx, conv, 0)
}

// AskLong raises the completion budget for large structured payloads such as
// multi-day itineraries.
func (a *Assistant) AskLong(ctx context.Context, conv *Conversation, maxTokens int) (json.RawMessage, error) {
	return a.ask(ctx, conv, maxTokens)
}

func (a *Assistant) ask(ctx context.Context, conv *Conversation, maxTokens int) (json.RawMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(a.model),
		Messages: toUnionMessages(conv.Messages),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   conv.Schema.Name,
					Schema: conv.Schema.Definition,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("assistant ask: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("assistant ask: empty completion")
	}

	content := completion.Choices[0].Message.Content
	log.Printf("[assistant] answered %d bytes for schema %s", len(content), conv.Schema.Name)
	return json.RawMessage(content), nil
}

func toUnionMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
