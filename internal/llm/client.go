package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Message roles accepted by Complete.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Intents returned by ClassifyIntent.
const (
	IntentWorkoutPlan     = "request_workout_plan"
	IntentFitnessQuestion = "general_fitness_question"
	IntentOther           = "other"
)

// Message is a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the chat-completion dependency injected into the services.
// Tests substitute a fake; production uses OpenAIClient.
type Client interface {
	// Complete sends the message list and returns the assistant reply text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// ClassifyIntent classifies an assistant reply into one of the intent
	// constants. Best effort: callers treat an error as IntentOther.
	ClassifyIntent(ctx context.Context, assistantReply string) (string, error)
}

// OpenAIClient implements Client against an OpenAI-compatible API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a client for the given API key, model, and
// optional alternate base URL.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	chat, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return chat.Choices[0].Message.Content, nil
}

// ClassifyIntent implements Client. Max tokens and temperature are fixed
// so the label comes back bare and stable.
func (c *OpenAIClient) ClassifyIntent(ctx context.Context, assistantReply string) (string, error) {
	prompt := fmt.Sprintf(`Classify the following assistant message into one of these intents:
- request_workout_plan
- general_fitness_question
- other

Assistant Message: %q
Intent:`, assistantReply)

	chat, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(10),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("intent classification failed: %w", err)
	}
	if len(chat.Choices) == 0 {
		return IntentOther, nil
	}

	intent := strings.TrimSpace(chat.Choices[0].Message.Content)
	switch intent {
	case IntentWorkoutPlan, IntentFitnessQuestion, IntentOther:
		return intent, nil
	}
	return IntentOther, nil
}
