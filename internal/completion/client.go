package completion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"quizolute/internal/apperrors"
)

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

var errNoChoices = errors.New("model returned no choices")

// ChatCompleter is the part of the go-openai client the completion client needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Message is a single chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Options configures model selection and sampling.
type Options struct {
	// Models is the ordered candidate list: primary first, then fallbacks.
	Models      []string
	VisionModel string
	MaxTokens   int
	Temperature float32
}

// Client calls a hosted chat-completion endpoint, walking an ordered list of
// models until one of them answers.
type Client struct {
	api         ChatCompleter
	models      []string
	vision      string
	maxTokens   int
	temperature float32
	log         *zap.Logger
}

// New builds a client against an OpenAI-compatible endpoint such as the Hugging Face router.
func New(token, baseURL string, opts Options, log *zap.Logger) *Client {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return NewWithAPI(openai.NewClientWithConfig(cfg), opts, log)
}

// NewWithAPI builds a client over an existing ChatCompleter.
func NewWithAPI(api ChatCompleter, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	return &Client{
		api:         api,
		models:      append([]string(nil), opts.Models...),
		vision:      opts.VisionModel,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		log:         log,
	}
}

// Models returns the ordered candidate list.
func (c *Client) Models() []string {
	return append([]string(nil), c.models...)
}

// PrimaryModel returns the first candidate, or "" when none is configured.
func (c *Client) PrimaryModel() string {
	if len(c.models) == 0 {
		return ""
	}
	return c.models[0]
}

// VisionModel returns the model used for image transcription.
func (c *Client) VisionModel() string {
	return c.vision
}

// Complete sends a system instruction and a single user message.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.CompleteMessages(ctx, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	})
}

// CompleteMessages sends a full message list. Each model is tried once, in
// order; the first success wins. When every model fails the returned error
// wraps apperrors.ErrGeneration and carries the last model's failure.
func (c *Client) CompleteMessages(ctx context.Context, messages []Message) (string, error) {
	if len(c.models) == 0 {
		return "", fmt.Errorf("%w: no models configured", apperrors.ErrGeneration)
	}

	chat := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chat = append(chat, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	var lastErr error
	for i, model := range c.models {
		if i > 0 {
			c.log.Info("trying fallback model", zap.String("model", model), zap.Int("attempt", i+1))
		}
		c.log.Info("using model", zap.String("model", model), zap.Int("messages", len(chat)))

		text, err := c.attempt(ctx, model, chat)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.log.Warn("model failed", zap.String("model", model), zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrGeneration, lastErr.Error())
}

func (c *Client) attempt(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s: %w", model, errNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

// Describe asks the vision model to transcribe or describe an image. It is a
// single attempt; failures wrap apperrors.ErrVision.
func (c *Client) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if c.vision == "" {
		return "", fmt.Errorf("%w: no vision model configured", apperrors.ErrVision)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	dataURI := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	c.log.Info("using vision model", zap.String("model", c.vision), zap.Int("bytes", len(image)))
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.vision,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURI,
						},
					},
				},
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		c.log.Error("vision request failed", zap.String("model", c.vision), zap.Error(err))
		return "", fmt.Errorf("%w: %s", apperrors.ErrVision, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s", apperrors.ErrVision, errNoChoices.Error())
	}
	return resp.Choices[0].Message.Content, nil
}
