package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client is the assistant service consumed by the bot handlers. A thread is a
// provider-side conversation handle; Ask continues it with one user message
// and returns the assistant's reply.
type Client interface {
	CreateThread(ctx context.Context) (string, error)
	Ask(ctx context.Context, assistantID, threadID, userMessage string) (string, error)
}

// OpenAIClient drives the OpenAI Assistants API: append a message to the
// thread, start a run with the mode's assistant, poll until it finishes and
// fetch the run's reply.
type OpenAIClient struct {
	client       *openai.Client
	logger       *zap.Logger
	pollInterval time.Duration
	runTimeout   time.Duration
}

func NewOpenAIClient(apiKey string, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:       openai.NewClient(apiKey),
		logger:       logger,
		pollInterval: 800 * time.Millisecond,
		runTimeout:   90 * time.Second,
	}
}

func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

func (c *OpenAIClient) Ask(ctx context.Context, assistantID, threadID, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	if _, err := c.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	}); err != nil {
		return "", fmt.Errorf("failed to add message to thread: %w", err)
	}

	run, err := c.client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}

	if err := c.waitRun(ctx, threadID, run.ID); err != nil {
		return "", err
	}

	return c.lastReply(ctx, threadID, run.ID)
}

func (c *OpenAIClient) waitRun(ctx context.Context, threadID, runID string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		run, err := c.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("failed to poll run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusCompleted:
			return nil
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusRequiresAction:
			return fmt.Errorf("run ended with status %s", run.Status)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("run did not finish: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *OpenAIClient) lastReply(ctx context.Context, threadID, runID string) (string, error) {
	limit := 1
	order := "desc"
	msgs, err := c.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return "", fmt.Errorf("failed to list run messages: %w", err)
	}
	if len(msgs.Messages) == 0 {
		return "", fmt.Errorf("run produced no messages")
	}

	for _, part := range msgs.Messages[0].Content {
		if part.Text != nil {
			return part.Text.Value, nil
		}
	}
	return "", fmt.Errorf("run reply has no text content")
}
