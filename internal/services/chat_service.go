package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"dayflow/internal/models"
)

var chatHTTPClient = &http.Client{
	Timeout: 120 * time.Second,
}

// ChatService performs chat completions against the configured
// OpenAI-compatible provider. It is the agent loop's Completer.
type ChatService struct {
	providers *ProviderService
}

// NewChatService wires the completion client.
func NewChatService(providers *ProviderService) *ChatService {
	return &ChatService{providers: providers}
}

type completionRequest struct {
	Model    string                   `json:"model"`
	Messages []models.ChatMessage     `json:"messages"`
	Tools    []map[string]interface{} `json:"tools,omitempty"`
	Stream   bool                     `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []models.ToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one chat-completions request and returns the assistant
// text and any requested tool calls.
func (s *ChatService) Complete(ctx context.Context, messages []models.ChatMessage, toolDefs []map[string]interface{}) (string, []models.ToolCall, error) {
	provider, err := s.providers.Default()
	if err != nil {
		return "", nil, err
	}

	body := completionRequest{
		Model:    provider.Model,
		Messages: messages,
		Stream:   false,
	}
	if len(toolDefs) > 0 {
		body.Tools = toolDefs
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}

	url := provider.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}

	start := time.Now()
	resp, err := chatHTTPClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("provider %s unreachable: %w", provider.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", nil, fmt.Errorf("provider %s returned status %d: %s", provider.Name, resp.StatusCode, string(errBody))
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", nil, fmt.Errorf("provider %s returned no choices", provider.Name)
	}

	choice := result.Choices[0]
	if result.Usage != nil {
		log.Printf("💬 [CHAT] %s/%s tokens: %d prompt / %d completion (latency %dms)",
			provider.Name, provider.Model, result.Usage.PromptTokens, result.Usage.CompletionTokens,
			time.Since(start).Milliseconds())
	}
	return choice.Message.Content, choice.Message.ToolCalls, nil
}
