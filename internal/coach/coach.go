// Package coach turns a user's message plus recalled memory into one short
// strength-coach reply from an OpenAI-compatible chat endpoint.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	maxTokens   = 300
	temperature = 0.7

	// NoHistory replaces an empty memory context in the system prompt.
	NoHistory = "No workout history yet."
)

const systemPrompt = `You are a concise, knowledgeable strength coach. The user is
at the gym on their phone, so keep responses SHORT (2-3 sentences max unless they
ask for detail).

You have access to the user's workout history below. Reference specific numbers
(weights, sets, reps, PRs) when relevant. Be encouraging but data-driven.

If the user logs a workout, confirm what you recorded in one line. If they ask
a question, answer directly using their history.

MEMORY CONTEXT:
%s`

var ErrEmptyReply = errors.New("model returned no reply")

// SystemPrompt embeds memoryContext, or the fallback when it is empty.
func SystemPrompt(memoryContext string) string {
	if memoryContext == "" {
		memoryContext = NoHistory
	}
	return fmt.Sprintf(systemPrompt, memoryContext)
}

// Responder calls the chat completion endpoint.
type Responder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewResponder creates a Responder. Empty baseURL and model use the defaults.
func NewResponder(baseURL, apiKey, model string) *Responder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Responder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *Responder) Model() string { return r.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// buildMessages assembles system prompt, prior turns and the new message.
// history is expected to be already windowed by the caller.
func buildMessages(userMessage, memoryContext string, history []domain.ChatTurn) []chatMessage {
	msgs := make([]chatMessage, 0, len(history)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: SystemPrompt(memoryContext)})
	for _, turn := range history {
		msgs = append(msgs, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	msgs = append(msgs, chatMessage{Role: string(domain.ChatRoleUser), Content: userMessage})
	return msgs
}

// Respond returns exactly one assistant reply. There is no retry.
func (r *Responder) Respond(ctx context.Context, userMessage, memoryContext string, history []domain.ChatTurn) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       r.model,
		Messages:    buildMessages(userMessage, memoryContext, history),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ProviderError{Message: friendlyNetworkError(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: parseProviderError(resp.StatusCode, body)}
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
