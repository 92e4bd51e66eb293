package huggingface

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

	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag/parser"
)

// DefaultBaseURL is the OpenAI-compatible router endpoint.
const DefaultBaseURL = "https://router.huggingface.co/v1"

const defaultMaxTokens = 1024

var errNoChoices = errors.New("huggingface: response has no choices")

// HuggingFaceProvider talks to any OpenAI-compatible chat completions API.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type completionMessage struct {
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string, timeout time.Duration) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Chat returns the first choice. Reasoning models that report their chain
// of thought in reasoning_content get it wrapped in <think> tags.
func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{Temperature: -1, MaxTokens: defaultMaxTokens, Model: p.model}
	for _, o := range options {
		o(opts)
	}

	req := completionRequest{
		Model:     opts.Model,
		Messages:  normalizeRoles(history),
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature >= 0 {
		t := opts.Temperature
		req.Temperature = &t
	}

	res, err := p.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errNoChoices
	}

	msg := res.Choices[0].Message
	return parser.WrapReasoning(msg.ReasoningContent, msg.Content), nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func normalizeRoles(history []llm.Message) []llm.Message {
	out := make([]llm.Message, len(history))
	for i, m := range history {
		out[i] = m
		if m.Role == "model" {
			out[i].Role = llm.RoleAssistant
		}
	}
	return out
}

func (p *HuggingFaceProvider) complete(ctx context.Context, body completionRequest) (*completionResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &llm.StatusError{Provider: "huggingface", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var res completionResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("huggingface api error: %s", res.Error.Message)
	}
	return &res, nil
}
