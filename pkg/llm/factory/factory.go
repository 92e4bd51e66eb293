package factory

import (
	"fmt"
	"time"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/llm/huggingface"
	"docqa-be/pkg/llm/ollama"
)

// Params selects and configures an LLM backend.
type Params struct {
	Provider string // "ollama" | "huggingface"
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "ollama", "":
		return ollama.NewOllamaProvider(p.BaseURL, p.Model, p.Timeout), nil
	case "huggingface", "openai":
		if p.Model == "" {
			return nil, fmt.Errorf("LLM_MODEL is required for provider %s", p.Provider)
		}
		return huggingface.NewHuggingFaceProvider(p.APIKey, p.BaseURL, p.Model, p.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
