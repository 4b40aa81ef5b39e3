package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/cliptl"
)

// OpenAIProvider translates with any OpenAI-compatible chat completion API,
// including self-hosted models behind a custom base URL.
type OpenAIProvider struct {
	client       *openai.Client
	model        string
	temperature  float32
	systemPrompt string
	configured   bool
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string  // API key (optional for self-hosted endpoints)
	Model        string  // Model to use (default: "gpt-4o-mini")
	Temperature  float32 // Temperature for generation (default: 0.3)
	BaseURL      string  // Custom base URL (optional)
	SystemPrompt string  // Instructions prepended to every request (optional)
}

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		temperature:  temperature,
		systemPrompt: strings.TrimSpace(cfg.SystemPrompt),
		// A custom endpoint may not need a key
		configured: cfg.APIKey != "" || cfg.BaseURL != "",
	}
}

// ID returns "openai".
func (p *OpenAIProvider) ID() string { return IDOpenAI }

// Name returns the display name.
func (p *OpenAIProvider) Name() string { return "Custom LLM (" + p.model + ")" }

// Capabilities reports translate only.
func (p *OpenAIProvider) Capabilities() cliptl.Capability { return cliptl.CapTranslate }

// Languages returns nil: a chat model accepts any language.
func (p *OpenAIProvider) Languages() LanguageSet { return nil }

// Configured reports whether a key or a custom endpoint is set.
func (p *OpenAIProvider) Configured() bool { return p.configured }

// Translate translates req.Text with a single chat completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if !p.configured {
		return "", &cliptl.ProviderError{Provider: IDOpenAI, Kind: cliptl.KindAuth, Message: "API key or base URL not set"}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &cliptl.ProviderError{
			Provider:  IDOpenAI,
			Kind:      cliptl.KindEmptyResult,
			Message:   "no response from model",
			Retryable: true,
		}
	}

	return cleanCompletion(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	targetName := cliptl.GetLanguageName(req.TargetLang)

	prompt := p.systemPrompt
	if prompt == "" {
		prompt = fmt.Sprintf("You are an expert native translator. You translate text to %s with the fluency of a highly educated native speaker.", targetName)
	}

	prompt += "\n\n# Task\n"
	if req.SourceLang != "" && req.SourceLang != cliptl.AutoLang {
		prompt += fmt.Sprintf("Translate the user's text from %s into %s.", cliptl.GetLanguageName(req.SourceLang), targetName)
	} else {
		prompt += fmt.Sprintf("Translate the user's text into %s.", targetName)
	}

	if cliptl.IsRTL(req.TargetLang) {
		prompt += fmt.Sprintf("\n- %s is written right to left; keep punctuation in its natural position.", targetName)
	}

	prompt += `
- Preserve line breaks, URLs, code and placeholders exactly.
- Reply with the translation only. No quotes, notes or explanations.`

	return prompt
}

// cleanCompletion strips wrappers models like to add around a bare answer.
func cleanCompletion(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSpace(s[3 : len(s)-3])
	}
	for _, label := range []string{"Translation:", "translation:"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, label))
	}
	return s
}

// classifyOpenAIError maps client errors onto the error taxonomy.
func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	kind := cliptl.KindTransient
	retryable := true
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind, retryable = cliptl.KindAuth, false
	case status == http.StatusNotFound:
		// Unknown model
		kind, retryable = cliptl.KindAuth, false
	case status == http.StatusBadRequest:
		kind, retryable = cliptl.KindUnsupported, false
	case status == 0:
		retryable = isRetryableError(err)
	}

	return &cliptl.ProviderError{
		Provider:  IDOpenAI,
		Kind:      kind,
		Message:   "chat completion failed",
		Cause:     err,
		Retryable: retryable,
	}
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
