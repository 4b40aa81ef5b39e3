package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaguanLabs/cliptl"
)

// MockProvider is a deterministic provider for tests and dry runs.
type MockProvider struct {
	mu sync.Mutex

	Translations map[string]string // Map of source text to translation
	Detections   map[string]string // Map of text to detected language
	Caps         cliptl.Capability // Capabilities to report
	Err          error             // Returned from every call when set
	Delay        time.Duration     // Simulated latency; honours cancellation
	CallCount    int               // Number of times Translate was called
	LastRequest  *TranslateRequest // Last request received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
			"Good night":  "Buenas noches",
		},
		Detections: map[string]string{},
		Caps:       cliptl.CapTranslate | cliptl.CapDetectLanguage,
	}
}

// ID returns "mock".
func (m *MockProvider) ID() string { return IDMock }

// Name returns the display name.
func (m *MockProvider) Name() string { return "Mock" }

// Capabilities returns Caps.
func (m *MockProvider) Capabilities() cliptl.Capability {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Caps
}

// Translate returns mock translations. Unknown text comes back bracketed with
// the target language.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastRequest = &req
	delay, err := m.Delay, m.Err
	translation, ok := m.Translations[req.Text]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// DetectLanguage returns the configured detection, or "en".
func (m *MockProvider) DetectLanguage(_ context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if lang, ok := m.Detections[text]; ok {
		return lang, nil
	}
	return "en", nil
}

// Calls returns the number of Translate calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Provider
var (
	_ Provider                = (*MockProvider)(nil)
	_ cliptl.LanguageDetector = (*MockProvider)(nil)
)
