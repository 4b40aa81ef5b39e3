package provider

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/cliptl"
)

// DefaultCloudEndpoint is the Google Cloud Translation v2 REST endpoint.
const DefaultCloudEndpoint = "https://translation.googleapis.com/language/translate/v2"

// CloudTranslate uses Google Cloud Translation v2 with an API key.
type CloudTranslate struct {
	http     *resty.Client
	apiKey   string
	endpoint string
	langs    LanguageSet
}

// CloudConfig holds configuration for the Cloud Translation provider.
type CloudConfig struct {
	APIKey   string        // API key (required)
	Endpoint string        // Endpoint URL (default: DefaultCloudEndpoint)
	Timeout  time.Duration // HTTP timeout (default: 15s)
}

// NewCloudTranslate creates a Cloud Translation provider.
func NewCloudTranslate(cfg CloudConfig) *CloudTranslate {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultCloudEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = cliptl.DefaultRequestTimeout
	}

	return &CloudTranslate{
		http:     resty.New().SetTimeout(timeout).SetHeader("User-Agent", cliptl.UserAgent()),
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		langs:    NewLanguageSet(googleLanguages...),
	}
}

// ID returns "cloud".
func (c *CloudTranslate) ID() string { return IDCloud }

// Name returns the display name.
func (c *CloudTranslate) Name() string { return "Google Cloud Translation" }

// Capabilities reports translate and detect.
func (c *CloudTranslate) Capabilities() cliptl.Capability {
	return cliptl.CapTranslate | cliptl.CapDetectLanguage
}

// Languages returns the supported language codes.
func (c *CloudTranslate) Languages() LanguageSet { return c.langs }

// Configured reports whether an API key is set.
func (c *CloudTranslate) Configured() bool { return c.apiKey != "" }

type cloudErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Translate translates req.Text.
func (c *CloudTranslate) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}
	if err := checkPair(IDCloud, c.langs, req, googleLang); err != nil {
		return "", err
	}

	form := map[string]string{
		"key":    c.apiKey,
		"q":      req.Text,
		"target": googleLang(req.TargetLang),
		"format": "text",
	}
	if src := googleLang(req.SourceLang); src != cliptl.AutoLang {
		form["source"] = src
	}

	var out struct {
		Data struct {
			Translations []struct {
				TranslatedText         string `json:"translatedText"`
				DetectedSourceLanguage string `json:"detectedSourceLanguage"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := c.post(ctx, c.endpoint, form, &out); err != nil {
		return "", err
	}
	if len(out.Data.Translations) == 0 {
		return "", &cliptl.ProviderError{Provider: IDCloud, Kind: cliptl.KindEmptyResult, Message: "no translations returned"}
	}
	// format=text should return plain text, but entities still slip through
	return html.UnescapeString(out.Data.Translations[0].TranslatedText), nil
}

// DetectLanguage asks the detect endpoint which language text is in.
func (c *CloudTranslate) DetectLanguage(ctx context.Context, text string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			Detections [][]struct {
				Language   string  `json:"language"`
				Confidence float64 `json:"confidence"`
			} `json:"detections"`
		} `json:"data"`
	}
	if err := c.post(ctx, c.endpoint+"/detect", map[string]string{"key": c.apiKey, "q": text}, &out); err != nil {
		return "", err
	}
	if len(out.Data.Detections) == 0 || len(out.Data.Detections[0]) == 0 {
		return "", &cliptl.ProviderError{Provider: IDCloud, Kind: cliptl.KindEmptyResult, Message: "no language detected"}
	}
	return cliptl.NormalizeLang(out.Data.Detections[0][0].Language), nil
}

func (c *CloudTranslate) requireKey() error {
	if c.apiKey == "" {
		return &cliptl.ProviderError{Provider: IDCloud, Kind: cliptl.KindAuth, Message: "API key not set"}
	}
	return nil
}

func (c *CloudTranslate) post(ctx context.Context, url string, form map[string]string, result any) error {
	var apiErr cloudErrorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		SetError(&apiErr).
		Post(url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transportError(IDCloud, err)
	}
	if resp.IsError() {
		body := apiErr.Error.Message
		if body == "" {
			body = resp.String()
		}
		return statusError(IDCloud, resp.StatusCode(), body)
	}
	return nil
}

var (
	_ Provider                = (*CloudTranslate)(nil)
	_ cliptl.LanguageDetector = (*CloudTranslate)(nil)
)
