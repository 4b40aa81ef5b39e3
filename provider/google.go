package provider

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ZaguanLabs/cliptl"
)

// DefaultGoogleEndpoint is the keyless web translation endpoint.
const DefaultGoogleEndpoint = "https://translate.googleapis.com"

// Google translates through the free web endpoint used by browser extensions.
// It needs no key but may throttle heavy use.
type Google struct {
	http  *resty.Client
	langs LanguageSet
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	Endpoint string        // Base URL (default: DefaultGoogleEndpoint)
	Timeout  time.Duration // HTTP timeout (default: 15s)
}

// NewGoogle creates a Google provider.
func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = cliptl.DefaultRequestTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", cliptl.UserAgent())

	return &Google{http: c, langs: NewLanguageSet(googleLanguages...)}
}

// ID returns "google".
func (g *Google) ID() string { return IDGoogle }

// Name returns the display name.
func (g *Google) Name() string { return "Google Translate" }

// Capabilities reports translate, detect and listen.
func (g *Google) Capabilities() cliptl.Capability {
	return cliptl.CapTranslate | cliptl.CapDetectLanguage | cliptl.CapListen
}

// Languages returns the supported language codes.
func (g *Google) Languages() LanguageSet { return g.langs }

// Translate translates req.Text.
func (g *Google) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := checkPair(IDGoogle, g.langs, req, googleLang); err != nil {
		return "", err
	}

	text, _, err := g.call(ctx, req.Text, googleLang(req.SourceLang), googleLang(req.TargetLang))
	return text, err
}

// DetectLanguage asks the endpoint which language text is in.
func (g *Google) DetectLanguage(ctx context.Context, text string) (string, error) {
	_, detected, err := g.call(ctx, text, cliptl.AutoLang, "en")
	if err != nil {
		return "", err
	}
	if detected == "" {
		return "", &cliptl.ProviderError{Provider: IDGoogle, Kind: cliptl.KindEmptyResult, Message: "no language detected"}
	}
	return cliptl.NormalizeLang(detected), nil
}

func (g *Google) call(ctx context.Context, text, source, target string) (string, string, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     source,
			"tl":     target,
			"dt":     "t",
			"ie":     "UTF-8",
			"oe":     "UTF-8",
		}).
		SetFormData(map[string]string{"q": text}).
		Post("/translate_a/single")
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		return "", "", transportError(IDGoogle, err)
	}
	if resp.IsError() {
		return "", "", statusError(IDGoogle, resp.StatusCode(), resp.String())
	}

	translated, detected, err := parseGoogleResponse(resp.Body())
	if err != nil {
		return "", "", &cliptl.ProviderError{
			Provider: IDGoogle,
			Kind:     cliptl.KindTransient,
			Message:  "unexpected response format",
			Cause:    err,
		}
	}
	return translated, detected, nil
}

// parseGoogleResponse reads the nested array answer:
// [[["translated","source",...],...],null,"detected-lang",...].
func parseGoogleResponse(body []byte) (string, string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", "", err
	}
	if len(raw) == 0 {
		return "", "", nil
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", "", err
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(seg[0], &s); err == nil {
			b.WriteString(s)
		}
	}

	var detected string
	if len(raw) > 2 {
		// Absent or null when the endpoint had nothing to say
		_ = json.Unmarshal(raw[2], &detected)
	}

	return b.String(), detected, nil
}

var (
	_ Provider                = (*Google)(nil)
	_ cliptl.LanguageDetector = (*Google)(nil)
)
