package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/cliptl"
)

func TestGoogleLang(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "auto"},
		{"auto", "auto"},
		{"zh-TW", "zh-TW"},
		{"zh_tw", "zh-TW"},
		{"zh-Hant", "zh-TW"},
		{"zh", "zh-CN"},
		{"zh-CN", "zh-CN"},
		{"pt-BR", "pt"},
		{"EN", "en"},
	}

	for _, tt := range tests {
		if got := googleLang(tt.in); got != tt.want {
			t.Errorf("googleLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseGoogleResponse(t *testing.T) {
	body := `[[["Hola ","Hello ",null,null,10],["mundo","world",null,null,10]],null,"en",null,null,null,1]`

	text, detected, err := parseGoogleResponse([]byte(body))
	if err != nil {
		t.Fatalf("parseGoogleResponse failed: %v", err)
	}
	if text != "Hola mundo" {
		t.Errorf("Expected 'Hola mundo', got %q", text)
	}
	if detected != "en" {
		t.Errorf("Expected detected 'en', got %q", detected)
	}
}

func TestParseGoogleResponse_Empty(t *testing.T) {
	text, detected, err := parseGoogleResponse([]byte(`[null,null,null]`))
	if err != nil {
		t.Fatalf("parseGoogleResponse failed: %v", err)
	}
	if text != "" || detected != "" {
		t.Errorf("Expected empty result, got %q / %q", text, detected)
	}

	if _, _, err := parseGoogleResponse([]byte(`<html>`)); err == nil {
		t.Error("Expected error for non-JSON body")
	}
}

func TestGoogle_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "en" || q.Get("tl") != "zh-TW" {
			t.Errorf("unexpected query %v", q)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if r.PostForm.Get("q") != "Hello" {
			t.Errorf("unexpected text %q", r.PostForm.Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["你好","Hello",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogle(GoogleConfig{Endpoint: srv.URL})
	out, err := g.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "zh-TW"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "你好" {
		t.Errorf("Expected '你好', got %q", out)
	}
}

func TestGoogle_DetectLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sl") != "auto" {
			t.Errorf("detection should use sl=auto, got %q", r.URL.Query().Get("sl"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["Hello","Bonjour",null,null,10]],null,"fr"]`))
	}))
	defer srv.Close()

	g := NewGoogle(GoogleConfig{Endpoint: srv.URL})
	lang, err := g.DetectLanguage(context.Background(), "Bonjour")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if lang != "fr" {
		t.Errorf("Expected 'fr', got %q", lang)
	}
}

func TestGoogle_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   cliptl.ErrorKind
	}{
		{http.StatusTooManyRequests, cliptl.KindTransient},
		{http.StatusServiceUnavailable, cliptl.KindTransient},
		{http.StatusForbidden, cliptl.KindAuth},
		{http.StatusBadRequest, cliptl.KindUnsupported},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		g := NewGoogle(GoogleConfig{Endpoint: srv.URL})
		_, err := g.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"})
		if got := cliptl.KindOf(err); got != tt.want {
			t.Errorf("status %d: kind = %v, want %v (%v)", tt.status, got, tt.want, err)
		}
		srv.Close()
	}
}

func TestGoogle_UnsupportedPairSkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	g := NewGoogle(GoogleConfig{Endpoint: srv.URL})
	_, err := g.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "tlh"})
	if cliptl.KindOf(err) != cliptl.KindUnsupported {
		t.Errorf("Expected unsupported, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no network call, got %d", calls)
	}
}

func TestGoogle_Capabilities(t *testing.T) {
	g := NewGoogle(GoogleConfig{})
	caps := g.Capabilities()

	if !caps.Has(cliptl.CapTranslate) || !caps.Has(cliptl.CapDetectLanguage) || !caps.Has(cliptl.CapListen) {
		t.Errorf("unexpected capabilities %v", caps)
	}
	if caps.Has(cliptl.CapDictionary) {
		t.Error("Google should not report dictionary support")
	}
}
