package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaguanLabs/cliptl"
)

func cloudServer(t *testing.T, handler http.HandlerFunc) *CloudTranslate {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCloudTranslate(CloudConfig{APIKey: "key-123", Endpoint: srv.URL + "/language/translate/v2"})
}

func TestCloudTranslate_Translate(t *testing.T) {
	c := cloudServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/language/translate/v2" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		f := r.PostForm
		if f.Get("key") != "key-123" || f.Get("q") != "Hello" || f.Get("target") != "zh-TW" || f.Get("format") != "text" {
			t.Errorf("unexpected form %v", f)
		}
		if _, ok := f["source"]; ok {
			t.Error("auto source should be omitted")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"你好 &amp; 再見","detectedSourceLanguage":"en"}]}}`))
	})

	out, err := c.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: cliptl.AutoLang, TargetLang: "zh-TW"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "你好 & 再見" {
		t.Errorf("Expected unescaped translation, got %q", out)
	}
}

func TestCloudTranslate_ErrorBody(t *testing.T) {
	c := cloudServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	})

	_, err := c.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"})
	if cliptl.KindOf(err) != cliptl.KindAuth {
		t.Fatalf("Expected auth error, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "API key not valid") {
		t.Errorf("error should carry the API message, got %q", got)
	}
}

func TestCloudTranslate_MissingKey(t *testing.T) {
	c := NewCloudTranslate(CloudConfig{})

	if c.Configured() {
		t.Error("provider without key should not be configured")
	}
	_, err := c.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "es"})
	if cliptl.KindOf(err) != cliptl.KindAuth {
		t.Errorf("Expected auth error, got %v", err)
	}
}

func TestCloudTranslate_DetectLanguage(t *testing.T) {
	c := cloudServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/language/translate/v2/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"detections":[[{"language":"ja","confidence":0.98}]]}}`))
	})

	lang, err := c.DetectLanguage(context.Background(), "こんにちは")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if lang != "ja" {
		t.Errorf("Expected 'ja', got %q", lang)
	}
}

func TestCloudTranslate_EmptyTranslations(t *testing.T) {
	c := cloudServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"translations":[]}}`))
	})

	_, err := c.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"})
	if cliptl.KindOf(err) != cliptl.KindEmptyResult {
		t.Errorf("Expected empty result error, got %v", err)
	}
}
