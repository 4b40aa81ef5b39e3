package cliptl

import "testing"

func TestNormalizeLang(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh_tw", "zh-TW"},
		{"zh-TW", "zh-TW"},
		{"EN", "en"},
		{" ja ", "ja"},
		{"auto", "auto"},
		{"AUTO", "auto"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := NormalizeLang(tt.code); got != tt.expected {
				t.Errorf("NormalizeLang(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestBaseLang(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh-TW", "zh"},
		{"en_US", "en"},
		{"ar", "ar"},
		{"auto", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := BaseLang(tt.code); got != tt.expected {
				t.Errorf("BaseLang(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestSameLanguage(t *testing.T) {
	tests := []struct {
		source, target string
		expected       bool
	}{
		{"en", "en", true},
		{"en", "EN", true},
		{"zh_TW", "zh-TW", true},
		{"zh", "zh-TW", false},
		{"en", "ja", false},
		{"auto", "auto", false},
		{"", "en", false},
	}

	for _, tt := range tests {
		t.Run(tt.source+"->"+tt.target, func(t *testing.T) {
			if got := SameLanguage(tt.source, tt.target); got != tt.expected {
				t.Errorf("SameLanguage(%q, %q) = %v, want %v", tt.source, tt.target, got, tt.expected)
			}
		})
	}
}

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"zh-TW", "Chinese (Traditional)"},
		{"zh_tw", "Chinese (Traditional)"}, // normalised first
		{"ja", "Japanese"},
		{"nl", "Dutch"}, // not in the default table
		{"!!", "!!"},    // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetLanguageName(tt.code); got != tt.expected {
				t.Errorf("GetLanguageName(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestGetNativeName(t *testing.T) {
	if got := GetNativeName("ja"); got != "日本語" {
		t.Errorf("GetNativeName(ja) = %q", got)
	}
	if got := GetNativeName("ko"); got != "한국어" {
		t.Errorf("GetNativeName(ko) = %q", got)
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ar", "rtl"},
		{"ar-SA", "rtl"},
		{"he_IL", "rtl"},
		{"fa", "rtl"},
		{"en", "ltr"},
		{"zh-TW", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetDirection(tt.code); got != tt.expected {
				t.Errorf("GetDirection(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestDefaultLanguages(t *testing.T) {
	langs := DefaultLanguages()
	if len(langs) != 15 {
		t.Fatalf("expected 15 default languages, got %d", len(langs))
	}

	for i := 1; i < len(langs); i++ {
		if langs[i-1].Name > langs[i].Name {
			t.Errorf("languages not sorted: %q before %q", langs[i-1].Name, langs[i].Name)
		}
	}

	rtl := 0
	for _, l := range langs {
		if !l.Enabled {
			t.Errorf("%s should be enabled by default", l.Code)
		}
		if l.RTL {
			rtl++
			if l.Code != "ar" {
				t.Errorf("unexpected RTL language %s", l.Code)
			}
		}
	}
	if rtl != 1 {
		t.Errorf("expected exactly one RTL language, got %d", rtl)
	}

	// Callers get a copy
	langs[0].Name = "changed"
	if DefaultLanguages()[0].Name == "changed" {
		t.Error("DefaultLanguages should return a copy")
	}
}
