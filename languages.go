package cliptl

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RTLLanguages contains base language codes written right to left.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// defaultLanguages seeds the language table and backs EnabledLanguages when
// the store has none.
var defaultLanguages = []LanguageEntry{
	{Code: "zh-CN", Name: "Chinese (Simplified)", NativeName: "简体中文", Enabled: true},
	{Code: "zh-TW", Name: "Chinese (Traditional)", NativeName: "繁體中文", Enabled: true},
	{Code: "en", Name: "English", NativeName: "English", Enabled: true},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Enabled: true},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Enabled: true},
	{Code: "es", Name: "Spanish", NativeName: "Español", Enabled: true},
	{Code: "fr", Name: "French", NativeName: "Français", Enabled: true},
	{Code: "de", Name: "German", NativeName: "Deutsch", Enabled: true},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Enabled: true},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Enabled: true},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Enabled: true},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Enabled: true, RTL: true},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Enabled: true},
	{Code: "th", Name: "Thai", NativeName: "ไทย", Enabled: true},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Enabled: true},
}

// DefaultLanguages returns a copy of the built-in language list sorted by display name.
func DefaultLanguages() []LanguageEntry {
	out := make([]LanguageEntry, len(defaultLanguages))
	copy(out, defaultLanguages)
	SortLanguages(out)
	return out
}

// SortLanguages orders entries by display name, then code.
func SortLanguages(entries []LanguageEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Code < entries[j].Code
	})
}

// NormalizeLang canonicalises a language code to BCP 47 form
// (e.g., "zh_tw" → "zh-TW", "EN" → "en"). AutoLang and unparseable codes
// are returned trimmed but otherwise unchanged.
func NormalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, AutoLang) {
		return strings.ToLower(code)
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// BaseLang returns the base language subtag (e.g., "zh" from "zh-TW").
func BaseLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, AutoLang) {
		return strings.ToLower(code)
	}
	tag, err := language.Parse(code)
	if err != nil {
		parts := strings.FieldsFunc(code, func(r rune) bool { return r == '-' || r == '_' })
		if len(parts) == 0 {
			return ""
		}
		return strings.ToLower(parts[0])
	}
	base, _ := tag.Base()
	return base.String()
}

// SameLanguage reports whether translating from source to target would be a no-op.
// Only identical canonical tags match: "zh" and "zh-TW" differ because the
// target selects a script.
func SameLanguage(source, target string) bool {
	s, t := NormalizeLang(source), NormalizeLang(target)
	if s == "" || t == "" || s == AutoLang || t == AutoLang {
		return false
	}
	return s == t
}

// GetLanguageName returns the English display name of a language code.
// Falls back to the code itself if it cannot be parsed.
func GetLanguageName(code string) string {
	norm := NormalizeLang(code)
	for _, l := range defaultLanguages {
		if l.Code == norm {
			return l.Name
		}
	}
	tag, err := language.Parse(norm)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// GetNativeName returns the name of a language in that language.
func GetNativeName(code string) string {
	norm := NormalizeLang(code)
	for _, l := range defaultLanguages {
		if l.Code == norm {
			return l.NativeName
		}
	}
	tag, err := language.Parse(norm)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[BaseLang(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}
