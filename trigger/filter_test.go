package trigger

import (
	"strings"
	"sync"
	"testing"
)

func TestFilter_Check(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		source Source
		want   Reason
	}{
		{"sentence", "Hello world, how are you?", Passive, Accepted},
		{"blank", "   \n\t", Passive, Empty},
		{"single rune", "a", Manual, TooShort},
		{"single CJK rune", "字", Passive, TooShort},
		{"two CJK runes", "你好", Passive, Accepted},
		{"digits", "1234567", Passive, Digits},
		{"digits manual", "2024", Manual, Digits},
		{"http", "http://example.com/page", Passive, URL},
		{"https upper", "HTTPS://EXAMPLE.COM", Passive, URL},
		{"www", "www.example.com", Manual, URL},
		{"ftp", "ftp://files.example.com", Passive, URL},
		{"unix path", "/usr/local/bin", Passive, Path},
		{"drive path", `C:\Users\me\file.txt`, Passive, Path},
		{"drive path slash", "d:/projects", Manual, Path},
		{"unc path", `\\server\share`, Passive, Path},
		{"quoted drive path", `"C:\Program Files\App\app.exe"`, Passive, Path},
		{"quoted unix path", `'/etc/hosts'`, Passive, Path},
		{"drive path in sentence", `see C:\Users\me\report.docx`, Passive, Path},
		{"drive path after label", `file: D:\data\notes.txt`, Manual, Path},
		{"backslash without drive", `use \n for newlines`, Passive, Accepted},
		{"single word passive", "hello", Passive, SingleWord},
		{"single word manual", "hello", Manual, Accepted},
		{"long single word", "internationalization", Passive, Accepted},
		{"word with accent", "café", Passive, Accepted},
		{"two words", "hello there", Passive, Accepted},
		{"too long passive", strings.Repeat("word ", 101), Passive, TooLong},
		{"long manual", strings.Repeat("word ", 101), Manual, Accepted},
		{"exactly max passive", strings.Repeat("ab ", 166) + "ab", Passive, Accepted},
		{"colon not drive", "Note: see below", Passive, Accepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter()
			if _, got := f.Check(tt.text, tt.source); got != tt.want {
				t.Errorf("Check(%q, %v) = %v, want %v", tt.text, tt.source, got, tt.want)
			}
		})
	}
}

func TestFilter_TrimsCandidate(t *testing.T) {
	f := NewFilter()
	text, reason := f.Check("  Good morning \n", Passive)
	if reason != Accepted || text != "Good morning" {
		t.Errorf("Check = %q, %v", text, reason)
	}
}

func TestFilter_Memo(t *testing.T) {
	f := NewFilter()

	if _, r := f.Check("Good morning", Passive); r != Accepted {
		t.Fatalf("first check = %v", r)
	}
	if _, r := f.Check("Good morning  ", Passive); r != Unchanged {
		t.Errorf("repeat = %v, want unchanged", r)
	}

	// Rejected candidates are remembered too
	if _, r := f.Check("12345", Passive); r != Digits {
		t.Fatalf("digits = %v", r)
	}
	if _, r := f.Check("12345", Passive); r != Unchanged {
		t.Errorf("repeated rejection = %v, want unchanged", r)
	}

	// Blank text does not touch the memo
	f.Check("", Passive)
	if _, r := f.Check("12345", Passive); r != Unchanged {
		t.Errorf("after blank = %v, want unchanged", r)
	}

	if _, r := f.Check("Good morning", Passive); r != Accepted {
		t.Errorf("earlier text after a different one = %v, want accepted", r)
	}

	f.Reset()
	if _, r := f.Check("Good morning", Passive); r != Accepted {
		t.Errorf("after reset = %v, want accepted", r)
	}
}

func TestFilter_Concurrent(t *testing.T) {
	f := NewFilter()
	var wg sync.WaitGroup
	accepted := make(chan struct{}, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, r := f.Check("same sentence here", Passive); r == Accepted {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	if n := len(accepted); n != 1 {
		t.Errorf("accepted %d times, want 1", n)
	}
}

func TestReason_String(t *testing.T) {
	if SingleWord.String() != "single_word" {
		t.Errorf("got %q", SingleWord.String())
	}
	if Reason(99).String() != "unknown" {
		t.Errorf("got %q", Reason(99).String())
	}
}
