package cliptl

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashRecord computes the translation memory key for a text and language pair.
// Fields are NUL-separated so ("ab", "c") and ("a", "bc") never collide.
func HashRecord(text, sourceLang, targetLang string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(sourceLang))
	h.Write([]byte{0})
	h.Write([]byte(targetLang))
	return hex.EncodeToString(h.Sum(nil))
}
