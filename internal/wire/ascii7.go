package wire

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// UnescapeASCII7 decodes \uXXXX escapes that servers at or above
// MinServerVerEncodeMsgASCII7 use for non-ASCII text. Malformed escapes are kept
// as-is.
func UnescapeASCII7(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, n := escapedRune(s[i:])
		if n == 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		if utf16.IsSurrogate(r) {
			if lo, m := escapedRune(s[i+n:]); m > 0 {
				if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
					b.WriteRune(pair)
					i += n + m
					continue
				}
			}
		}
		b.WriteRune(r)
		i += n
	}
	return b.String()
}

func escapedRune(s string) (rune, int) {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[2:6], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), 6
}
