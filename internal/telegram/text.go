package telegram

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SanitizeInput заменяет любые пробельные символы (NBSP, табы, переводы
// строк) на обычный пробел и схлопывает повторы.
func SanitizeInput(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// fixEncoding repairs text that arrived as Windows-1251 bytes instead of UTF-8.
func fixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	decoder := charmap.Windows1251.NewDecoder()
	fixed, err := decoder.String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	// не получилось: выкидываем невалидные байты
	return strings.ToValidUTF8(s, "")
}

func cleanText(raw string) string {
	return SanitizeInput(fixEncoding(raw))
}
