package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFence  = regexp.MustCompile("```(?:json)?\\s*")
	jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractJSON снимает ```json обёртку и лишний текст вокруг объекта, если
// модель их добавила.
func ExtractJSON(content string) []byte {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed)
	}
	stripped := codeFence.ReplaceAllString(trimmed, "")
	if match := jsonObject.FindString(stripped); match != "" {
		return []byte(match)
	}
	return []byte(trimmed)
}
