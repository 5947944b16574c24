package llm

import (
	"encoding/json"
	"strings"
)

// StripFences убирает обрамление ```json ... ``` из ответа модели.
// Модели часто заворачивают JSON в кодовый блок несмотря на инструкции.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	if idx := strings.LastIndex(raw, "```"); idx != -1 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// ExtractJSONObject находит первый JSON-объект в тексте ответа модели.
// Сначала жадно берёт подстроку от первой "{" до последней "}", как это
// делают ответы с комментарием до/после объекта; если она не валидна,
// ищет первый сбалансированный по скобкам объект.
func ExtractJSONObject(raw string) (string, bool) {
	raw = StripFences(raw)
	i := strings.Index(raw, "{")
	if i < 0 {
		return "", false
	}
	if j := strings.LastIndex(raw, "}"); j > i {
		candidate := raw[i : j+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	// Жадный вариант не распарсился: после объекта мог идти текст со
	// скобками. Берём первый сбалансированный объект.
	depth := 0
	inString := false
	escaped := false
	for k := i; k < len(raw); k++ {
		c := raw[k]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := raw[i : k+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
