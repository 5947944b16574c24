package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with spaces", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"no closing fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"empty", "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, StripFences(c.in))
		})
	}
}

func TestExtractJSONObject_Greedy(t *testing.T) {
	got, ok := ExtractJSONObject(`Вот результат: {"score": 5, "tags": ["a", "b"]} — готово.`)
	require.True(t, ok)
	assert.JSONEq(t, `{"score": 5, "tags": ["a", "b"]}`, got)
}

func TestExtractJSONObject_Fenced(t *testing.T) {
	got, ok := ExtractJSONObject("```json\n{\"verdict\": \"ок\"}\n```")
	require.True(t, ok)
	assert.JSONEq(t, `{"verdict": "ок"}`, got)
}

func TestExtractJSONObject_TrailingBraceInText(t *testing.T) {
	// После объекта идёт текст с фигурной скобкой: жадный захват до последней
	// "}" даёт невалидный JSON, срабатывает сбалансированный разбор.
	got, ok := ExtractJSONObject(`{"a": 1} и скобка } в хвосте`)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, got)
}

func TestExtractJSONObject_NestedObject(t *testing.T) {
	in := `{"outer": {"inner": [1, 2, {"deep": true}]}, "tail": "x"}`
	got, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.JSONEq(t, in, got)
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	in := `ответ: {"text": "скобки \"{\" и \"}\" внутри строки"} конец`
	got, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.JSONEq(t, `{"text": "скобки \"{\" и \"}\" внутри строки"}`, got)
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	for _, in := range []string{"", "просто текст", "[1, 2, 3]", "}{"} {
		_, ok := ExtractJSONObject(in)
		assert.False(t, ok, "in=%q", in)
	}
}
