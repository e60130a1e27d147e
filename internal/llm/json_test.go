package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "clean object",
			text: `{"name": "JOHN DOE", "issuer": "NPTEL"}`,
			want: map[string]any{"name": "JOHN DOE", "issuer": "NPTEL"},
		},
		{
			name: "markdown fenced",
			text: "```json\n{\"name\": \"JOHN DOE\"}\n```",
			want: map[string]any{"name": "JOHN DOE"},
		},
		{
			name: "prose around object",
			text: "Here is the extraction:\n{\"course\": \"Deep Learning\"}\nHope this helps!",
			want: map[string]any{"course": "Deep Learning"},
		},
		{
			name: "nested braces",
			text: `junk {"outer": {"inner": "value"}} trailing`,
			want: map[string]any{"outer": map[string]any{"inner": "value"}},
		},
		{
			name: "braces inside strings",
			text: `{"note": "use {curly} braces"}`,
			want: map[string]any{"note": "use {curly} braces"},
		},
		{
			name: "unparseable falls back to raw text",
			text: "the model refused to answer",
			want: map[string]any{"_raw_text": "the model refused to answer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseObject(tt.text))
		})
	}
}

func TestStringField(t *testing.T) {
	obj := map[string]any{
		"name":   "  JOHN DOE  ",
		"year":   float64(2024),
		"rank":   nil,
		"skills": []any{"go"},
	}
	assert.Equal(t, "JOHN DOE", StringField(obj, "name"))
	assert.Equal(t, "2024", StringField(obj, "year"))
	assert.Equal(t, "", StringField(obj, "rank"))
	assert.Equal(t, "", StringField(obj, "skills"))
	assert.Equal(t, "", StringField(obj, "missing"))
}

func TestStringSlice(t *testing.T) {
	obj := map[string]any{
		"skills": []any{"Machine Learning", "  Python ", 42, ""},
		"flat":   "not a list",
	}
	assert.Equal(t, []string{"Machine Learning", "Python"}, StringSlice(obj, "skills"))
	assert.Nil(t, StringSlice(obj, "flat"))
	assert.Nil(t, StringSlice(obj, "missing"))
}
