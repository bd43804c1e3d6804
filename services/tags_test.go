package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []string
	}{
		{"json array string", `["a","b"]`, []string{"a", "b"}},
		{"comma separated", "a, b ,c", []string{"a", "b", "c"}},
		{"single name", "robotics", []string{"robotics"}},
		{"string slice", []string{" x ", "y"}, []string{"x", "y"}},
		{"any slice skips non strings", []any{"x", 3, nil, "y"}, []string{"x", "y"}},
		{"json array with non strings", `["a", 1, {"b": 2}, "c"]`, []string{"a", "c"}},
		{"blanks dropped", " , a,, ", []string{"a"}},
		{"duplicates keep first", "b,a,b, a", []string{"b", "a"}},
		{"case sensitive", "AI,ai", []string{"AI", "ai"}},
		{"empty string", "", []string{}},
		{"empty json array", "[]", []string{}},
		{"json object string is split", `{"a":1}`, []string{`{"a":1}`}},
		{"number", 42, []string{}},
		{"nil", nil, []string{}},
		{"map", map[string]any{"a": 1}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.raw))
		})
	}
}

func TestNormalizeTagsIsIdempotent(t *testing.T) {
	once := NormalizeTags(`[" solar ", "robotics", "solar"]`)
	assert.Equal(t, once, NormalizeTags(once))
}
