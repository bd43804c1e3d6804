package services

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

// NormalizeTags turns the loosely typed tags field of a request into a clean
// list of names. A string holding a JSON array is decoded, any other string is
// split on commas, and string slices are taken as they are. Anything else
// yields no tags. Names are trimmed, blanks dropped and duplicates collapsed to
// their first occurrence.
func NormalizeTags(raw any) []string {
	var names []string

	switch v := raw.(type) {
	case string:
		names = splitTagString(v)
	case []string:
		names = v
	case []any:
		names = stringElements(v)
	default:
		return []string{}
	}

	names = lo.Map(names, func(name string, _ int) string { return strings.TrimSpace(name) })
	names = lo.Filter(names, func(name string, _ int) bool { return name != "" })
	return lo.Uniq(names)
}

func splitTagString(s string) []string {
	var decoded []any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		return stringElements(decoded)
	}
	return strings.Split(s, ",")
}

func stringElements(values []any) []string {
	return lo.FilterMap(values, func(v any, _ int) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}
