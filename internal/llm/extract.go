package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports that no structured recommendation could be recovered
// from a provider response. Sample carries a truncated excerpt of the
// offending text for diagnostics.
type ParseError struct {
	Reason string
	Sample string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse llm response: %s (sample: %q)", e.Reason, e.Sample)
}

const parseSampleLimit = 200

var (
	fenceRe       = regexp.MustCompile("```[a-zA-Z]*\\s*")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// extractJSON recovers a JSON object from free-form provider output.
//
// It strips fenced code-block markers, takes the substring between the
// first '{' and the last '}' (tolerating surrounding prose), and parses
// candidates in a fixed fallback order: as-is, single quotes replaced by
// double quotes, trailing commas removed, then both repairs combined.
func extractJSON(content string) (map[string]any, error) {
	cleaned := fenceRe.ReplaceAllString(strings.TrimSpace(content), "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &ParseError{Reason: "no JSON object found", Sample: truncate(cleaned, parseSampleLimit)}
	}

	raw := cleaned[start : end+1]

	candidates := []string{
		raw,
		strings.ReplaceAll(raw, "'", `"`),
		trailingComma.ReplaceAllString(raw, "$1"),
		trailingComma.ReplaceAllString(strings.ReplaceAll(raw, "'", `"`), "$1"),
	}

	var lastErr error
	for _, candidate := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		} else {
			lastErr = err
		}
	}

	return nil, &ParseError{
		Reason: fmt.Sprintf("recovery exhausted: %v", lastErr),
		Sample: truncate(raw, parseSampleLimit),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
