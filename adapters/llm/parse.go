package llm

import (
	"fmt"
	"strings"
)

// extractJSON pulls the first JSON object or array out of a model reply.
// Models wrap JSON in markdown fences or prose often enough that decoding
// the raw reply directly is a losing strategy.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty model reply")
	}

	// Strip a markdown code fence if present.
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		} else {
			text = strings.TrimSpace(rest)
		}
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", fmt.Errorf("no JSON found in model reply")
	}

	open := text[start]
	var closer byte = ']'
	if open == '{' {
		closer = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON in model reply")
}
