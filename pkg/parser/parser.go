// Package parser extracts structured JSON from free-form LM chat
// completions that may wrap it in reasoning text, XML-style tags, or
// markdown code fences.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	rTagPattern      = regexp.MustCompile(`(?is)<r\s*>(.*?)</r\s*>`)
	resultTagPattern = regexp.MustCompile(`(?is)<result\s*>(.*?)</result\s*>`)
	jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	reasoningPattern = regexp.MustCompile(`(?is)<reasoning\s*>(.*?)</reasoning\s*>`)
)

// ParseError reports that no valid JSON object could be extracted from an
// LM response. It carries the response length and a truncated prefix rather
// than the full text, matching the source's bounded error message.
type ParseError struct {
	Length int
	Prefix string
}

const parseErrorPrefixLen = 300

func (e *ParseError) Error() string {
	return fmt.Sprintf("no valid JSON found in LLM response (length=%d): %s", e.Length, e.Prefix)
}

func newParseError(text string) *ParseError {
	prefix := text
	if len(prefix) > parseErrorPrefixLen {
		prefix = prefix[:parseErrorPrefixLen]
	}
	return &ParseError{Length: len(text), Prefix: prefix}
}

// ExtractJSON extracts a JSON object from an LM response, trying each
// extraction strategy in priority order:
//
//  1. Content inside <r>...</r> tags.
//  2. Content inside <result>...</result> tags.
//  3. Content inside a ```json ... ``` markdown code block.
//  4. The first balanced {...} JSON object found anywhere in the text.
//
// Each candidate fragment is parsed independently; a strategy that matches
// but fails to parse falls through to the next one rather than failing
// outright.
func ExtractJSON(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Length: len(text), Prefix: ""}
	}

	if m := rTagPattern.FindStringSubmatch(text); m != nil {
		if parsed, ok := tryParseJSON(m[1]); ok {
			return parsed, nil
		}
	}

	if m := resultTagPattern.FindStringSubmatch(text); m != nil {
		if parsed, ok := tryParseJSON(m[1]); ok {
			return parsed, nil
		}
	}

	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		if parsed, ok := tryParseJSON(m[1]); ok {
			return parsed, nil
		}
	}

	if parsed, ok := extractRawJSONObject(text); ok {
		return parsed, nil
	}

	return nil, newParseError(text)
}

// ExtractReasoning returns the content of a <reasoning>...</reasoning>
// block, or ("", false) if none is present.
func ExtractReasoning(text string) (string, bool) {
	m := reasoningPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func tryParseJSON(text string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, false
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, false
	}
	return result, true
}

// extractRawJSONObject finds the first valid JSON object in arbitrary text
// by locating the outermost '{'...'}' span first, and falling back to a
// string/escape-aware balanced-brace scan from the first '{' if that span
// does not parse as-is.
func extractRawJSONObject(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return nil, false
	}

	end := strings.LastIndexByte(text, '}')
	if end > start {
		if parsed, ok := tryParseJSON(text[start : end+1]); ok {
			return parsed, true
		}
	}

	depth := 0
	inString := false
	escapeNext := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			if inString {
				escapeNext = true
			}
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if parsed, ok := tryParseJSON(text[start : i+1]); ok {
					return parsed, true
				}
				return nil, false
			}
		}
	}

	return nil, false
}
