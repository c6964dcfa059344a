package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	DefaultSummary    = "Code generated successfully"
	FallbackTokenUsed = 1000
)

// GeneratedOutput is the gateway's result: relative path to full file content.
type GeneratedOutput struct {
	Files      map[string]string `json:"files"`
	Summary    string            `json:"summary"`
	TokensUsed int               `json:"tokensUsed"`
}

// Paths returns the output's file paths sorted lexically.
func (o *GeneratedOutput) Paths() []string {
	return sortedKeys(o.Files)
}

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")

type contentPayload struct {
	Files   map[string]json.RawMessage `json:"files"`
	Summary string                     `json:"summary"`
}

// ParseContent recovers the {"files", "summary"} object from a model's message.
// It tries the whole text, then the first fenced code block, then the first
// balanced {...} span. Missing files become an empty map and a missing summary
// becomes DefaultSummary. TokensUsed is left for the caller.
func ParseContent(content string) (*GeneratedOutput, error) {
	candidates := []string{strings.TrimSpace(content)}
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if span, ok := firstBalancedObject(content); ok {
		candidates = append(candidates, span)
	}
	for _, c := range candidates {
		if c == "" || c[0] != '{' {
			continue
		}
		var p contentPayload
		if err := json.Unmarshal([]byte(c), &p); err != nil {
			continue
		}
		return p.toOutput(), nil
	}
	return nil, ErrMalformedResponse
}

func (p contentPayload) toOutput() *GeneratedOutput {
	out := &GeneratedOutput{Files: make(map[string]string, len(p.Files)), Summary: p.Summary}
	for path, raw := range p.Files {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out.Files[path] = s
			continue
		}
		// Models occasionally emit a JSON value (package.json) instead of a string.
		out.Files[path] = string(raw)
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = DefaultSummary
	}
	return out
}

// firstBalancedObject returns the first {...} span whose braces balance,
// ignoring braces inside JSON strings.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
