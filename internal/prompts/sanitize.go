package prompts

import (
	"regexp"
	"strings"
)

const MaxPromptRunes = 5000

var (
	codeFencePattern    = regexp.MustCompile("(?s)```.*?```")
	templateExprPattern = regexp.MustCompile(`\$\{.*?\}`)
	scriptTagPattern    = regexp.MustCompile(`(?is)<script.*?</script>`)
	jsProtocolPattern   = regexp.MustCompile(`(?i)javascript:`)
)

// Sanitize strips the constructs most often used for prompt injection and caps
// the length. It is a best-effort filter, not a security boundary.
func Sanitize(prompt string) string {
	s := codeFencePattern.ReplaceAllString(prompt, "")
	s = templateExprPattern.ReplaceAllString(s, "")
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = jsProtocolPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxPromptRunes {
		s = string(r[:MaxPromptRunes])
	}
	return s
}
