package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/domain/projects"
)

func TestSanitize(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"code fence":      {"make a plugin ```rm -rf /``` please", "make a plugin  please"},
		"template expr":   {"hi ${process.env.SECRET} there", "hi  there"},
		"script tag":      {"a<SCRIPT type=x>alert(1)</script>b", "ab"},
		"js protocol":     {"click JavaScript:alert(1)", "click alert(1)"},
		"trims":           {"   padded \n", "padded"},
		"plain untouched": {"Create a /heal command", "Create a /heal command"},
	}
	for name, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", name, tc.want, got)
		}
	}
}

func TestSanitizeTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", MaxPromptRunes+10)
	got := Sanitize(long)
	assert.Equal(t, MaxPromptRunes, len([]rune(got)))
}

func TestSystemPromptDefaults(t *testing.T) {
	paper := SystemPrompt(projects.PlatformPaper, TemplateOptions{})
	assert.Contains(t, paper, "Paper API")
	assert.Contains(t, paper, "(com.example.plugin)")
	assert.Contains(t, paper, "Target API version 1.20")

	fabric := SystemPrompt(projects.PlatformFabric, TemplateOptions{APIVersion: "1.21"})
	assert.Contains(t, fabric, "(com.example.mod)")
	assert.Contains(t, fabric, "Target Minecraft 1.21")

	bot := SystemPrompt(projects.PlatformDiscordPython, TemplateOptions{CommandPrefix: "?"})
	assert.Contains(t, bot, "Command prefix: ?")

	unknown := SystemPrompt(projects.Platform("ROBLOX"), TemplateOptions{})
	assert.Equal(t, paper, unknown)

	assert.Len(t, Platforms(), 6)
}

func TestBuildIsDeterministic(t *testing.T) {
	ctx := GenerationContext{
		Prompt: "Create a /heal command",
		ExistingFiles: map[string]string{
			"src/b.java": "B",
			"README.md":  "readme",
			"src/a.java": "A",
		},
		Docs:        []string{"# Commands\nuse getCommand", "# Events"},
		PackageName: "dev.acme.heal",
	}

	sys1, user1 := Build(projects.PlatformPaper, "JAVA", ctx)
	sys2, user2 := Build(projects.PlatformPaper, "JAVA", ctx)
	require.Equal(t, sys1, sys2)
	require.Equal(t, user1, user2)

	assert.Contains(t, sys1, "(dev.acme.heal)")
	assert.True(t, strings.HasPrefix(user1, "Generate the following:\n\nCreate a /heal command\n\nRequirements:"))

	iReadme := strings.Index(user1, "--- README.md ---\nreadme\n")
	iA := strings.Index(user1, "--- src/a.java ---\nA\n")
	iB := strings.Index(user1, "--- src/b.java ---\nB\n")
	require.True(t, iReadme > 0 && iA > iReadme && iB > iA, "files must be listed in sorted path order")

	iDocs := strings.Index(user1, "Relevant documentation:")
	require.True(t, iDocs > iB)
	assert.True(t, strings.Index(user1, "# Commands") < strings.Index(user1, "# Events"))
	assert.True(t, strings.HasSuffix(user1, "\"summary\": \"Brief description of what was generated\"\n}"))
}

func TestUserPromptOmitsEmptySections(t *testing.T) {
	user := UserPrompt(GenerationContext{Prompt: "ping bot ```ignore me```"})
	assert.NotContains(t, user, "Existing project files")
	assert.NotContains(t, user, "Relevant documentation")
	assert.NotContains(t, user, "ignore me")
	assert.Contains(t, user, "ping bot")
}
