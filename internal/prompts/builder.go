package prompts

import (
	"sort"
	"strings"

	"github.com/MacMoment/coding/internal/domain/projects"
)

// GenerationContext is everything the user prompt is assembled from.
type GenerationContext struct {
	Prompt        string
	ExistingFiles map[string]string
	Docs          []string
	APIVersion    string
	PackageName   string
	CommandPrefix string
}

const userHeader = `Generate the following:

`

const userRequirements = `

Requirements:
1. Generate a complete folder structure
2. Include all necessary files with full content
3. Include build configuration (build.gradle, package.json, etc.)
4. Include README.md with setup instructions
5. Include example usage
6. Make the code production-ready

`

const outputContract = `
Output format - respond with a JSON object containing:
{
  "files": {
    "path/to/file.ext": "file content here",
    ...
  },
  "summary": "Brief description of what was generated"
}`

// Build composes the system and user prompts for one generation. It does no
// I/O and its output depends only on its inputs.
func Build(platform projects.Platform, language string, ctx GenerationContext) (system, user string) {
	system = SystemPrompt(platform, TemplateOptions{
		PackageName:   ctx.PackageName,
		APIVersion:    ctx.APIVersion,
		CommandPrefix: ctx.CommandPrefix,
	})
	return system, UserPrompt(ctx)
}

func UserPrompt(ctx GenerationContext) string {
	var b strings.Builder
	b.WriteString(userHeader)
	b.WriteString(Sanitize(ctx.Prompt))
	b.WriteString(userRequirements)

	if len(ctx.ExistingFiles) > 0 {
		paths := make([]string, 0, len(ctx.ExistingFiles))
		for p := range ctx.ExistingFiles {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		b.WriteString("\nExisting project files for reference:\n")
		for _, p := range paths {
			b.WriteString("\n--- ")
			b.WriteString(p)
			b.WriteString(" ---\n")
			b.WriteString(ctx.ExistingFiles[p])
			b.WriteString("\n")
		}
	}

	if len(ctx.Docs) > 0 {
		b.WriteString("\nRelevant documentation:\n")
		for _, d := range ctx.Docs {
			b.WriteString("\n")
			b.WriteString(d)
			b.WriteString("\n")
		}
	}

	b.WriteString(outputContract)
	return b.String()
}
