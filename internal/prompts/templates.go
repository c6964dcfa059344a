package prompts

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/MacMoment/coding/internal/domain/projects"
)

const (
	DefaultPluginPackage = "com.example.plugin"
	DefaultModPackage    = "com.example.mod"
	DefaultAPIVersion    = "1.20"
	DefaultCommandPrefix = "!"
)

// TemplateOptions are the values a system template interpolates. Empty fields
// take the platform's default.
type TemplateOptions struct {
	PackageName   string
	APIVersion    string
	CommandPrefix string
}

type systemTemplate struct {
	defaultPackage string
	tmpl           *template.Template
}

var systemTemplates = map[projects.Platform]systemTemplate{}

func register(platform projects.Platform, defaultPackage, text string) {
	systemTemplates[platform] = systemTemplate{
		defaultPackage: defaultPackage,
		tmpl:           template.Must(template.New(string(platform)).Option("missingkey=zero").Parse(strings.TrimSpace(text))),
	}
}

func init() {
	register(projects.PlatformPaper, DefaultPluginPackage, `
You are an expert Minecraft plugin developer for Paper API.
You must generate complete, working Java code that follows these requirements:
- Use proper package naming ({{.PackageName}})
- Include plugin.yml with correct format
- Target API version {{.APIVersion}}
- Use modern Paper API practices
- Include proper command and listener registration
- Add meaningful comments
- Must compile under Gradle with Java 17`)

	register(projects.PlatformSpigot, DefaultPluginPackage, `
You are an expert Minecraft plugin developer for Spigot API.
You must generate complete, working Java code that follows these requirements:
- Use proper package naming ({{.PackageName}})
- Include plugin.yml with correct format
- Target API version {{.APIVersion}}
- Use Spigot API best practices
- Include proper command and event handling
- Must compile under Maven with Java 17`)

	register(projects.PlatformFabric, DefaultModPackage, `
You are an expert Minecraft mod developer for Fabric.
You must generate complete, working Java code that follows these requirements:
- Use proper package naming ({{.PackageName}})
- Include fabric.mod.json with correct format
- Target Minecraft {{.APIVersion}}
- Use Fabric API conventions
- Include proper mod initialization
- Must compile under Gradle`)

	register(projects.PlatformForge, DefaultModPackage, `
You are an expert Minecraft mod developer for Forge.
You must generate complete, working Java code that follows these requirements:
- Use proper package naming ({{.PackageName}})
- Include mods.toml with correct format
- Target Minecraft {{.APIVersion}}
- Use Forge conventions and annotations
- Must compile under Gradle`)

	register(projects.PlatformDiscordNode, "", `
You are an expert Discord bot developer using Discord.js v14.
You must generate complete, working TypeScript code that follows these requirements:
- Use Discord.js v14 with proper intents
- Command prefix: {{.CommandPrefix}}
- Include proper slash command registration
- Handle permissions correctly
- Include Dockerfile for deployment
- Use modern async/await patterns
- Include proper error handling`)

	register(projects.PlatformDiscordPython, "", `
You are an expert Discord bot developer using discord.py.
You must generate complete, working Python code that follows these requirements:
- Use discord.py 2.x with proper intents
- Command prefix: {{.CommandPrefix}}
- Use cogs for organization
- Include proper slash command support
- Include requirements.txt
- Include Dockerfile for deployment
- Use async/await properly`)
}

// SystemPrompt renders the platform's system template. Unknown platforms use
// the Paper template.
func SystemPrompt(platform projects.Platform, opts TemplateOptions) string {
	t, ok := systemTemplates[platform]
	if !ok {
		t = systemTemplates[projects.PlatformPaper]
	}
	opts.PackageName = firstNonEmpty(opts.PackageName, t.defaultPackage)
	opts.APIVersion = firstNonEmpty(opts.APIVersion, DefaultAPIVersion)
	opts.CommandPrefix = firstNonEmpty(opts.CommandPrefix, DefaultCommandPrefix)

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, opts); err != nil {
		// Templates are static and options are plain strings.
		panic(err)
	}
	return buf.String()
}

// Platforms lists the platforms with a dedicated template.
func Platforms() []projects.Platform {
	out := make([]projects.Platform, 0, len(systemTemplates))
	for _, p := range []projects.Platform{
		projects.PlatformPaper,
		projects.PlatformSpigot,
		projects.PlatformFabric,
		projects.PlatformForge,
		projects.PlatformDiscordNode,
		projects.PlatformDiscordPython,
	} {
		if _, ok := systemTemplates[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
