package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocsFileList(t *testing.T) {
	raw := []byte(`
- title: Scheduler
  platform: MINECRAFT_PAPER
  version: "1.21"
  content: Use the Bukkit scheduler for repeating tasks.
- title: Slash commands
  platform: DISCORD_NODE
  content: Register commands with the REST client.
`)
	entries, err := parseDocsFile(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Scheduler", entries[0].Title)
	assert.Equal(t, "1.21", entries[0].Version)
	assert.Equal(t, "DISCORD_NODE", entries[1].Platform)
}

func TestParseDocsFileMapping(t *testing.T) {
	raw := []byte(`
entries:
  - title: Events
    platform: MINECRAFT_SPIGOT
    content: Listen with @EventHandler.
`)
	entries, err := parseDocsFile(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MINECRAFT_SPIGOT", entries[0].Platform)
}

func TestParseDocsFileRejects(t *testing.T) {
	cases := map[string]string{
		"empty":           "entries: []\n",
		"missing content": "- title: x\n  platform: MINECRAFT_PAPER\n",
		"not yaml":        "- [unclosed\n",
	}
	for name, raw := range cases {
		if _, err := parseDocsFile([]byte(raw)); err == nil {
			t.Fatalf("%s: want error got nil", name)
		}
	}
}

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, "JAVA", languageFor("MINECRAFT_FABRIC"))
	assert.Equal(t, "TYPESCRIPT", languageFor("DISCORD_NODE"))
	assert.Equal(t, "PYTHON", languageFor("DISCORD_PYTHON"))
}

func TestDemoDirectories(t *testing.T) {
	assert.Equal(t, []string{"src/main/java", "src/main/resources"}, demoDirectories(languageFor("MINECRAFT_PAPER")))
	assert.Equal(t, []string{"src"}, demoDirectories(languageFor("DISCORD_NODE")))
	assert.Equal(t, []string{"cogs"}, demoDirectories(languageFor("DISCORD_PYTHON")))
}
