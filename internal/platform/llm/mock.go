package llm

import (
	"sort"
	"strings"
)

const bt = "`"

// MockOutput is returned when no API key is configured. It only looks at whether
// the user prompt mentions discord so repeated calls are byte-identical.
func MockOutput(userPrompt string) *GeneratedOutput {
	if strings.Contains(strings.ToLower(userPrompt), "discord") {
		return &GeneratedOutput{
			Files:      discordMockFiles(),
			Summary:    "Generated a basic Discord.js bot with TypeScript",
			TokensUsed: 1500,
		}
	}
	return &GeneratedOutput{
		Files:      paperMockFiles(),
		Summary:    "Generated a basic Paper plugin structure",
		TokensUsed: 1200,
	}
}

func discordMockFiles() map[string]string {
	return map[string]string{
		"src/index.ts": `import { Client, GatewayIntentBits, Events } from 'discord.js';

const client = new Client({
  intents: [
    GatewayIntentBits.Guilds,
    GatewayIntentBits.GuildMessages,
    GatewayIntentBits.MessageContent,
  ],
});

client.once(Events.ClientReady, (c) => {
  console.log(` + bt + `Ready! Logged in as ${c.user.tag}` + bt + `);
});

client.login(process.env.DISCORD_TOKEN);`,
		"package.json": `{
  "name": "discord-bot",
  "version": "1.0.0",
  "main": "dist/index.js",
  "scripts": {
    "build": "tsc",
    "start": "node dist/index.js"
  },
  "dependencies": {
    "discord.js": "^14.14.0"
  },
  "devDependencies": {
    "typescript": "^5.3.0"
  }
}`,
		"tsconfig.json": `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "commonjs",
    "outDir": "./dist",
    "strict": true
  },
  "include": [
    "src/**/*"
  ]
}`,
		"Dockerfile": `FROM node:20-alpine
WORKDIR /app
COPY package*.json ./
RUN npm install
COPY . .
RUN npm run build
CMD ["npm", "start"]`,
		"README.md": `# Discord Bot

## Setup
1. Install dependencies: ` + bt + `npm install` + bt + `
2. Set DISCORD_TOKEN environment variable
3. Build: ` + bt + `npm run build` + bt + `
4. Run: ` + bt + `npm start` + bt,
	}
}

func paperMockFiles() map[string]string {
	return map[string]string{
		"src/main/java/com/example/plugin/MainPlugin.java": `package com.example.plugin;

import org.bukkit.plugin.java.JavaPlugin;

public class MainPlugin extends JavaPlugin {
    @Override
    public void onEnable() {
        getLogger().info("Plugin enabled!");
    }

    @Override
    public void onDisable() {
        getLogger().info("Plugin disabled!");
    }
}`,
		"src/main/resources/plugin.yml": `name: MyPlugin
version: 1.0.0
main: com.example.plugin.MainPlugin
api-version: '1.20'
description: A generated Minecraft plugin`,
		"build.gradle": `plugins {
    id 'java'
}

group = 'com.example'
version = '1.0.0'

repositories {
    mavenCentral()
    maven { url = 'https://repo.papermc.io/repository/maven-public/' }
}

dependencies {
    compileOnly 'io.papermc.paper:paper-api:1.20.4-R0.1-SNAPSHOT'
}

java {
    toolchain.languageVersion.set(JavaLanguageVersion.of(17))
}`,
		"README.md": `# Minecraft Plugin

## Setup
1. Build with: ` + bt + `./gradlew build` + bt + `
2. Copy jar from build/libs to server plugins folder
3. Restart server`,
	}
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
