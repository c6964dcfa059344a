package llm

import "sort"

type Provider string

const (
	ProviderAnthropic Provider = "ANTHROPIC"
	ProviderOpenAI    Provider = "OPENAI"
	ProviderGoogle    Provider = "GOOGLE"
	ProviderXAI       Provider = "XAI"
)

const (
	ModelClaudeSonnet45 = "CLAUDE_SONNET_4_5"
	ModelClaudeOpus45   = "CLAUDE_OPUS_4_5"
	ModelGPT5           = "GPT_5"
	ModelGemini3Pro     = "GEMINI_3_PRO"
	ModelGrok41Fast     = "GROK_4_1_FAST"
)

// ModelInfo describes one selectable model. VendorModel is the id sent upstream.
type ModelInfo struct {
	Key             string   `json:"key"`
	Name            string   `json:"name"`
	VendorModel     string   `json:"vendorModel"`
	Provider        Provider `json:"provider"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	ContextWindow   int      `json:"contextWindow"`
}

var catalog = map[string]ModelInfo{
	ModelClaudeSonnet45: {
		Key: ModelClaudeSonnet45, Name: "Claude Sonnet 4.5", VendorModel: "claude-sonnet-4-5-20250929",
		Provider: ProviderAnthropic, MaxOutputTokens: 8192, ContextWindow: 200000,
	},
	ModelClaudeOpus45: {
		Key: ModelClaudeOpus45, Name: "Claude Opus 4.5", VendorModel: "claude-opus-4-5-20251101",
		Provider: ProviderAnthropic, MaxOutputTokens: 8192, ContextWindow: 200000,
	},
	ModelGPT5: {
		Key: ModelGPT5, Name: "GPT-5", VendorModel: "gpt-5",
		Provider: ProviderOpenAI, MaxOutputTokens: 16384, ContextWindow: 128000,
	},
	ModelGemini3Pro: {
		Key: ModelGemini3Pro, Name: "Gemini 3 Pro", VendorModel: "gemini-3-pro-preview",
		Provider: ProviderGoogle, MaxOutputTokens: 8192, ContextWindow: 1000000,
	},
	ModelGrok41Fast: {
		Key: ModelGrok41Fast, Name: "Grok 4.1 Fast", VendorModel: "grok-4.1-fast-non-reasoning",
		Provider: ProviderXAI, MaxOutputTokens: 8192, ContextWindow: 131072,
	},
}

// Lookup returns the catalog entry for a model key.
func Lookup(key string) (ModelInfo, bool) {
	info, ok := catalog[key]
	return info, ok
}

// ProviderFor maps a model key to its vendor. Unknown keys map to ANTHROPIC.
func ProviderFor(key string) Provider {
	if info, ok := catalog[key]; ok {
		return info.Provider
	}
	return ProviderAnthropic
}

// Models lists the catalog sorted by key.
func Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
