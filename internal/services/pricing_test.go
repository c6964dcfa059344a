package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/domain/user"
	"github.com/MacMoment/coding/internal/platform/llm"
)

func TestGenerationCost(t *testing.T) {
	p := DefaultPricing()
	cases := []struct {
		model  string
		tokens int
		want   int
	}{
		{llm.ModelGPT5, 0, 15},
		{llm.ModelGPT5, 1, 23},
		{llm.ModelGPT5, 1000, 23},
		{llm.ModelGPT5, 1001, 31},
		{llm.ModelGPT5, 3400, 47},
		{llm.ModelGPT5, -50, 15},
		{llm.ModelClaudeSonnet45, 1500, 20},
		{llm.ModelClaudeOpus45, 2000, 55},
		{llm.ModelGemini3Pro, 1200, 16},
		{llm.ModelGrok41Fast, 10000, 25},
	}
	for _, tc := range cases {
		got, err := p.GenerationCost(tc.model, tc.tokens)
		require.NoError(t, err)
		if got != tc.want {
			t.Fatalf("cost(%s, %d): want=%d got=%d", tc.model, tc.tokens, tc.want, got)
		}
	}

	_, err := p.GenerationCost("GPT_2", 100)
	if !errors.Is(err, llm.ErrUnknownModel) {
		t.Fatalf("unknown model: want=ErrUnknownModel got=%v", err)
	}
}

func TestLoadPricingOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	raw := "generation:\n  GPT_5:\n    base: 20\n    per_k_token: 10\ndeploy: 12\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	p, err := LoadPricing(path)
	require.NoError(t, err)
	assert.Equal(t, GenerationRate{Base: 20, PerKToken: 10}, p.Generation[llm.ModelGPT5])
	assert.Equal(t, GenerationRate{Base: 10, PerKToken: 5}, p.Generation[llm.ModelClaudeSonnet45])
	assert.Equal(t, 12, p.Deploy)
	assert.Equal(t, 2, p.Checkpoint)
	assert.Equal(t, 100, p.WelcomeBonus)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("generation:\n  GPT_5:\n    base: -1\n"), 0o600))
	_, err = LoadPricing(bad)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	def, err := LoadPricing("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPricing(), def)
}

func TestPlans(t *testing.T) {
	assert.True(t, PlanFor(user.TierFree).Allows(llm.ModelGrok41Fast))
	assert.False(t, PlanFor(user.TierFree).Allows(llm.ModelGPT5))
	assert.True(t, PlanFor(user.TierPro).Allows(llm.ModelGPT5))
	assert.False(t, PlanFor(user.TierPro).Allows(llm.ModelClaudeOpus45))
	assert.True(t, PlanFor(user.TierElite).Allows(llm.ModelClaudeOpus45))
	assert.Equal(t, user.TierFree, PlanFor(user.Tier("PLATINUM")).Tier)
	assert.Equal(t, 25, PlanFor(user.TierStarter).DailyClaimTokens)
}
