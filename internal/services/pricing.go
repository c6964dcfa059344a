package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MacMoment/coding/internal/domain/user"
	"github.com/MacMoment/coding/internal/platform/llm"
)

type GenerationRate struct {
	Base      int `yaml:"base" json:"base"`
	PerKToken int `yaml:"per_k_token" json:"perKToken"`
}

// Pricing is the token cost table. Every amount is a whole number of tokens.
type Pricing struct {
	Generation    map[string]GenerationRate `yaml:"generation"`
	Checkpoint    int                       `yaml:"checkpoint"`
	Build         int                       `yaml:"build"`
	Deploy        int                       `yaml:"deploy"`
	ReferralBonus int                       `yaml:"referral_bonus"`
	WelcomeBonus  int                       `yaml:"welcome_bonus"`
}

func DefaultPricing() Pricing {
	return Pricing{
		Generation: map[string]GenerationRate{
			llm.ModelClaudeSonnet45: {Base: 10, PerKToken: 5},
			llm.ModelClaudeOpus45:   {Base: 25, PerKToken: 15},
			llm.ModelGPT5:           {Base: 15, PerKToken: 8},
			llm.ModelGemini3Pro:     {Base: 8, PerKToken: 4},
			llm.ModelGrok41Fast:     {Base: 5, PerKToken: 2},
		},
		Checkpoint:    2,
		Build:         5,
		Deploy:        10,
		ReferralBonus: 50,
		WelcomeBonus:  100,
	}
}

// LoadPricing reads a YAML file over the defaults. Models and constants the
// file leaves out keep their default values. An empty path returns the defaults.
func LoadPricing(path string) (Pricing, error) {
	p := DefaultPricing()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read pricing file: %w", err)
	}
	var override Pricing
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return p, fmt.Errorf("parse pricing file: %w", err)
	}
	for model, rate := range override.Generation {
		if rate.Base < 0 || rate.PerKToken < 0 {
			return p, fmt.Errorf("pricing for %s: %w", model, ErrInvalidAmount)
		}
		p.Generation[model] = rate
	}
	overlay(&p.Checkpoint, override.Checkpoint)
	overlay(&p.Build, override.Build)
	overlay(&p.Deploy, override.Deploy)
	overlay(&p.ReferralBonus, override.ReferralBonus)
	overlay(&p.WelcomeBonus, override.WelcomeBonus)
	return p, nil
}

func overlay(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// GenerationCost is base + ceil(tokens/1000) * perKToken. Negative usage counts as zero.
func (p Pricing) GenerationCost(model string, tokens int) (int, error) {
	rate, ok := p.Generation[model]
	if !ok {
		return 0, fmt.Errorf("%w: %s", llm.ErrUnknownModel, model)
	}
	if tokens < 0 {
		tokens = 0
	}
	kTokens := (tokens + 999) / 1000
	return rate.Base + kTokens*rate.PerKToken, nil
}

// Plan is what a subscription tier grants.
type Plan struct {
	Tier             user.Tier
	DailyClaimTokens int
	TokensPerMonth   int
	AllowedModels    []string
}

func (p Plan) Allows(model string) bool {
	for _, m := range p.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

var plans = map[user.Tier]Plan{
	user.TierFree: {
		Tier: user.TierFree, DailyClaimTokens: 10, TokensPerMonth: 100,
		AllowedModels: []string{llm.ModelGrok41Fast},
	},
	user.TierStarter: {
		Tier: user.TierStarter, DailyClaimTokens: 25, TokensPerMonth: 1000,
		AllowedModels: []string{llm.ModelGrok41Fast, llm.ModelGemini3Pro, llm.ModelClaudeSonnet45},
	},
	user.TierPro: {
		Tier: user.TierPro, DailyClaimTokens: 50, TokensPerMonth: 5000,
		AllowedModels: []string{llm.ModelGrok41Fast, llm.ModelGemini3Pro, llm.ModelClaudeSonnet45, llm.ModelGPT5},
	},
	user.TierElite: {
		Tier: user.TierElite, DailyClaimTokens: 100, TokensPerMonth: 25000,
		AllowedModels: []string{llm.ModelGrok41Fast, llm.ModelGemini3Pro, llm.ModelClaudeSonnet45, llm.ModelGPT5, llm.ModelClaudeOpus45},
	},
}

// PlanFor returns the plan of a tier. Unknown tiers get the free plan.
func PlanFor(tier user.Tier) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans[user.TierFree]
}
