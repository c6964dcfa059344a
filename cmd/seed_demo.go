package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MacMoment/coding/internal/app"
	"github.com/MacMoment/coding/internal/data/db"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/domain/billing"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/services"
)

var (
	seedEmail    string
	seedTier     string
	seedPlatform string
	seedTokenTTL time.Duration
)

var seedDemoCommand = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create a demo user and project and print an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop, a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer stop()
		defer a.Close()
		if err := a.Migrate(); err != nil {
			return err
		}

		dbc := dbctx.New(ctx)
		u, err := seedUser(cmd, a, dbc)
		if err != nil {
			return err
		}

		project := &types.Project{
			UserID:   u.ID,
			Name:     "Demo Project",
			Platform: types.Platform(seedPlatform),
			Language: languageFor(types.Platform(seedPlatform)),
		}
		if err := a.Repos.Project.Create(dbc, project); err != nil {
			return fmt.Errorf("create demo project: %w", err)
		}
		for _, dir := range demoDirectories(project.Language) {
			if err := a.Repos.ProjectFile.CreateDirectory(dbc, project.ID, dir); err != nil {
				return fmt.Errorf("create demo directory %s: %w", dir, err)
			}
		}
		token, err := a.Services.Auth.IssueToken(u.ID, seedTokenTTL)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "user_id:    %s\n", u.ID)
		fmt.Fprintf(out, "project_id: %s\n", project.ID)
		fmt.Fprintf(out, "token:      %s\n", token)
		return nil
	},
}

func init() {
	seedDemoCommand.Flags().StringVar(&seedEmail, "email", "demo@forgecraft.dev", "Demo user email")
	seedDemoCommand.Flags().StringVar(&seedTier, "tier", string(types.TierPro), "Subscription tier")
	seedDemoCommand.Flags().StringVar(&seedPlatform, "platform", "MINECRAFT_PAPER", "Project platform")
	seedDemoCommand.Flags().DurationVar(&seedTokenTTL, "token-ttl", 24*time.Hour, "Lifetime of the printed token")
	rootCmd.AddCommand(seedDemoCommand)
}

// seedUser creates the demo user with a welcome bonus, or reuses it when the
// email is already taken.
func seedUser(cmd *cobra.Command, a *app.App, dbc dbctx.Context) (*types.User, error) {
	created, err := a.Repos.User.Create(dbc, []*types.User{{
		Email:            seedEmail,
		SubscriptionTier: types.Tier(seedTier),
	}})
	if err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create demo user: %w", err)
		}
		existing, getErr := a.Repos.User.GetByEmail(dbc, seedEmail)
		if getErr != nil || existing == nil {
			return nil, fmt.Errorf("load existing demo user: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "reusing existing user %s\n", seedEmail)
		return existing, nil
	}
	u := created[0]
	if _, err := a.Services.Ledger.Credit(dbc, services.Entry{
		UserID:      u.ID,
		Amount:      a.Services.Pricing.WelcomeBonus,
		Type:        billing.TxWelcomeBonus,
		Description: "Welcome bonus",
	}); err != nil {
		return nil, fmt.Errorf("credit welcome bonus: %w", err)
	}
	return u, nil
}

func languageFor(p types.Platform) string {
	switch p {
	case "DISCORD_NODE":
		return "TYPESCRIPT"
	case "DISCORD_PYTHON":
		return "PYTHON"
	default:
		return "JAVA"
	}
}

// demoDirectories is the empty source layout a fresh demo project starts with.
func demoDirectories(language string) []string {
	switch language {
	case "TYPESCRIPT":
		return []string{"src"}
	case "PYTHON":
		return []string{"cogs"}
	default:
		return []string{"src/main/java", "src/main/resources"}
	}
}
