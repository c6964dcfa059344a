package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MacMoment/coding/internal/app"
	"github.com/MacMoment/coding/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:          "forgecraft",
	Short:        "ForgeCraft generation backend",
	Long:         "ForgeCraft turns prompts into Minecraft plugin and Discord bot projects. The API accepts generation jobs and the worker runs them.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap builds the app from the environment. The returned context is
// cancelled on SIGINT or SIGTERM.
func bootstrap(cmd *cobra.Command) (context.Context, context.CancelFunc, *app.App, error) {
	cfg := app.LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		stop()
		log.Sync()
		return nil, nil, nil, err
	}
	return ctx, stop, a, nil
}
