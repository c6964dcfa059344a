package main

import (
	"github.com/spf13/cobra"

	"github.com/MacMoment/coding/internal/app"
)

var serveNoWorker bool

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with an embedded job worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.RunOptions{API: true, Worker: !serveNoWorker})
	},
}

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "Run the job worker only",
	Long:  "Runs the job worker without the HTTP API. Realtime events reach API processes through Redis, so set REDIS_ADDR.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.RunOptions{Worker: true})
	},
}

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, stop, a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer stop()
		defer a.Close()
		return a.Migrate()
	},
}

func init() {
	serveCommand.Flags().BoolVar(&serveNoWorker, "no-worker", false, "Do not start the embedded job worker")
	rootCmd.AddCommand(serveCommand, workerCommand, migrateCommand)
}

func runApp(cmd *cobra.Command, opts app.RunOptions) error {
	ctx, stop, a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	if err := a.Migrate(); err != nil {
		return err
	}
	if opts.Worker && !opts.API && a.Cfg.RedisAddr == "" {
		a.Log.Warn("worker running without REDIS_ADDR; realtime events will not reach API processes")
	}
	a.Log.Info("Starting ForgeCraft", "api", opts.API, "worker", opts.Worker)
	return a.Run(ctx, opts)
}
