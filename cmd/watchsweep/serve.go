package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, scheduler and notification listener",
	Long: `Serve hosts the onboarding pages, the webhook receiver and the manual
sync endpoint, and runs scheduled synchronization in the background.`,
	Example: `  watchsweep serve
  watchsweep serve --config /etc/watchsweep/watchsweep.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sched := apiClient.Scheduler(); sched != nil {
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	if listener := apiClient.NotificationListener(); listener != nil {
		go listener.Run(ctx)
	}

	return apiClient.Server().Run(ctx)
}
