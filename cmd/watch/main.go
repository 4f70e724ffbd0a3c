package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oksasatya/vpms/config"
	"github.com/oksasatya/vpms/internal/notify"
	"github.com/oksasatya/vpms/pkg/client"
	"github.com/oksasatya/vpms/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var (
		baseURL  string
		email    string
		password string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:          "watch",
		Short:        "Log in as a resident and alert on new pending visitors and parcels",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			logger := helpers.NewLogger(cfg.AppName+"-watch", cfg.Env)
			api := client.New(baseURL, nil)

			ctx := cmd.Context()
			if _, err := api.Login(ctx, email, password); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			me, err := api.Me(ctx)
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}

			out := cmd.OutOrStdout()
			alert := func(a notify.Alert) {
				fmt.Fprintf(out, "[%s] %s (%d pending)\n", time.Now().Format(time.Kitchen), a.Message, a.Current)
			}
			logger.WithField("resident_id", me.ID).Infof("watching every %s", interval)
			return notify.RunForUser(ctx, api, *me, interval, alert, logger)
		},
	}
	cmd.Flags().StringVar(&baseURL, "api", cfg.APIBaseURL, "API base URL")
	cmd.Flags().StringVar(&email, "email", os.Getenv("VPMS_EMAIL"), "resident email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("VPMS_PASSWORD"), "resident password")
	cmd.Flags().DurationVar(&interval, "interval", cfg.PollInterval, "poll interval")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
