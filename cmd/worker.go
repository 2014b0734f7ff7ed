package main

import (
	"invoiceflow/internal/jobs"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/services"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background mail worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.WithComponent("worker")

			notifier := services.NewNotificationService(services.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
			})
			srv := asynq.NewServer(redisOpt(cfg), jobs.WorkerConfig(concurrency))

			log.Info().Int("concurrency", concurrency).Str("redis", cfg.RedisAddr).Msg("worker starting")
			// Run blocks until SIGINT or SIGTERM.
			return srv.Run(jobs.NewServeMux(jobs.NewEmailHandlers(notifier)))
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "number of tasks processed in parallel")
	return cmd
}
