package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/config"
	"fastscribe/internal/worker"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Serve the remote transcription worker backed by the local engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			server, err := newWorkerServer(cfg, logger, bind)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default worker.bind)")
	return cmd
}

func newWorkerServer(cfg *config.Config, logger *slog.Logger, bind string) (*worker.Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		bind = cfg.Worker.Bind
	}
	return worker.New(worker.Config{
		Bind:           bind,
		Token:          cfg.Worker.Token,
		MaxUploadBytes: int64(cfg.Worker.MaxUploadMB) << 20,
		WorkRoot:       cfg.WorkRoot(),
	}, newLocalEngine(cfg), logger)
}
