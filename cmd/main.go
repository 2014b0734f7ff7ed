package main

import (
	"fmt"
	"os"

	"invoiceflow/internal/config"
	"invoiceflow/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	_ = logger.Setup(logger.DefaultConfig())
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoiceflow",
		Short:         "Inventory, GST invoicing and direct sales for a single store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newUserCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

// loadConfig reads configuration and sets up the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}
