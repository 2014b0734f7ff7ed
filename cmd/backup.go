package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"invoiceflow/internal/services"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the catalog and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.backups.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode backup: %w", err)
			}
			if out == "" {
				out = services.BackupFilename(time.Now().In(cfg.Location()))
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d items)\n", out, len(doc.Items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default invoiceflow-backup-<date>.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the catalog and settings from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.backups.ParseBackup(data)
			if err != nil {
				return err
			}
			result, err := a.backups.Import(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items\n", result.ItemsImported)
			return nil
		},
	}
	return cmd
}
