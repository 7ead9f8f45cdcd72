package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/ingest"
)

var registryFilePath string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the canonical ministry/agency registry",
}

var registryLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the registry reference dataset from CSV/XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("registry"); err != nil {
			return err
		}

		entities, dropped, err := ingest.LoadEntities(registryFilePath, cfg.Registry.FiscalYear)
		if err != nil {
			return eris.Wrap(err, "load registry file")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		stored, err := st.ReplaceEntities(ctx, entities)
		if err != nil {
			return eris.Wrap(err, "replace entities")
		}

		zap.L().Info("registry loaded",
			zap.String("file", registryFilePath),
			zap.Int("entities", stored),
			zap.Int("dropped", dropped),
		)
		return nil
	},
}

func init() {
	registryLoadCmd.Flags().StringVar(&registryFilePath, "file", "", "path to registry CSV/XLSX (required)")
	_ = registryLoadCmd.MarkFlagRequired("file")
	registryCmd.AddCommand(registryLoadCmd)
	rootCmd.AddCommand(registryCmd)
}
