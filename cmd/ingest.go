package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/ingest"
	"github.com/govwatch/compliance-cli/internal/resolve"
)

var ingestFilePath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest an approved-budget spreadsheet",
	Long:  "Parses the budget file, aggregates duplicate rows, resolves every record against the entity registry, and replaces the stored budget wholesale.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		reg, err := loadRegistry(ctx, st)
		if err != nil {
			return err
		}
		rules, err := loadRules()
		if err != nil {
			return err
		}

		matcher := resolve.NewMatcher(reg)
		if cfg.Matching.ScopedThreshold > 0 {
			matcher.ScopedMin = cfg.Matching.ScopedThreshold
		}
		if cfg.Matching.GlobalThreshold > 0 {
			matcher.GlobalMin = cfg.Matching.GlobalThreshold
		}

		report, err := ingest.NewPipeline(matcher, rules, st).Run(ctx, ingestFilePath)
		if err != nil {
			return err
		}

		zap.L().Info("budget ingested",
			zap.String("file", ingestFilePath),
			zap.Int("rows_read", report.RowsRead),
			zap.Int("rows_dropped", report.RowsDropped),
			zap.Int("rows_stored", report.RowsStored),
			zap.Int("unmatched", len(report.Unmatched)),
			zap.Any("match_counts", report.MatchCounts),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFilePath, "file", "", "path to budget CSV/XLSX (required)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}
