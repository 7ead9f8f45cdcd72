package main

import (
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/compliance"
	"github.com/govwatch/compliance-cli/internal/export"
)

var reportOutPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute compliance metrics and write the report workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("report"); err != nil {
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

		budget, err := st.ListBudgetProjects(ctx)
		if err != nil {
			return eris.Wrap(err, "list budget projects")
		}
		responses, err := st.ListSurveyResponses(ctx)
		if err != nil {
			return eris.Wrap(err, "list survey responses")
		}

		calc := compliance.NewCalculator(reg, rules)
		records := calc.EntityCompliance(budget, responses)
		report := &export.Report{
			Overview:   calc.Overview(budget, responses),
			Entities:   records,
			Ministries: calc.MinistryRollup(records),
			Rows:       calc.PerformanceTable(records, responses, time.Now().UTC()),
			Flags:      calc.Flags(responses),
		}

		// The unmatched list rides on the last successful ingestion.
		if run, err := st.LastIngestion(ctx); err != nil {
			return eris.Wrap(err, "last ingestion")
		} else if run != nil && run.Report != nil {
			report.Unmatched = run.Report.Unmatched
		}

		out := reportOutPath
		if out == "" {
			out = filepath.Join(cfg.Export.OutputDir,
				"compliance-"+time.Now().Format("2006-01-02")+".xlsx")
		}
		if err := export.WriteWorkbook(out, report); err != nil {
			return err
		}

		zap.L().Info("compliance report written",
			zap.String("path", out),
			zap.Int("entities", len(records)),
			zap.Int("budget_projects", report.Overview.TotalBudgetProjects),
			zap.Float64("reported_pct", report.Overview.ReportedPct),
		)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOutPath, "out", "", "output workbook path (default: compliance-<date>.xlsx in export.output_dir)")
	rootCmd.AddCommand(reportCmd)
}
