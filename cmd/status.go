package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored dataset counts and the last ingestion run",
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

		entities, err := st.ListEntities(ctx)
		if err != nil {
			return eris.Wrap(err, "list entities")
		}
		budget, err := st.ListBudgetProjects(ctx)
		if err != nil {
			return eris.Wrap(err, "list budget projects")
		}
		responses, err := st.ListSurveyResponses(ctx)
		if err != nil {
			return eris.Wrap(err, "list survey responses")
		}

		linked := 0
		for _, r := range responses {
			if r.AgencyCode != "" {
				linked++
			}
		}

		zap.L().Info("store status",
			zap.Int("entities", len(entities)),
			zap.Int("budget_projects", len(budget)),
			zap.Int("survey_responses", len(responses)),
			zap.Int("linked_responses", linked),
		)

		run, err := st.LastIngestion(ctx)
		if err != nil {
			return eris.Wrap(err, "last ingestion")
		}
		if run == nil {
			zap.L().Info("no budget ingestion recorded")
			return nil
		}

		fields := []zap.Field{
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.String("source", run.SourcePath),
			zap.Time("started_at", run.StartedAt),
		}
		if run.FinishedAt != nil {
			fields = append(fields, zap.Time("finished_at", *run.FinishedAt))
		}
		if run.Report != nil {
			fields = append(fields,
				zap.Int("rows_stored", run.Report.RowsStored),
				zap.Int("unmatched", len(run.Report.Unmatched)))
		}
		if run.Error != "" {
			fields = append(fields, zap.String("error", run.Error))
		}
		zap.L().Info("last ingestion", fields...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
