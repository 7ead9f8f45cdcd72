package main

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/survey"
	"github.com/govwatch/compliance-cli/pkg/surveyapi"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch survey responses from the reporting platform",
	Long:  "Pulls all configured survey sources in parallel, extracts the scalar fields from each response, and upserts them by public id. Existing entity links survive re-fetches.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fetchedAt := time.Now().UTC()

		var mu sync.Mutex
		var responses []model.SurveyResponse

		g, gctx := errgroup.WithContext(ctx)
		for _, src := range cfg.Survey.Sources {
			src := src
			g.Go(func() error {
				client := surveyapi.NewClient(
					cfg.Survey.BaseURL, src.Endpoint,
					cfg.Survey.Token, cfg.Survey.OrganizationID,
					surveyapi.WithPageSize(cfg.Survey.PageSize),
					surveyapi.WithRateLimit(cfg.Survey.RatePerSec, cfg.Survey.PageSize),
				)

				raw, err := client.FetchAll(gctx)
				if err != nil {
					return eris.Wrapf(err, "fetch %s", src.Name)
				}

				extracted := make([]model.SurveyResponse, 0, len(raw))
				for _, r := range raw {
					extracted = append(extracted, survey.Extract(r, src.Name, fetchedAt))
				}

				zap.L().Info("survey source fetched",
					zap.String("source", src.Name),
					zap.Int("responses", len(extracted)))

				mu.Lock()
				responses = append(responses, extracted...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		stored, err := st.UpsertSurveyResponses(ctx, responses)
		if err != nil {
			return eris.Wrap(err, "upsert survey responses")
		}

		zap.L().Info("survey fetch complete",
			zap.Int("sources", len(cfg.Survey.Sources)),
			zap.Int("responses", len(responses)),
			zap.Int("stored", stored),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
