package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/survey"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link stored survey responses to registry entities",
	Long:  "Resolves each unlinked response's MDA name against the registry and persists the matched agency code. Already-linked responses are left alone.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("link"); err != nil {
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

		responses, err := st.ListSurveyResponses(ctx)
		if err != nil {
			return eris.Wrap(err, "list survey responses")
		}

		ptrs := make([]*model.SurveyResponse, len(responses))
		unlinked := map[string]struct{}{}
		for i := range responses {
			ptrs[i] = &responses[i]
			if responses[i].AgencyCode == "" {
				unlinked[responses[i].PublicID] = struct{}{}
			}
		}

		linker := survey.NewLinker(reg, rules).WithThreshold(cfg.Matching.LinkThreshold)
		report := linker.Link(ptrs)

		persisted := 0
		for _, resp := range ptrs {
			if _, was := unlinked[resp.PublicID]; !was || resp.AgencyCode == "" {
				continue
			}
			if err := st.LinkSurveyResponse(ctx, resp.PublicID, resp.AgencyCode, resp.ParentMinistry); err != nil {
				return eris.Wrapf(err, "persist link %s", resp.PublicID)
			}
			persisted++
		}

		zap.L().Info("survey linking complete",
			zap.Int("responses", len(responses)),
			zap.Int("linked_exact", report.Linked),
			zap.Int("linked_fuzzy", report.Fuzzy),
			zap.Int("persisted", persisted),
			zap.Int("unmatched", len(report.Unmatched)),
		)
		for _, u := range report.Unmatched {
			zap.L().Debug("unlinked response",
				zap.String("public_id", u.PublicID),
				zap.String("mda_name", u.MDAName))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
