// Package compliance computes reporting-compliance metrics by joining the
// ingested budget against linked survey responses. Everything here is derived
// data, recomputed from stored records on each run.
package compliance

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/resolve"
)

// Performance index weights. These are a published scoring contract with the
// reporting agencies, not tuning knobs.
const (
	weightCompliance = 0.40
	weightSubmission = 0.20
	weightCompletion = 0.20
	weightEvidence   = 0.10
	weightRecency    = 0.10
)

// Calculator joins budget and survey data per canonical entity.
type Calculator struct {
	reg   *resolve.Registry
	rules *resolve.Rules
	log   *zap.Logger
}

func NewCalculator(reg *resolve.Registry, rules *resolve.Rules) *Calculator {
	if rules == nil {
		rules = resolve.DefaultRules()
	}
	return &Calculator{
		reg:   reg,
		rules: rules,
		log:   zap.L().With(zap.String("component", "compliance")),
	}
}

// EntityCompliance computes one record per canonical agency code appearing on
// either side of the join. Entities with budget but no survey activity score
// zero; entities reporting without a budget line carry zero expected projects
// and a zero rate rather than disappearing.
func (c *Calculator) EntityCompliance(budget []model.BudgetProject, responses []model.SurveyResponse) []model.ComplianceRecord {
	expected := map[string]map[string]struct{}{} // code -> distinct project codes
	for _, p := range budget {
		if p.AgencyCode == "" {
			continue
		}
		code := c.rules.CanonicalCode(p.AgencyCode)
		if expected[code] == nil {
			expected[code] = map[string]struct{}{}
		}
		expected[code][p.ProjectCode] = struct{}{}
	}

	reported := map[string]map[string]struct{}{} // code -> distinct reported ERGP codes
	submissions := map[string]int{}
	fallbackName := map[string]string{}
	for _, r := range responses {
		if r.AgencyCode == "" {
			continue
		}
		code := c.rules.CanonicalCode(r.AgencyCode)
		submissions[code]++
		if fallbackName[code] == "" {
			fallbackName[code] = r.MDAName
		}
		if r.ERGPCode != "" {
			if reported[code] == nil {
				reported[code] = map[string]struct{}{}
			}
			reported[code][r.ERGPCode] = struct{}{}
		}
	}

	codes := map[string]struct{}{}
	for code := range expected {
		codes[code] = struct{}{}
	}
	for code := range submissions {
		codes[code] = struct{}{}
	}

	records := make([]model.ComplianceRecord, 0, len(codes))
	for code := range codes {
		rec := model.ComplianceRecord{
			AgencyCode:       code,
			ExpectedProjects: len(expected[code]),
			ReportedProjects: len(reported[code]),
			TotalSubmissions: submissions[code],
		}
		_, rec.HasBudget = expected[code]
		rec.HasSurvey = submissions[code] > 0
		rec.ComplianceRatePct = complianceRate(rec.ReportedProjects, rec.ExpectedProjects)

		if e := c.reg.Lookup(code); e != nil {
			rec.DisplayName = e.AgencyName
			if renamed := c.rules.CurrentName(code); renamed != "" {
				rec.DisplayName = renamed
			}
			rec.ParentMinistry = e.MinistryName
			rec.IsMinistryHQ = e.IsSelfAccounting || c.rules.IsHeadquarters(e.AgencyName, code)
		} else {
			rec.DisplayName = fallbackName[code]
			c.log.Debug("compliance record for code absent from registry",
				zap.String("agency_code", code))
		}

		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AgencyCode < records[j].AgencyCode
	})
	return records
}

// complianceRate caps at 100: reporting beyond the approved project list is
// full compliance, not extra credit.
func complianceRate(reported, expected int) float64 {
	if expected == 0 {
		return 0
	}
	return math.Min(100, float64(reported)/float64(expected)*100)
}

// MinistryRollup aggregates entity records by parent ministry. The ministry
// rate is aggregate reported over aggregate expected so large agencies weigh
// proportionally; averaging entity rates would let a tiny fully-compliant
// agency mask a large silent one.
func (c *Calculator) MinistryRollup(records []model.ComplianceRecord) []model.MinistryCompliance {
	byMinistry := map[string]*model.MinistryCompliance{}
	var order []string

	for _, rec := range records {
		name := rec.ParentMinistry
		if name == "" {
			name = "UNASSIGNED"
		}
		m, ok := byMinistry[name]
		if !ok {
			m = &model.MinistryCompliance{MinistryName: name}
			byMinistry[name] = m
			order = append(order, name)
		}
		m.AgencyCount++
		m.ExpectedProjects += rec.ExpectedProjects
		m.ReportedProjects += rec.ReportedProjects
		m.TotalSubmissions += rec.TotalSubmissions
	}

	sort.Strings(order)
	out := make([]model.MinistryCompliance, 0, len(order))
	for _, name := range order {
		m := byMinistry[name]
		m.ComplianceRatePct = complianceRate(m.ReportedProjects, m.ExpectedProjects)
		out = append(out, *m)
	}
	return out
}

// PerformanceTable blends compliance with engagement and evidence signals
// into a 0-100 index per entity.
func (c *Calculator) PerformanceTable(records []model.ComplianceRecord, responses []model.SurveyResponse, now time.Time) []model.PerformanceRow {
	type stats struct {
		total         int
		submitted     int
		completionSum float64
		completionN   int
		withEvidence  int
		latest        time.Time
	}
	byCode := map[string]*stats{}
	for _, r := range responses {
		if r.AgencyCode == "" {
			continue
		}
		code := c.rules.CanonicalCode(r.AgencyCode)
		s, ok := byCode[code]
		if !ok {
			s = &stats{}
			byCode[code] = s
		}
		s.total++
		if r.HasSubmittedReport {
			s.submitted++
		}
		if r.PctCompleted != nil {
			s.completionSum += clampPct(*r.PctCompleted)
			s.completionN++
		}
		if r.HasPictures || r.HasGeolocation || r.HasDocuments {
			s.withEvidence++
		}
		if ts := latestTimestamp(r); ts.After(s.latest) {
			s.latest = ts
		}
	}

	rows := make([]model.PerformanceRow, 0, len(records))
	for _, rec := range records {
		row := model.PerformanceRow{ComplianceRecord: rec}
		if s, ok := byCode[rec.AgencyCode]; ok && s.total > 0 {
			row.TotalResponses = s.total
			row.SubmissionRatePct = float64(s.submitted) / float64(s.total) * 100
			if s.completionN > 0 {
				row.AvgCompletionPct = s.completionSum / float64(s.completionN)
			}
			row.EvidenceRatePct = float64(s.withEvidence) / float64(s.total) * 100
			if !s.latest.IsZero() {
				latest := s.latest
				row.LatestResponseAt = &latest
				days := int(now.Sub(latest).Hours() / 24)
				row.DaysSinceLast = &days
				row.RecencyScore = recencyScore(days)
			}
		}

		row.PerformanceIndex = weightCompliance*row.ComplianceRatePct +
			weightSubmission*row.SubmissionRatePct +
			weightCompletion*row.AvgCompletionPct +
			weightEvidence*row.EvidenceRatePct +
			weightRecency*row.RecencyScore*10
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PerformanceIndex != rows[j].PerformanceIndex {
			return rows[i].PerformanceIndex > rows[j].PerformanceIndex
		}
		return rows[i].AgencyCode < rows[j].AgencyCode
	})
	return rows
}

// recencyScore is a step function over days since the last response:
// within 3 days scores 10, within 7 scores 7, within 14 scores 4, else 0.
func recencyScore(days int) float64 {
	switch {
	case days <= 3:
		return 10
	case days <= 7:
		return 7
	case days <= 14:
		return 4
	default:
		return 0
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func latestTimestamp(r model.SurveyResponse) time.Time {
	if r.Updated.After(r.Created) {
		return r.Updated
	}
	return r.Created
}

// Flags counts data-quality red flags per linked entity.
func (c *Calculator) Flags(responses []model.SurveyResponse) []model.QualityFlags {
	byCode := map[string]*model.QualityFlags{}
	var order []string

	for _, r := range responses {
		if r.AgencyCode == "" {
			continue
		}
		code := c.rules.CanonicalCode(r.AgencyCode)
		f, ok := byCode[code]
		if !ok {
			f = &model.QualityFlags{AgencyCode: code, DisplayName: r.MDAName}
			if e := c.reg.Lookup(code); e != nil {
				f.DisplayName = e.AgencyName
			}
			byCode[code] = f
			order = append(order, code)
		}
		f.Responses++
		if r.AmountUtilized != nil && r.AmountReleased != nil && *r.AmountUtilized > *r.AmountReleased {
			f.UtilizedExceedsReleased++
		}
		if r.ERGPCode == "" {
			f.MissingERGPCode++
		}
		if r.State == "" {
			f.MissingState++
		}
		if r.LGA == "" {
			f.MissingLGA++
		}
		if r.HasSubmittedReport && (r.Appropriation == nil || *r.Appropriation == 0) {
			f.SubmittedNoAppropriation++
		}
	}

	sort.Strings(order)
	out := make([]model.QualityFlags, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// Overview summarizes project-level reporting coverage across the whole
// budget: how many approved projects have at least one survey submission
// carrying their code.
func (c *Calculator) Overview(budget []model.BudgetProject, responses []model.SurveyResponse) model.Overview {
	budgetCodes := map[string]struct{}{}
	for _, p := range budget {
		budgetCodes[p.ProjectCode] = struct{}{}
	}
	surveyCodes := map[string]struct{}{}
	for _, r := range responses {
		if r.ERGPCode != "" {
			surveyCodes[r.ERGPCode] = struct{}{}
		}
	}

	reported := 0
	for code := range budgetCodes {
		if _, ok := surveyCodes[code]; ok {
			reported++
		}
	}

	o := model.Overview{
		TotalBudgetProjects: len(budgetCodes),
		ReportedProjects:    reported,
		UnreportedProjects:  len(budgetCodes) - reported,
	}
	if o.TotalBudgetProjects > 0 {
		o.ReportedPct = float64(o.ReportedProjects) / float64(o.TotalBudgetProjects) * 100
		o.UnreportedPct = 100 - o.ReportedPct
	}
	return o
}
