package ingest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/resolve"
	"github.com/govwatch/compliance-cli/internal/tabular"
)

// Sink is the slice of the store the pipeline writes to.
type Sink interface {
	ReplaceBudgetProjects(ctx context.Context, projects []model.BudgetProject) (int, error)
	RecordIngestion(ctx context.Context, run *model.IngestionRun) error
}

// Pipeline ingests a budget workbook: parse, aggregate duplicates, resolve
// each record against the entity registry, then replace the stored budget
// wholesale. Callers must not run two ingestions concurrently against the
// same store.
type Pipeline struct {
	matcher *resolve.Matcher
	rules   *resolve.Rules
	sink    Sink
	log     *zap.Logger
}

func NewPipeline(matcher *resolve.Matcher, rules *resolve.Rules, sink Sink) *Pipeline {
	if rules == nil {
		rules = resolve.DefaultRules()
	}
	return &Pipeline{
		matcher: matcher,
		rules:   rules,
		sink:    sink,
		log:     zap.L().With(zap.String("component", "ingest")),
	}
}

// Run ingests the file at path and records the attempt in the ingestion log.
// The stored budget is untouched unless the whole file processes cleanly.
func (p *Pipeline) Run(ctx context.Context, path string) (*model.IngestionReport, error) {
	run := &model.IngestionRun{
		ID:         uuid.New().String(),
		SourcePath: path,
		Status:     model.IngestionRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := p.sink.RecordIngestion(ctx, run); err != nil {
		return nil, eris.Wrap(err, "ingest: record run")
	}

	report, err := p.ingestFile(ctx, path)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = model.IngestionFailed
		run.Error = err.Error()
	} else {
		run.Status = model.IngestionComplete
		run.Report = report
	}
	if recErr := p.sink.RecordIngestion(ctx, run); recErr != nil {
		p.log.Warn("failed to update ingestion run", zap.String("run_id", run.ID), zap.Error(recErr))
	}
	return report, err
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) (*model.IngestionReport, error) {
	table, err := tabular.ReadFile(path, tabular.Options{})
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	return p.Ingest(ctx, table)
}

// Ingest runs the full pipeline over an already-parsed table.
func (p *Pipeline) Ingest(ctx context.Context, table *tabular.Table) (*model.IngestionReport, error) {
	cols, err := resolveColumns(table)
	if err != nil {
		return nil, err
	}

	report := &model.IngestionReport{MatchCounts: map[string]int{}}

	records := p.parseRows(table, cols, report)
	aggregated := aggregate(records)
	report.RowsAggregated = len(aggregated)

	projects := make([]model.BudgetProject, 0, len(aggregated))
	for _, rec := range aggregated {
		projects = append(projects, p.resolveRecord(rec, report))
	}
	projects = mergeResolved(projects)

	stored, err := p.sink.ReplaceBudgetProjects(ctx, projects)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: replace budget projects")
	}
	report.RowsStored = stored

	p.log.Info("budget ingestion complete",
		zap.Int("rows_read", report.RowsRead),
		zap.Int("rows_dropped", report.RowsDropped),
		zap.Int("rows_aggregated", report.RowsAggregated),
		zap.Int("rows_stored", report.RowsStored),
		zap.Int("unmatched", len(report.Unmatched)))
	return report, nil
}

// rawRecord is one budget row after parsing and one aggregation bucket after
// duplicate collapse.
type rawRecord struct {
	projectCode   string
	projectName   string
	statusType    string
	appropriation float64
	ministry      string
	agency        string
	agencyCode    string
	ministryCode  string
}

func (p *Pipeline) parseRows(table *tabular.Table, cols map[string]int, report *model.IngestionReport) []rawRecord {
	cell := func(row int, field string) string {
		pos := cols[field]
		if pos < 0 {
			return ""
		}
		return table.Cell(row, pos)
	}

	var records []rawRecord
	for i := range table.Rows {
		report.RowsRead++

		code := strings.ToUpper(strings.TrimSpace(cell(i, colCode)))
		agency := strings.TrimSpace(cell(i, colAgency))
		amountRaw := strings.TrimSpace(cell(i, colAppropriation))
		if code == "" || agency == "" || amountRaw == "" {
			report.RowsDropped++
			continue
		}

		amount, err := parseAmount(amountRaw)
		if err != nil {
			p.log.Debug("dropping row with bad appropriation",
				zap.Int("row", i), zap.String("value", amountRaw))
			report.RowsDropped++
			continue
		}

		records = append(records, rawRecord{
			projectCode:   code,
			projectName:   strings.TrimSpace(cell(i, colProjectName)),
			statusType:    strings.TrimSpace(cell(i, colStatusType)),
			appropriation: amount,
			ministry:      strings.TrimSpace(cell(i, colMinistry)),
			agency:        agency,
			agencyCode:    strings.TrimSpace(cell(i, colAgencyCode)),
			ministryCode:  strings.TrimSpace(cell(i, colMinistryCode)),
		})
	}
	return records
}

// parseAmount accepts plain or comma-grouped numerics and rejects negatives.
func parseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse amount %q", s)
	}
	if v < 0 {
		return 0, eris.Errorf("negative amount %q", s)
	}
	return v, nil
}

// aggregate collapses duplicate rows before entity resolution. The identity
// of a row is (project code, entity key): appropriations sum, descriptive
// fields keep the first non-empty value. Output order follows first
// appearance in the input.
func aggregate(records []rawRecord) []rawRecord {
	index := make(map[string]*rawRecord)
	var order []string

	for _, rec := range records {
		key := rec.projectCode + "|" + resolve.EntityKey(rec.agencyCode, rec.agency)
		b, ok := index[key]
		if !ok {
			r := rec
			index[key] = &r
			order = append(order, key)
			continue
		}
		b.appropriation += rec.appropriation
		if b.projectName == "" {
			b.projectName = rec.projectName
		}
		if b.statusType == "" {
			b.statusType = rec.statusType
		}
		if b.ministry == "" {
			b.ministry = rec.ministry
		}
		if b.ministryCode == "" {
			b.ministryCode = rec.ministryCode
		}
	}

	out := make([]rawRecord, 0, len(order))
	for _, key := range order {
		out = append(out, *index[key])
	}
	return out
}

// mergeResolved collapses records sharing a stored identity after resolution.
// A code-keyed group and a name-keyed group for the same project can both
// land on one entity; the budget table is unique on (project_code,
// agency_code, agency_normalized), so they must merge before the replace.
func mergeResolved(projects []model.BudgetProject) []model.BudgetProject {
	index := make(map[string]int, len(projects))
	out := make([]model.BudgetProject, 0, len(projects))

	for _, p := range projects {
		key := p.ProjectCode + "|" + p.AgencyCode + "|" + p.AgencyNormalized
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		out[i].Appropriation += p.Appropriation
		if out[i].ProjectName == "" {
			out[i].ProjectName = p.ProjectName
		}
		if out[i].StatusType == "" {
			out[i].StatusType = p.StatusType
		}
		if out[i].MinistryCode == "" {
			out[i].MinistryCode = p.MinistryCode
		}
		if out[i].MinistryName == "" {
			out[i].MinistryName = p.MinistryName
		}
	}
	return out
}

func (p *Pipeline) resolveRecord(rec rawRecord, report *model.IngestionReport) model.BudgetProject {
	match := p.matcher.Resolve(rec.agency, rec.agencyCode, rec.ministryCode)
	report.MatchCounts[match.Kind.String()]++

	proj := model.BudgetProject{
		ProjectCode:   rec.projectCode,
		ProjectName:   rec.projectName,
		StatusType:    rec.statusType,
		Appropriation: rec.appropriation,
		MinistryCode:  rec.ministryCode,
		MinistryName:  rec.ministry,
		AgencyName:    rec.agency,
	}

	if match.Matched() {
		proj.AgencyCode = p.rules.CanonicalCode(match.Entity.AgencyCode)
		proj.AgencyName = match.Entity.AgencyName
		if renamed := p.rules.CurrentName(match.Entity.AgencyCode); renamed != "" {
			proj.AgencyName = renamed
		}
		proj.AgencyNormalized = match.Entity.AgencyNameNormalized
		if match.Entity.MinistryCode != "" {
			proj.MinistryCode = match.Entity.MinistryCode
		}
		if match.Entity.MinistryName != "" {
			proj.MinistryName = match.Entity.MinistryName
		}
	} else {
		proj.AgencyNormalized = resolve.NormalizeName(rec.agency)
		report.Unmatched = append(report.Unmatched, model.UnmatchedBudgetRecord{
			ProjectCode:  rec.projectCode,
			AgencyName:   rec.agency,
			AgencyCode:   rec.agencyCode,
			MinistryName: rec.ministry,
			MinistryCode: rec.ministryCode,
		})
	}
	return proj
}
