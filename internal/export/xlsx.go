// Package export writes the compliance report workbook.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/model"
)

// Report bundles everything one workbook carries.
type Report struct {
	Overview   model.Overview
	Entities   []model.ComplianceRecord
	Ministries []model.MinistryCompliance
	Rows       []model.PerformanceRow
	Flags      []model.QualityFlags
	Unmatched  []model.UnmatchedBudgetRecord
}

const pctFormat = "0.00"

// WriteWorkbook writes the full report to path as an .xlsx workbook, one
// sheet per section.
func WriteWorkbook(path string, report *Report) error {
	file := xlsx.NewFile()

	if err := overviewSheet(file, report.Overview); err != nil {
		return err
	}
	if err := entitySheet(file, report.Entities); err != nil {
		return err
	}
	if err := ministrySheet(file, report.Ministries); err != nil {
		return err
	}
	if err := performanceSheet(file, report.Rows); err != nil {
		return err
	}
	if err := flagSheet(file, report.Flags); err != nil {
		return err
	}
	if err := unmatchedSheet(file, report.Unmatched); err != nil {
		return err
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	zap.L().Info("report workbook written",
		zap.String("path", path),
		zap.Int("entities", len(report.Entities)),
		zap.Int("ministries", len(report.Ministries)),
		zap.Int("unmatched", len(report.Unmatched)))
	return nil
}

func addSheet(file *xlsx.File, name string, header ...string) (*xlsx.Sheet, error) {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", name)
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return sheet, nil
}

func overviewSheet(file *xlsx.File, o model.Overview) error {
	sheet, err := addSheet(file, "Overview", "Metric", "Value")
	if err != nil {
		return err
	}
	add := func(metric string, fill func(c *xlsx.Cell)) {
		row := sheet.AddRow()
		row.AddCell().SetString(metric)
		fill(row.AddCell())
	}
	add("Total budget projects", func(c *xlsx.Cell) { c.SetInt(o.TotalBudgetProjects) })
	add("Reported projects", func(c *xlsx.Cell) { c.SetInt(o.ReportedProjects) })
	add("Unreported projects", func(c *xlsx.Cell) { c.SetInt(o.UnreportedProjects) })
	add("Reported %", func(c *xlsx.Cell) { c.SetFloatWithFormat(o.ReportedPct, pctFormat) })
	add("Unreported %", func(c *xlsx.Cell) { c.SetFloatWithFormat(o.UnreportedPct, pctFormat) })
	return nil
}

func entitySheet(file *xlsx.File, records []model.ComplianceRecord) error {
	sheet, err := addSheet(file, "Entity Compliance",
		"Agency Code", "Agency", "Ministry", "Expected Projects",
		"Reported Projects", "Submissions", "Compliance %", "Ministry HQ")
	if err != nil {
		return err
	}
	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.AgencyCode)
		row.AddCell().SetString(rec.DisplayName)
		row.AddCell().SetString(rec.ParentMinistry)
		row.AddCell().SetInt(rec.ExpectedProjects)
		row.AddCell().SetInt(rec.ReportedProjects)
		row.AddCell().SetInt(rec.TotalSubmissions)
		row.AddCell().SetFloatWithFormat(rec.ComplianceRatePct, pctFormat)
		row.AddCell().SetBool(rec.IsMinistryHQ)
	}
	return nil
}

func ministrySheet(file *xlsx.File, ministries []model.MinistryCompliance) error {
	sheet, err := addSheet(file, "Ministry Rollup",
		"Ministry", "Agencies", "Expected Projects", "Reported Projects",
		"Submissions", "Compliance %")
	if err != nil {
		return err
	}
	for _, m := range ministries {
		row := sheet.AddRow()
		row.AddCell().SetString(m.MinistryName)
		row.AddCell().SetInt(m.AgencyCount)
		row.AddCell().SetInt(m.ExpectedProjects)
		row.AddCell().SetInt(m.ReportedProjects)
		row.AddCell().SetInt(m.TotalSubmissions)
		row.AddCell().SetFloatWithFormat(m.ComplianceRatePct, pctFormat)
	}
	return nil
}

func performanceSheet(file *xlsx.File, rows []model.PerformanceRow) error {
	sheet, err := addSheet(file, "Performance",
		"Agency Code", "Agency", "Ministry", "Compliance %", "Submission %",
		"Avg Completion %", "Evidence %", "Recency", "Performance Index")
	if err != nil {
		return err
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.AgencyCode)
		row.AddCell().SetString(r.DisplayName)
		row.AddCell().SetString(r.ParentMinistry)
		row.AddCell().SetFloatWithFormat(r.ComplianceRatePct, pctFormat)
		row.AddCell().SetFloatWithFormat(r.SubmissionRatePct, pctFormat)
		row.AddCell().SetFloatWithFormat(r.AvgCompletionPct, pctFormat)
		row.AddCell().SetFloatWithFormat(r.EvidenceRatePct, pctFormat)
		row.AddCell().SetFloatWithFormat(r.RecencyScore, "0.0")
		row.AddCell().SetFloatWithFormat(r.PerformanceIndex, pctFormat)
	}
	return nil
}

func flagSheet(file *xlsx.File, flags []model.QualityFlags) error {
	sheet, err := addSheet(file, "Quality Flags",
		"Agency Code", "Agency", "Responses", "Utilized > Released",
		"Missing ERGP Code", "Missing State", "Missing LGA",
		"Submitted w/o Appropriation")
	if err != nil {
		return err
	}
	for _, f := range flags {
		row := sheet.AddRow()
		row.AddCell().SetString(f.AgencyCode)
		row.AddCell().SetString(f.DisplayName)
		row.AddCell().SetInt(f.Responses)
		row.AddCell().SetInt(f.UtilizedExceedsReleased)
		row.AddCell().SetInt(f.MissingERGPCode)
		row.AddCell().SetInt(f.MissingState)
		row.AddCell().SetInt(f.MissingLGA)
		row.AddCell().SetInt(f.SubmittedNoAppropriation)
	}
	return nil
}

func unmatchedSheet(file *xlsx.File, unmatched []model.UnmatchedBudgetRecord) error {
	sheet, err := addSheet(file, "Unmatched Budget",
		"Project Code", "Agency", "Agency Code", "Ministry", "Ministry Code")
	if err != nil {
		return err
	}
	for _, u := range unmatched {
		row := sheet.AddRow()
		row.AddCell().SetString(u.ProjectCode)
		row.AddCell().SetString(u.AgencyName)
		row.AddCell().SetString(u.AgencyCode)
		row.AddCell().SetString(u.MinistryName)
		row.AddCell().SetString(u.MinistryCode)
	}
	return nil
}
