// Package store persists the reconciled datasets: the entity registry,
// aggregated budget projects, survey responses, and the ingestion run log.
package store

import (
	"context"

	"github.com/govwatch/compliance-cli/internal/model"
)

// Store defines the persistence interface for the compliance pipeline.
// Registry and budget loads are wholesale replacements; survey responses
// accumulate by upsert.
type Store interface {
	// Registry
	ReplaceEntities(ctx context.Context, entities []model.Entity) (int, error)
	ListEntities(ctx context.Context) ([]model.Entity, error)

	// Budget
	ReplaceBudgetProjects(ctx context.Context, projects []model.BudgetProject) (int, error)
	ListBudgetProjects(ctx context.Context) ([]model.BudgetProject, error)

	// Survey
	UpsertSurveyResponses(ctx context.Context, responses []model.SurveyResponse) (int, error)
	ListSurveyResponses(ctx context.Context) ([]model.SurveyResponse, error)
	LinkSurveyResponse(ctx context.Context, publicID, agencyCode, parentMinistry string) error

	// Ingestion log
	RecordIngestion(ctx context.Context, run *model.IngestionRun) error
	LastIngestion(ctx context.Context) (*model.IngestionRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
