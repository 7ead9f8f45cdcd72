package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/govwatch/compliance-cli/internal/resolve"
	"github.com/govwatch/compliance-cli/internal/store"
)

// openStore opens the configured backend and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadRules reads the consolidation rules file when configured, otherwise the
// built-in defaults.
func loadRules() (*resolve.Rules, error) {
	if cfg.Registry.RulesPath == "" {
		return resolve.DefaultRules(), nil
	}
	rules, err := resolve.LoadRules(cfg.Registry.RulesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load consolidation rules")
	}
	return rules, nil
}

// loadRegistry builds the in-memory registry from stored entities.
func loadRegistry(ctx context.Context, st store.Store) (*resolve.Registry, error) {
	entities, err := st.ListEntities(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list entities")
	}
	if len(entities) == 0 {
		return nil, eris.New("entity registry is empty; run 'compliance-cli registry load' first")
	}
	return resolve.NewRegistry(entities), nil
}
