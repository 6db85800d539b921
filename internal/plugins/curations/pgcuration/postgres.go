// Package pgcuration serves package curations from a PostgreSQL table.
package pgcuration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

const providerName = "postgres"

var (
	optDSN = plugin.Option{
		Name:        "dsn",
		Description: "PostgreSQL connection string.",
		Type:        plugin.SecretType,
		Required:    true,
	}
	optTable = plugin.Option{
		Name:        "table",
		Description: "Table holding (id, curations) rows.",
		Type:        plugin.StringType,
		Default:     "package_curations",
	}
)

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          providerName,
		DisplayName: "Curations Database",
		Description: "Queries a PostgreSQL table for curations matching the package batch.",
		Options:     []plugin.Option{optDSN, optTable},
	}
}

// Factory returns the registry factory for the postgres provider. Opening
// the handle is lazy; an unreachable database surfaces on the first query,
// where the caller's retry policy applies.
func Factory() plugin.Factory[plugin.CurationProvider] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.CurationProvider, error) {
		dsn, err := optDSN.StringValue(config)
		if err != nil {
			return nil, err
		}
		table, err := optTable.StringValue(config)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &Provider{db: db, table: table}, nil
	})
}

// Provider runs one batched query per analyzer run.
type Provider struct {
	db     *sql.DB
	table  string
	issues []model.Issue
}

func (p *Provider) Name() string { return providerName }

// GetCurationsFor selects the rows whose id matches a package in the batch.
// Rows carry the curation payload as YAML; rows that fail to decode degrade
// to issues.
func (p *Provider) GetCurationsFor(ctx context.Context, pkgs []model.Package) ([]model.PackageCuration, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		ids = append(ids, pkg.ID.String())
	}

	query := fmt.Sprintf(`SELECT id, curations FROM %s WHERE id = ANY($1)`, pq.QuoteIdentifier(p.table))
	rows, err := p.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("curation query failed: %w", err)
	}
	defer rows.Close()

	var curations []model.PackageCuration
	for rows.Next() {
		var rawID string
		var payload []byte
		if err := rows.Scan(&rawID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan curation row: %w", err)
		}

		id, err := model.ParseIdentifier(rawID)
		if err != nil {
			p.issues = append(p.issues, model.NewIssue(providerName, model.SeverityWarning,
				"skipped curation row %q: %v", rawID, err))
			continue
		}
		var data model.PackageCurationData
		if err := yaml.Unmarshal(payload, &data); err != nil {
			p.issues = append(p.issues, model.NewIssue(providerName, model.SeverityWarning,
				"skipped curation row %q: %v", rawID, err))
			continue
		}
		curations = append(curations, model.PackageCuration{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("curation query failed: %w", err)
	}
	return curations, nil
}

// Issues returns the rows that failed to parse.
func (p *Provider) Issues() []model.Issue { return p.issues }

// Close releases the connection pool.
func (p *Provider) Close() error { return p.db.Close() }
