package curation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/telemetry"
)

const maxRetries = 3

// Engine folds curations from an ordered list of providers onto resolved
// packages. List order is precedence order: a later provider's non-null
// fields overwrite an earlier provider's, null fields never erase anything.
type Engine struct {
	providers []plugin.CurationProvider

	// BackoffFn computes the wait before retry attempt i (1-based).
	// Tests override it to avoid sleeping; nil selects exponential backoff.
	BackoffFn func(int) time.Duration
}

// NewEngine builds an engine over the given providers in precedence order.
func NewEngine(providers []plugin.CurationProvider) *Engine {
	return &Engine{providers: providers}
}

// Curate queries every provider exactly once with the full package batch,
// merges the returned curations per identifier and applies the merged data to
// the packages. A provider that keeps failing after retries is recorded as an
// ERROR issue on every package in the batch and never blocks the remaining
// providers. The only error returned is context cancellation.
func (e *Engine) Curate(ctx context.Context, pkgs []model.Package) ([]model.Package, []model.Issue, error) {
	if len(e.providers) == 0 || len(pkgs) == 0 {
		return pkgs, nil, nil
	}

	var issues []model.Issue
	merged := make(map[model.Identifier]model.PackageCurationData)

	for _, provider := range e.providers {
		curations, err := e.fetchWithRetry(ctx, provider, pkgs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			telemetry.LogError("Curation provider failed", err, "provider", provider.Name())
			for _, pkg := range pkgs {
				issues = append(issues, model.NewIssue(provider.Name(), model.SeverityError,
					"curation provider %q failed: %v", provider.Name(), err).WithPath(pkg.ID.String()))
			}
			continue
		}

		telemetry.TrackCurations(provider.Name(), len(curations))

		// Stable identifier order inside one provider so repeated entries for
		// the same package merge the same way on every run.
		sort.SliceStable(curations, func(i, j int) bool {
			return curations[i].ID.Compare(curations[j].ID) < 0
		})

		for _, curation := range curations {
			merged[curation.ID] = merged[curation.ID].Merge(curation.Data)
		}

		if reporter, ok := provider.(plugin.IssueReporter); ok {
			issues = append(issues, reporter.Issues()...)
		}
	}

	curated := make([]model.Package, len(pkgs))
	for i, pkg := range pkgs {
		if data, ok := merged[pkg.ID]; ok {
			pkg = data.Apply(pkg)
		}
		curated[i] = pkg
	}

	return curated, issues, nil
}

// fetchWithRetry queries one provider, retrying transient failures with
// bounded backoff. Cancellation during a backoff wait surfaces as ctx.Err().
func (e *Engine) fetchWithRetry(ctx context.Context, provider plugin.CurationProvider, pkgs []model.Package) ([]model.PackageCuration, error) {
	backoffFn := e.BackoffFn
	if backoffFn == nil {
		backoffFn = func(i int) time.Duration {
			return time.Duration(1<<uint(i-1)) * time.Second
		}
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			waitTime := backoffFn(i)
			telemetry.LogInfo("Retrying curation provider", "provider", provider.Name(), "retry", i, "wait", waitTime, "error", lastErr)
			telemetry.TrackProviderRetry(provider.Name())
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		curations, err := provider.GetCurationsFor(ctx, pkgs)
		if err == nil {
			return curations, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
