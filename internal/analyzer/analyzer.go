package analyzer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"depscope/internal/cache"
	"depscope/internal/curation"
	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/telemetry"
	"depscope/internal/worker"

	"github.com/google/uuid"
)

// State tracks how far a run has progressed.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateResolving  State = "RESOLVING"
	StateMerging    State = "MERGING"
	StateCurating   State = "CURATING"
	StateDone       State = "DONE"
)

// Options holds all parameters for one analyzer run.
type Options struct {
	RootDir         string
	PackageManagers []string // plugin ids, processed in this order
	CurationSources []string // plugin ids, applied in this order
	Jobs            int
	PluginConfigs   map[string]plugin.Config
	CacheStore      *cache.Store // nil disables caching
	Version         string
}

// Analyzer drives a full run: definition-file discovery, per-manager
// resolution, graph assembly and curation.
type Analyzer struct {
	registries *plugin.Registries
	opts       Options

	mu    sync.Mutex
	state State
}

// New builds an analyzer over the given registries.
func New(registries *plugin.Registries, opts Options) *Analyzer {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Analyzer{registries: registries, opts: opts, state: StateNotStarted}
}

// State returns the current run state.
func (a *Analyzer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Analyzer) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	telemetry.LogDebug("Analyzer state changed", "state", string(s))
}

// Run executes the full pipeline. Configuration errors (unknown plugin ids,
// bad plugin options) surface before any resolution starts. Per-file failures
// become issues on the result, never errors; cancellation discards the
// partial run and returns the context error.
func (a *Analyzer) Run(ctx context.Context) (*model.AnalyzerResult, error) {
	// Resolve every configured plugin up front so a configuration error
	// fails the run before any resolution work begins.
	managers, err := a.registries.PackageManagers.Resolve(a.opts.PackageManagers, a.opts.PluginConfigs)
	if err != nil {
		return nil, err
	}
	providers, err := a.registries.CurationSources.Resolve(a.opts.CurationSources, a.opts.PluginConfigs)
	if err != nil {
		return nil, err
	}
	defer closeProviders(providers)

	start := time.Now().UTC()
	a.setState(StateResolving)

	pool := worker.NewPool(a.opts.Jobs)
	pool.Start()
	defer pool.Stop()

	runs := make([]ManagerRun, 0, len(managers))
	for _, manager := range managers {
		files, err := DiscoverDefinitionFiles(a.opts.RootDir, manager.DefinitionFilePatterns())
		if err != nil {
			return nil, fmt.Errorf("failed to discover definition files for %s: %w", manager.Name(), err)
		}
		telemetry.LogInfo("Resolving definition files", "manager", manager.Name(), "files", len(files))

		results := resolveFiles(ctx, manager, files, pool, a.opts.CacheStore)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// The manager's output is folded in only once it fully completed, in
		// sorted file order, so concurrent completion order never leaks into
		// the result.
		runs = append(runs, ManagerRun{Manager: manager.Name(), Results: results})
		telemetry.SetPackagesResolved(manager.Name(), countPackages(results))
	}

	a.setState(StateMerging)
	result := Assemble(runs)

	a.setState(StateCurating)
	engine := curation.NewEngine(providers)
	curated, issues, err := engine.Curate(ctx, result.Packages)
	if err != nil {
		return nil, err
	}
	result.Packages = curated
	result.Issues = append(result.Issues, issues...)

	result.Issues = append(result.Issues, result.Validate()...)
	for _, issue := range result.Issues {
		telemetry.TrackIssue(string(issue.Severity))
	}

	result.RunID = uuid.NewString()
	result.StartTime = start
	result.EndTime = time.Now().UTC()
	result.Environment = model.CurrentEnvironment(a.opts.Version)
	result.Sort()

	a.setState(StateDone)
	telemetry.LogInfo("Analyzer run complete",
		"run_id", result.RunID,
		"projects", len(result.Projects),
		"packages", len(result.Packages),
		"issues", len(result.Issues))
	return result, nil
}

// closeProviders releases providers holding connections, like the postgres
// curation source.
func closeProviders(providers []plugin.CurationProvider) {
	for _, provider := range providers {
		if closer, ok := provider.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				telemetry.LogWarn("Failed to close curation provider", "provider", provider.Name(), "error", err)
			}
		}
	}
}

func countPackages(results []model.FileResult) int {
	seen := make(map[model.Identifier]bool)
	for _, r := range results {
		for _, p := range r.Packages {
			seen[p.ID] = true
		}
	}
	return len(seen)
}
