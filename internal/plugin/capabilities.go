package plugin

import (
	"context"

	"depscope/internal/model"
)

// Capability names, used in registry error messages.
const (
	CapabilityPackageManager  = "package manager"
	CapabilityCurationSource  = "curation provider"
	CapabilityAdvisor         = "advisor"
	CapabilityScanner         = "scanner"
	CapabilityReporter        = "reporter"
	CapabilityLicenseProvider = "license fact provider"
)

// PackageManager resolves dependency metadata from project definition files.
type PackageManager interface {
	// Name is the manager's id; it keys the manager's dependency graph in the
	// analyzer result.
	Name() string
	// DefinitionFilePatterns returns the glob patterns (matched against file
	// base names) identifying this manager's definition files.
	DefinitionFilePatterns() []string
	// ResolveFile resolves a single definition file.
	ResolveFile(ctx context.Context, definitionFile string) (model.FileResult, error)
	// ResolveDependencies resolves all given files, recovering each file's
	// failure as issues on a synthetic project. It returns an error only for
	// manager-level problems, never for a single file.
	ResolveDependencies(ctx context.Context, definitionFiles []string) (map[string]model.FileResult, error)
}

// CurationProvider serves metadata corrections. It is queried exactly once
// per run with the full package batch so backing I/O can be amortized, and it
// must not assume it is the only provider.
type CurationProvider interface {
	Name() string
	GetCurationsFor(ctx context.Context, pkgs []model.Package) ([]model.PackageCuration, error)
}

// Advisor looks up known defects for a batch of packages, read-only.
type Advisor interface {
	Name() string
	Advise(ctx context.Context, pkgs []model.Package) ([]model.AdvisorRecord, error)
}

// Scanner inspects package source artifacts. Concrete scanners shell out to
// external tools and live outside this repository; the capability exists so
// they plug into the same registry machinery.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, pkg model.Package) ([]model.Issue, error)
}

// Reporter renders an analyzer result into a persisted document and returns
// the path it wrote.
type Reporter interface {
	Name() string
	Generate(ctx context.Context, result *model.AnalyzerResult, outputDir string) (string, error)
}

// LicenseFactProvider serves license texts by license identifier.
type LicenseFactProvider interface {
	Name() string
	HasLicenseText(id string) bool
	GetLicenseText(id string) (string, bool)
}

// IssueReporter is implemented by plugins that accumulate non-fatal issues
// while doing their work, for example a curation file with individually
// malformed records. Callers check for it after each batch call.
type IssueReporter interface {
	Issues() []model.Issue
}

// Registries aggregates one registry per capability. It is constructed
// explicitly at startup and passed by reference into the orchestrator; there
// is no ambient global registry.
type Registries struct {
	PackageManagers  *Registry[PackageManager]
	CurationSources  *Registry[CurationProvider]
	Advisors         *Registry[Advisor]
	Scanners         *Registry[Scanner]
	Reporters        *Registry[Reporter]
	LicenseProviders *Registry[LicenseFactProvider]
}

// NewRegistries returns an empty registry set.
func NewRegistries() *Registries {
	return &Registries{
		PackageManagers:  NewRegistry[PackageManager](CapabilityPackageManager),
		CurationSources:  NewRegistry[CurationProvider](CapabilityCurationSource),
		Advisors:         NewRegistry[Advisor](CapabilityAdvisor),
		Scanners:         NewRegistry[Scanner](CapabilityScanner),
		Reporters:        NewRegistry[Reporter](CapabilityReporter),
		LicenseProviders: NewRegistry[LicenseFactProvider](CapabilityLicenseProvider),
	}
}

// factoryFunc adapts a descriptor plus a create function into a Factory.
type factoryFunc[T any] struct {
	descriptor Descriptor
	create     func(Config) (T, error)
}

func (f factoryFunc[T]) Descriptor() Descriptor     { return f.descriptor }
func (f factoryFunc[T]) Create(c Config) (T, error) { return f.create(c) }

// NewFactory builds a Factory from a descriptor and a create function.
func NewFactory[T any](descriptor Descriptor, create func(Config) (T, error)) Factory[T] {
	return factoryFunc[T]{descriptor: descriptor, create: create}
}
