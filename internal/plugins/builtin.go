// Package plugins assembles the registry set of every built-in plugin.
package plugins

import (
	"depscope/internal/plugin"
	"depscope/internal/plugins/advisors/localadvisor"
	"depscope/internal/plugins/curations/filecuration"
	"depscope/internal/plugins/curations/httpcuration"
	"depscope/internal/plugins/curations/pgcuration"
	"depscope/internal/plugins/licensefacts/dirlicense"
	"depscope/internal/plugins/packagemanagers/cargo"
	"depscope/internal/plugins/packagemanagers/gomod"
	"depscope/internal/plugins/packagemanagers/npm"
	"depscope/internal/plugins/reporters/structured"
)

// Default returns registries with every in-tree plugin registered. It fails
// only on duplicate plugin ids, which would be a programming error.
func Default() (*plugin.Registries, error) {
	r := plugin.NewRegistries()

	managers := []plugin.Factory[plugin.PackageManager]{
		gomod.Factory(),
		npm.Factory(),
		cargo.Factory(),
	}
	for _, f := range managers {
		if err := r.PackageManagers.Register(f); err != nil {
			return nil, err
		}
	}

	curationSources := []plugin.Factory[plugin.CurationProvider]{
		filecuration.Factory(),
		httpcuration.Factory(),
		pgcuration.Factory(),
	}
	for _, f := range curationSources {
		if err := r.CurationSources.Register(f); err != nil {
			return nil, err
		}
	}

	if err := r.Advisors.Register(localadvisor.Factory()); err != nil {
		return nil, err
	}
	if err := r.LicenseProviders.Register(dirlicense.Factory()); err != nil {
		return nil, err
	}

	reporters := []plugin.Factory[plugin.Reporter]{
		structured.YAMLFactory(),
		structured.JSONFactory(),
	}
	for _, f := range reporters {
		if err := r.Reporters.Register(f); err != nil {
			return nil, err
		}
	}

	return r, nil
}
