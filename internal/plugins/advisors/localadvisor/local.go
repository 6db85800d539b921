// Package localadvisor serves package advisories from a local YAML file.
package localadvisor

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

const advisorName = "local"

var optPath = plugin.Option{
	Name:        "path",
	Description: "Path of the YAML advisories file.",
	Type:        plugin.StringType,
	Required:    true,
}

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          advisorName,
		DisplayName: "Local Advisories",
		Description: "Looks up known defects in a YAML map of package identifier to advisories.",
		Options:     []plugin.Option{optPath},
	}
}

// Factory returns the registry factory for the local advisor.
func Factory() plugin.Factory[plugin.Advisor] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.Advisor, error) {
		path, err := optPath.StringValue(config)
		if err != nil {
			return nil, err
		}
		return load(path)
	})
}

// Advisor matches packages against the advisories loaded at construction.
// Entries keyed without a version apply to every version of that package;
// entries keyed with one apply on top.
type Advisor struct {
	exact      map[model.Identifier][]model.Advisory
	anyVersion map[model.Identifier][]model.Advisory
	issues     []model.Issue
}

func (a *Advisor) Name() string { return advisorName }

// Advise returns one record per batched package that has at least one
// advisory. Advisories listed under both the exact and the version-less key
// are reported once.
func (a *Advisor) Advise(ctx context.Context, pkgs []model.Package) ([]model.AdvisorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []model.AdvisorRecord
	for _, pkg := range pkgs {
		versionless := pkg.ID
		versionless.Version = ""

		seen := make(map[string]bool)
		var advisories []model.Advisory
		for _, advisory := range append(a.anyVersion[versionless], a.exact[pkg.ID]...) {
			if seen[advisory.ID] {
				continue
			}
			seen[advisory.ID] = true
			advisories = append(advisories, advisory)
		}
		if len(advisories) == 0 {
			continue
		}
		records = append(records, model.AdvisorRecord{
			ID:         pkg.ID,
			Advisor:    advisorName,
			Advisories: advisories,
		})
	}
	return records, nil
}

// Issues returns the entries whose key failed to parse.
func (a *Advisor) Issues() []model.Issue { return a.issues }

func load(path string) (*Advisor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("advisories file: %w", err)
	}

	var raw map[string][]model.Advisory
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("advisories file %s: %w", path, err)
	}

	advisor := &Advisor{
		exact:      make(map[model.Identifier][]model.Advisory),
		anyVersion: make(map[model.Identifier][]model.Advisory),
	}
	for key, advisories := range raw {
		id, err := model.ParseIdentifier(key)
		if err != nil {
			advisor.issues = append(advisor.issues, model.NewIssue(advisorName, model.SeverityWarning,
				"skipped advisories for %q in %s: %v", key, path, err).WithPath(path))
			continue
		}
		if id.Version == "" {
			advisor.anyVersion[id] = append(advisor.anyVersion[id], advisories...)
		} else {
			advisor.exact[id] = append(advisor.exact[id], advisories...)
		}
	}
	return advisor, nil
}
