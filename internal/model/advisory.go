package model

import "time"

// Advisory is one known defect or vulnerability affecting a package version.
type Advisory struct {
	ID         string   `yaml:"id" json:"id"`
	Summary    string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Severity   string   `yaml:"severity,omitempty" json:"severity,omitempty"`
	References []string `yaml:"references,omitempty" json:"references,omitempty"`
}

// AdvisorRecord pairs a package with the advisories one advisor found for it.
type AdvisorRecord struct {
	ID         Identifier `yaml:"id" json:"id"`
	Advisor    string     `yaml:"advisor" json:"advisor"`
	Advisories []Advisory `yaml:"advisories" json:"advisories"`
}

// AdvisorResult is the persisted outcome of running advisors over an analyzer
// result.
type AdvisorResult struct {
	StartTime time.Time       `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   time.Time       `yaml:"end_time,omitempty" json:"end_time,omitempty"`
	Records   []AdvisorRecord `yaml:"records" json:"records"`
	Issues    []Issue         `yaml:"issues" json:"issues"`
}
