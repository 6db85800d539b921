package model

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks how serious a recorded issue is.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityHint    Severity = "HINT"
)

// AtLeast reports whether s is as severe as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.rank() >= threshold.rank()
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityHint:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps a case-insensitive severity name to its constant.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "hint":
		return SeverityHint, nil
	}
	return "", fmt.Errorf("unknown severity %q (expected error, warning or hint)", s)
}

// Issue records a non-fatal problem attached to a project or package.
// Issues never abort a run.
type Issue struct {
	Timestamp    time.Time `yaml:"timestamp,omitempty" json:"timestamp,omitempty"`
	Source       string    `yaml:"source" json:"source"`
	Message      string    `yaml:"message" json:"message"`
	Severity     Severity  `yaml:"severity" json:"severity"`
	AffectedPath string    `yaml:"affected_path,omitempty" json:"affected_path,omitempty"`
}

// NewIssue builds an issue stamped with the current time.
func NewIssue(source string, severity Severity, format string, args ...any) Issue {
	return Issue{
		Timestamp: time.Now().UTC(),
		Source:    source,
		Message:   fmt.Sprintf(format, args...),
		Severity:  severity,
	}
}

// WithPath returns a copy of the issue with the affected path set.
func (i Issue) WithPath(path string) Issue {
	i.AffectedPath = path
	return i
}

// CountBySeverity tallies issues per severity level.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}

// MaxSeverity returns the most severe level present, or "" for no issues.
func MaxSeverity(issues []Issue) Severity {
	var max Severity
	for _, issue := range issues {
		if issue.Severity.rank() > max.rank() {
			max = issue.Severity
		}
	}
	return max
}
