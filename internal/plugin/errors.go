package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration marks every fatal configuration problem: unknown or
// duplicate plugin ids, unknown options, missing required options and
// malformed option values. The CLI checks errors.Is against it to fail a run
// before any resolution work starts.
var ErrConfiguration = errors.New("configuration error")

// DuplicatePluginError reports two factories registered under the same id
// within one capability.
type DuplicatePluginError struct {
	Capability string
	ID         string
}

func (e *DuplicatePluginError) Error() string {
	return fmt.Sprintf("duplicate %s plugin id %q", e.Capability, e.ID)
}

func (e *DuplicatePluginError) Is(target error) bool { return target == ErrConfiguration }

// UnknownPluginError reports a requested plugin id that no factory provides.
// Known carries the capability's registered ids so the message names them.
type UnknownPluginError struct {
	Capability string
	ID         string
	Known      []string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("unknown %s plugin %q, known plugins: %s",
		e.Capability, e.ID, strings.Join(e.Known, ", "))
}

func (e *UnknownPluginError) Is(target error) bool { return target == ErrConfiguration }

// UnknownOptionError reports a configured option name matching neither an
// option nor an alias of the plugin's descriptor.
type UnknownOptionError struct {
	Plugin string
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q for plugin %q", e.Option, e.Plugin)
}

func (e *UnknownOptionError) Is(target error) bool { return target == ErrConfiguration }

// MissingRequiredOptionError reports a required option that resolved to
// nothing: not configured, no alias hit, no default.
type MissingRequiredOptionError struct {
	Option string
}

func (e *MissingRequiredOptionError) Error() string {
	return fmt.Sprintf("required option %q is not set", e.Option)
}

func (e *MissingRequiredOptionError) Is(target error) bool { return target == ErrConfiguration }

// InvalidOptionValueError reports a value that failed to parse as the
// option's declared type.
type InvalidOptionValueError struct {
	Option string
	Value  string
	Type   OptionType
}

func (e *InvalidOptionValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s option %q", e.Value, e.Type, e.Option)
}

func (e *InvalidOptionValueError) Is(target error) bool { return target == ErrConfiguration }
