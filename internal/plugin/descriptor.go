package plugin

import "sort"

// Descriptor identifies a plugin and declares its configuration surface.
// The ID must be unique within one capability; option names must be unique
// within the descriptor.
type Descriptor struct {
	ID          string
	DisplayName string
	Description string
	Options     []Option
}

// ValidateConfig rejects configured keys that match neither an option name
// nor an alias. It runs eagerly at plugin-creation time, before any plugin
// work starts, and reports the lexicographically first offender for
// deterministic errors.
func (d Descriptor) ValidateConfig(config Config) error {
	known := make(map[string]bool, len(d.Options))
	for _, opt := range d.Options {
		known[opt.Name] = true
		for _, alias := range opt.Aliases {
			known[alias] = true
		}
	}

	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !known[key] {
			return &UnknownOptionError{Plugin: d.ID, Option: key}
		}
	}
	return nil
}
