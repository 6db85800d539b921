package plugin

import (
	"strconv"
	"strings"
)

// OptionType declares how an option's raw string value is interpreted.
type OptionType int

const (
	StringType OptionType = iota
	StringListType
	BoolType
	IntType
	LongType
	SecretType
)

func (t OptionType) String() string {
	switch t {
	case StringType:
		return "string"
	case StringListType:
		return "string list"
	case BoolType:
		return "boolean"
	case IntType:
		return "integer"
	case LongType:
		return "long"
	case SecretType:
		return "secret"
	default:
		return "unknown"
	}
}

// Config is the flat raw configuration for one plugin instance. Any nesting
// is flattened upstream before it reaches the option model.
type Config map[string]string

// Option describes one typed configuration knob of a plugin. Aliases are
// ordered fallback names consulted after the primary name; the first match
// wins. Default is used when nothing is configured; an empty Default means
// no default. Secret-typed values must never be logged.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Default     string
	Aliases     []string
	Nullable    bool
	Required    bool
}

// Resolve looks the option up in config under its primary name, then each
// alias in declared order, then falls back to the default. The second return
// reports whether anything resolved; a required option resolving to nothing
// is a MissingRequiredOptionError.
func (o Option) Resolve(config Config) (string, bool, error) {
	if v, ok := config[o.Name]; ok {
		return v, true, nil
	}
	for _, alias := range o.Aliases {
		if v, ok := config[alias]; ok {
			return v, true, nil
		}
	}
	if o.Default != "" {
		return o.Default, true, nil
	}
	if o.Required {
		return "", false, &MissingRequiredOptionError{Option: o.Name}
	}
	return "", false, nil
}

// StringValue resolves the option as a plain string.
func (o Option) StringValue(config Config) (string, error) {
	v, _, err := o.Resolve(config)
	return v, err
}

// StringListValue resolves the option and splits it into list entries.
func (o Option) StringListValue(config Config) ([]string, error) {
	v, _, err := o.Resolve(config)
	if err != nil {
		return nil, err
	}
	return ParseStringList(v), nil
}

// BoolValue resolves the option as a boolean. ok is false when the option is
// absent without a default, or when a nullable option resolved to the empty
// string (an explicit null).
func (o Option) BoolValue(config Config) (value, ok bool, err error) {
	raw, present, err := o.Resolve(config)
	if err != nil || !present {
		return false, false, err
	}
	if raw == "" {
		if o.Nullable {
			return false, false, nil
		}
		return false, false, &InvalidOptionValueError{Option: o.Name, Value: raw, Type: BoolType}
	}
	b, perr := strconv.ParseBool(raw)
	if perr != nil {
		return false, false, &InvalidOptionValueError{Option: o.Name, Value: raw, Type: BoolType}
	}
	return b, true, nil
}

// IntValue resolves the option as an int, with the same null semantics as
// BoolValue.
func (o Option) IntValue(config Config) (value int, ok bool, err error) {
	v, ok, err := o.Int64Value(config)
	return int(v), ok, err
}

// Int64Value resolves the option as a 64-bit integer.
func (o Option) Int64Value(config Config) (value int64, ok bool, err error) {
	raw, present, err := o.Resolve(config)
	if err != nil || !present {
		return 0, false, err
	}
	if raw == "" {
		if o.Nullable {
			return 0, false, nil
		}
		return 0, false, &InvalidOptionValueError{Option: o.Name, Value: raw, Type: o.Type}
	}
	n, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if perr != nil {
		return 0, false, &InvalidOptionValueError{Option: o.Name, Value: raw, Type: o.Type}
	}
	return n, true, nil
}

// ParseStringList splits a comma-separated option value into its entries.
// Entries are trimmed; entries that are empty after trimming are dropped.
// The empty string yields no entries at all, not one empty entry. Order and
// duplicates of surviving entries are preserved.
func ParseStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
