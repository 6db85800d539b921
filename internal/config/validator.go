package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

// ValidateConfig validates configuration values and returns an error if any
// are invalid. Every problem is collected so the user sees all of them at
// once. Call after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	// Validate timeout (must be positive). Try GetDuration first, then fall
	// back to GetInt (seconds).
	if viper.IsSet("timeout") {
		var timeout time.Duration
		if d := viper.GetDuration("timeout"); d != 0 {
			timeout = d
		} else if s := viper.GetInt("timeout"); s != 0 {
			timeout = time.Duration(s) * time.Second
		}
		if timeout <= 0 {
			errors = append(errors, fmt.Sprintf("timeout must be positive, got: %v", timeout))
		}
	}

	// Validate jobs (if set, must be positive)
	if viper.IsSet("jobs") {
		jobs := viper.GetInt("jobs")
		if jobs <= 0 {
			errors = append(errors, fmt.Sprintf("jobs must be positive, got: %d", jobs))
		}
	}

	// Validate metrics_port (if set, must be in valid range 1-65535)
	if viper.IsSet("metrics_port") {
		port := viper.GetInt("metrics_port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("metrics_port must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate fail_on (must name a known severity)
	if viper.IsSet("fail_on") {
		if _, err := model.ParseSeverity(viper.GetString("fail_on")); err != nil {
			errors = append(errors, fmt.Sprintf("fail_on: %v", err))
		}
	}

	// Validate package_managers (must not collapse to an empty list)
	if viper.IsSet("package_managers") {
		if len(SplitList(viper.GetString("package_managers"))) == 0 {
			errors = append(errors, "package_managers must name at least one manager")
		}
	}

	// Validate cache.path when the cache is enabled
	if viper.GetBool("cache.enabled") && viper.GetString("cache.path") == "" {
		errors = append(errors, "cache.path must be set when cache.enabled is true")
	}

	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}

// ValidateAndExit validates the configuration and exits with a non-zero code
// if validation fails.
func ValidateAndExit() {
	if err := ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// SplitList splits a comma-separated setting into its trimmed, non-empty
// entries. Order and duplicates are preserved.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// PluginConfigs reads the plugin_config section: one string map of options
// per plugin id, passed through to the plugin factories.
func PluginConfigs() map[string]plugin.Config {
	section := viper.GetStringMap("plugin_config")
	if len(section) == 0 {
		return nil
	}
	configs := make(map[string]plugin.Config, len(section))
	for id := range section {
		configs[id] = plugin.Config(viper.GetStringMapString("plugin_config." + id))
	}
	return configs
}
