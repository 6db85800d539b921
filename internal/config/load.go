package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
// Precedence, lowest to highest: defaults, config file, DEPSCOPE_* env vars,
// flags bound by the commands.
func Load(cfgFile string) {
	// explicit .env loading; a missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".depscope")
	}

	viper.SetEnvPrefix("DEPSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Set defaults
	viper.SetDefault("package_managers", "gomod,npm,cargo")
	viper.SetDefault("curations", "")
	viper.SetDefault("advisors", "")
	viper.SetDefault("jobs", 4)
	viper.SetDefault("timeout", 300)
	viper.SetDefault("metrics_port", 2112)
	viper.SetDefault("fail_on", "error")
	viper.SetDefault("format", "yaml")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("verbose", false)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.path", defaultCachePath())

	// Notification Defaults
	slackEnabled := os.Getenv("SLACK_BOT_USER_TOKEN") != ""
	viper.SetDefault("notifications.slack.enabled", slackEnabled)
	viper.SetDefault("notifications.slack.channel", "#general")
	viper.SetDefault("notifications.slack.events.on_start", true)
	viper.SetDefault("notifications.slack.events.on_success", true)
	viper.SetDefault("notifications.slack.events.on_failure", true)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// defaultCachePath places the resolution cache under the user cache dir,
// falling back to a dot directory in the working directory.
func defaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "depscope", "resolutions.db")
	}
	return filepath.Join(".depscope-cache", "resolutions.db")
}
