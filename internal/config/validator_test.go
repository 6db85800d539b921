package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		setup     func()
		wantError bool
		errMsg    string
	}{
		{
			name: "Valid Configuration",
			setup: func() {
				viper.Set("timeout", "30s")
				viper.Set("jobs", 4)
				viper.Set("metrics_port", 2112)
				viper.Set("fail_on", "warning")
				viper.Set("package_managers", "gomod,npm")
			},
			wantError: false,
		},
		{
			name: "Invalid Timeout (Negative Duration)",
			setup: func() {
				viper.Set("timeout", -10*time.Second)
			},
			wantError: true,
			errMsg:    "timeout must be positive",
		},
		{
			name: "Invalid Timeout (Negative Int)",
			setup: func() {
				viper.Set("timeout", -10)
			},
			wantError: true,
			errMsg:    "timeout must be positive",
		},
		{
			name: "Invalid Jobs",
			setup: func() {
				viper.Set("jobs", 0)
			},
			wantError: true,
			errMsg:    "jobs must be positive",
		},
		{
			name: "Invalid Metrics Port (Too High)",
			setup: func() {
				viper.Set("metrics_port", 99999)
			},
			wantError: true,
			errMsg:    "metrics_port must be between 1 and 65535",
		},
		{
			name: "Invalid Metrics Port (Too Low)",
			setup: func() {
				viper.Set("metrics_port", 0)
			},
			wantError: true,
			errMsg:    "metrics_port must be between 1 and 65535",
		},
		{
			name: "Invalid Fail On",
			setup: func() {
				viper.Set("fail_on", "catastrophe")
			},
			wantError: true,
			errMsg:    "unknown severity",
		},
		{
			name: "Empty Package Managers",
			setup: func() {
				viper.Set("package_managers", " , ,")
			},
			wantError: true,
			errMsg:    "package_managers must name at least one manager",
		},
		{
			name: "Cache Enabled Without Path",
			setup: func() {
				viper.Set("cache.enabled", true)
				viper.Set("cache.path", "")
			},
			wantError: true,
			errMsg:    "cache.path must be set",
		},
		{
			name: "Multiple Errors",
			setup: func() {
				viper.Set("timeout", -5)
				viper.Set("metrics_port", 80000)
			},
			wantError: true,
			errMsg:    "configuration validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			if tt.setup != nil {
				tt.setup()
			}

			err := ValidateConfig()
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateConfig() expected error, got nil")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateConfig() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateConfig() unexpected error: %v", err)
				}
			}
		})
	}
}
