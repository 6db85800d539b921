package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depscope/internal/analyzer"
	"depscope/internal/cache"
	"depscope/internal/config"
	"depscope/internal/model"
	"depscope/internal/notify"
	"depscope/internal/plugin"
	"depscope/internal/plugins"
	"depscope/internal/telemetry"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Resolve and curate dependency metadata for a project tree",
	Long: `Analyze walks the given directory (default: the current one) for package
manager definition files, resolves the dependencies they declare, merges
everything into per-manager dependency graphs and applies the configured
curation sources. The result is written by the selected reporters.

Exit codes: 0 on success, 1 on configuration or analysis errors, 2 when an
issue at or above the --fail-on severity was recorded.

Examples:
  depscope analyze
  depscope analyze ./service --format yaml,json -o reports
  depscope analyze --package-managers gomod --curations file --fail-on warning`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output-dir", "o", ".", "Directory receiving the result documents")
	analyzeCmd.Flags().String("format", "yaml", "Reporters rendering the result (comma separated)")
	analyzeCmd.Flags().String("package-managers", "", "Package manager plugins to run (comma separated)")
	analyzeCmd.Flags().String("curations", "", "Curation providers to apply, in order (comma separated)")
	analyzeCmd.Flags().Int("jobs", 0, "Concurrent resolution workers")
	analyzeCmd.Flags().Int("timeout", 0, "Overall run timeout in seconds")
	analyzeCmd.Flags().Bool("no-cache", false, "Bypass the resolution cache")
	analyzeCmd.Flags().String("fail-on", "", "Exit non-zero when an issue at or above this severity exists (hint, warning, error)")
	analyzeCmd.Flags().Int("metrics-port", 0, "Port for the Prometheus metrics endpoint")
	analyzeCmd.Flags().Bool("notify", false, "Send start/success/failure notifications")

	viper.BindPFlag("output_dir", analyzeCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("format", analyzeCmd.Flags().Lookup("format"))
	viper.BindPFlag("package_managers", analyzeCmd.Flags().Lookup("package-managers"))
	viper.BindPFlag("curations", analyzeCmd.Flags().Lookup("curations"))
	viper.BindPFlag("jobs", analyzeCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("timeout", analyzeCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("no_cache", analyzeCmd.Flags().Lookup("no-cache"))
	viper.BindPFlag("fail_on", analyzeCmd.Flags().Lookup("fail-on"))
	viper.BindPFlag("metrics_port", analyzeCmd.Flags().Lookup("metrics-port"))
	viper.BindPFlag("notify", analyzeCmd.Flags().Lookup("notify"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", rootDir, err)
	}
	if info, statErr := os.Stat(absRoot); statErr != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rootDir)
	}

	registries, err := plugins.Default()
	if err != nil {
		return err
	}

	failOn, err := model.ParseSeverity(viper.GetString("fail_on"))
	if err != nil {
		return fmt.Errorf("fail_on: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	timeout := time.Duration(viper.GetInt("timeout")) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Metrics are exposed for the duration of the run.
	go func() {
		if err := telemetry.StartMetricsServer(viper.GetInt("metrics_port")); err != nil {
			telemetry.LogWarn("Failed to start metrics server", "error", err)
		}
	}()

	var store *cache.Store
	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") {
		store, err = cache.NewStore(viper.GetString("cache.path"))
		if err != nil {
			// The cache is an optimization; a broken one never blocks a run.
			telemetry.LogWarn("Resolution cache unavailable for this run", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	notifier := notify.NewManager(telemetry.LogInfo)
	sendNotifications := viper.GetBool("notify")
	threadTS := ""
	if sendNotifications {
		threadTS, _ = notifier.Notify(ctx, notify.EventStart,
			fmt.Sprintf("Analysis started for %s", absRoot), "")
	}

	opts := analyzer.Options{
		RootDir:         absRoot,
		PackageManagers: config.SplitList(viper.GetString("package_managers")),
		CurationSources: config.SplitList(viper.GetString("curations")),
		Jobs:            viper.GetInt("jobs"),
		PluginConfigs:   config.PluginConfigs(),
		CacheStore:      store,
		Version:         version,
	}

	result, err := analyzer.New(registries, opts).Run(ctx)
	if err != nil {
		if sendNotifications {
			// The run context may already be dead; the failure message still
			// has to go out.
			_, _ = notifier.Notify(context.Background(), notify.EventFailure,
				fmt.Sprintf("Analysis of %s failed: %v", absRoot, err), threadTS)
		}
		if errors.Is(err, plugin.ErrConfiguration) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
			return nil
		}
		fmt.Fprintf(os.Stderr, "Error: analysis failed: %v\n", err)
		exit(1)
		return nil
	}

	reporters, err := registries.Reporters.Resolve(config.SplitList(viper.GetString("format")), opts.PluginConfigs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
		return nil
	}
	written := make([]string, 0, len(reporters))
	for _, reporter := range reporters {
		path, err := reporter.Generate(ctx, result, viper.GetString("output_dir"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write %s report: %v\n", reporter.Name(), err)
			exit(1)
			return nil
		}
		written = append(written, path)
	}

	printAnalyzeSummary(cmd, result, written)

	if worst := model.MaxSeverity(result.Issues); worst != "" && worst.AtLeast(failOn) {
		offending := countAtLeast(result.Issues, failOn)
		fmt.Fprintf(os.Stderr, "Error: %d issue(s) at or above %s severity\n", offending, failOn)
		if sendNotifications {
			_, _ = notifier.Notify(context.Background(), notify.EventFailure,
				fmt.Sprintf("Analysis of %s recorded %d issue(s) at or above %s", absRoot, offending, failOn), threadTS)
		}
		exit(2)
		return nil
	}

	if sendNotifications {
		_, _ = notifier.Notify(ctx, notify.EventSuccess,
			fmt.Sprintf("Analysis of %s finished: %d projects, %d packages",
				absRoot, len(result.Projects), len(result.Packages)), threadTS)
	}
	return nil
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Width(10)
	errorCountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnCountStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func printAnalyzeSummary(cmd *cobra.Command, result *model.AnalyzerResult, written []string) {
	out := cmd.OutOrStdout()
	counts := model.CountBySeverity(result.Issues)

	fmt.Fprintln(out, summaryTitleStyle.Render("Analysis complete"))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Projects"), len(result.Projects))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Packages"), len(result.Packages))
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("Duration"),
		result.EndTime.Sub(result.StartTime).Round(time.Millisecond))

	issueParts := make([]string, 0, 3)
	if n := counts[model.SeverityError]; n > 0 {
		issueParts = append(issueParts, errorCountStyle.Render(fmt.Sprintf("%d error(s)", n)))
	}
	if n := counts[model.SeverityWarning]; n > 0 {
		issueParts = append(issueParts, warnCountStyle.Render(fmt.Sprintf("%d warning(s)", n)))
	}
	if n := counts[model.SeverityHint]; n > 0 {
		issueParts = append(issueParts, fmt.Sprintf("%d hint(s)", n))
	}
	issueLine := fmt.Sprintf("%d", len(result.Issues))
	if len(issueParts) > 0 {
		issueLine += " (" + strings.Join(issueParts, ", ") + ")"
	}
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("Issues"), issueLine)

	for _, path := range written {
		fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("Report"), path)
	}
}

func countAtLeast(issues []model.Issue, threshold model.Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity.AtLeast(threshold) {
			n++
		}
	}
	return n
}
