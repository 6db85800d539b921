package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"depscope/internal/config"
	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/plugins"
	"depscope/internal/telemetry"
)

const advisorResultFileName = "advisor-result.yml"

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run advisors over a persisted analyzer result",
	Long: `Advise loads a previously written analyzer result and asks the configured
advisors for known defects and vulnerabilities affecting the resolved
packages. Findings are written to ` + advisorResultFileName + `.

Examples:
  depscope advise --result analyzer-result.yml
  depscope advise --result reports/analyzer-result.yml --advisors local -o reports`,
	RunE: runAdvise,
}

func init() {
	rootCmd.AddCommand(adviseCmd)

	adviseCmd.Flags().String("result", "analyzer-result.yml", "Analyzer result document to read")
	adviseCmd.Flags().String("advisors", "", "Advisor plugins to run (comma separated, default from config)")
	adviseCmd.Flags().StringP("output-dir", "o", ".", "Directory receiving "+advisorResultFileName)
}

func runAdvise(cmd *cobra.Command, args []string) error {
	resultPath, _ := cmd.Flags().GetString("result")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	advisorList, _ := cmd.Flags().GetString("advisors")
	if advisorList == "" {
		advisorList = viper.GetString("advisors")
	}
	advisorIDs := config.SplitList(advisorList)
	if len(advisorIDs) == 0 {
		return fmt.Errorf("no advisors selected (use --advisors or the advisors config key)")
	}

	data, err := os.ReadFile(resultPath)
	if err != nil {
		return fmt.Errorf("failed to read analyzer result: %w", err)
	}
	var analyzerResult model.AnalyzerResult
	if err := yaml.Unmarshal(data, &analyzerResult); err != nil {
		return fmt.Errorf("failed to parse %s: %w", resultPath, err)
	}

	registries, err := plugins.Default()
	if err != nil {
		return err
	}
	advisors, err := registries.Advisors.Resolve(advisorIDs, config.PluginConfigs())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	advisorResult := model.AdvisorResult{StartTime: time.Now().UTC()}
	for _, advisor := range advisors {
		records, err := advisor.Advise(ctx, analyzerResult.Packages)
		if err != nil {
			// One broken advisor must not hide the findings of the others.
			telemetry.LogError("Advisor failed", err, "advisor", advisor.Name())
			advisorResult.Issues = append(advisorResult.Issues, model.NewIssue(
				advisor.Name(), model.SeverityError, "advisor %s failed: %v", advisor.Name(), err))
			continue
		}
		advisorResult.Records = append(advisorResult.Records, records...)
		if reporter, ok := advisor.(plugin.IssueReporter); ok {
			advisorResult.Issues = append(advisorResult.Issues, reporter.Issues()...)
		}
	}
	advisorResult.EndTime = time.Now().UTC()

	sort.Slice(advisorResult.Records, func(i, j int) bool {
		left, right := advisorResult.Records[i], advisorResult.Records[j]
		if left.ID != right.ID {
			return left.ID.String() < right.ID.String()
		}
		return left.Advisor < right.Advisor
	})

	out, err := yaml.Marshal(&advisorResult)
	if err != nil {
		return fmt.Errorf("failed to encode advisor result: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(outputDir, advisorResultFileName)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write advisor result: %w", err)
	}

	printAdviseSummary(cmd, &advisorResult, outPath)
	return nil
}

func printAdviseSummary(cmd *cobra.Command, result *model.AdvisorResult, outPath string) {
	out := cmd.OutOrStdout()
	advisories := 0
	for _, record := range result.Records {
		advisories += len(record.Advisories)
	}

	fmt.Fprintln(out, summaryTitleStyle.Render("Advice complete"))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Affected"), len(result.Records))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Advisories"), advisories)
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Issues"), len(result.Issues))
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("Report"), outPath)
}
