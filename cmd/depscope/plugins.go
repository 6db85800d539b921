package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"depscope/internal/plugin"
	"depscope/internal/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the available plugins and their options",
	Long: `Plugins prints every registered plugin grouped by capability, together
with the configuration options each one accepts. Options are set via the
plugin_config section of the config file, for example:

  plugin_config:
    file:
      path: curations.yml`,
	RunE: runPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

func runPlugins(cmd *cobra.Command, args []string) error {
	registries, err := plugins.Default()
	if err != nil {
		return err
	}

	sections := []struct {
		title       string
		descriptors []plugin.Descriptor
	}{
		{"Package managers", registries.PackageManagers.Descriptors()},
		{"Curation providers", registries.CurationSources.Descriptors()},
		{"Advisors", registries.Advisors.Descriptors()},
		{"Scanners", registries.Scanners.Descriptors()},
		{"License fact providers", registries.LicenseProviders.Descriptors()},
		{"Reporters", registries.Reporters.Descriptors()},
	}

	out := cmd.OutOrStdout()
	for _, section := range sections {
		if len(section.descriptors) == 0 {
			continue
		}
		fmt.Fprintln(out, summaryTitleStyle.Render(section.title))
		for _, descriptor := range section.descriptors {
			fmt.Fprintf(out, "  %s  %s\n", descriptor.ID, descriptor.Description)
			if len(descriptor.Options) == 0 {
				continue
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "    OPTION\tTYPE\tDEFAULT\tDESCRIPTION")
			for _, option := range descriptor.Options {
				fmt.Fprintf(w, "    %s\t%s\t%s\t%s\n",
					optionLabel(option), option.Type, optionDefault(option), option.Description)
			}
			w.Flush()
		}
		fmt.Fprintln(out)
	}
	return nil
}

func optionLabel(option plugin.Option) string {
	label := option.Name
	if len(option.Aliases) > 0 {
		label += " (alias: " + strings.Join(option.Aliases, ", ") + ")"
	}
	if option.Type == plugin.SecretType {
		label += " (secret)"
	}
	return label
}

// optionDefault renders the default column. Secret values never appear in
// output, even as defaults.
func optionDefault(option plugin.Option) string {
	if option.Required {
		return "(required)"
	}
	if option.Type == plugin.SecretType || option.Default == "" {
		return "-"
	}
	return option.Default
}
