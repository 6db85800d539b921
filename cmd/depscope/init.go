package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depscope/internal/plugins"
)

// Wrapper for survey functions to allow mocking in tests
var askOneFunc = survey.AskOne

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively set up a depscope configuration",
	Long:  `Runs an interactive wizard that writes a config file with the package managers, curation sources and reporters to use.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	fmt.Println("Welcome to depscope setup!")
	fmt.Println("--------------------------")

	registries, err := plugins.Default()
	if err != nil {
		return err
	}

	answers := struct {
		Managers      []string
		Curations     []string
		CurationsPath string
		CurationsURL  string
		PostgresDSN   string
		Formats       []string
		FailOn        string
		EnableSlack   bool
		SlackChannel  string
		SlackToken    string
	}{}

	// 1. Package managers
	managerIDs := registries.PackageManagers.IDs()
	err = askOneFunc(&survey.MultiSelect{
		Message: "Which package managers should be analyzed?",
		Options: managerIDs,
		Default: managerIDs,
	}, &answers.Managers)
	if err != nil {
		return err
	}

	// 2. Curation sources
	err = askOneFunc(&survey.MultiSelect{
		Message: "Which curation sources should apply? (applied in order)",
		Options: registries.CurationSources.IDs(),
	}, &answers.Curations)
	if err != nil {
		return err
	}

	selected := make(map[string]bool, len(answers.Curations))
	for _, id := range answers.Curations {
		selected[id] = true
	}
	if selected["file"] {
		err = askOneFunc(&survey.Input{
			Message: "Path to the curations file:",
			Default: "curations.yml",
		}, &answers.CurationsPath)
		if err != nil {
			return err
		}
	}
	if selected["http"] {
		err = askOneFunc(&survey.Input{
			Message: "Curation service URL:",
		}, &answers.CurationsURL)
		if err != nil {
			return err
		}
	}
	if selected["postgres"] {
		err = askOneFunc(&survey.Password{
			Message: "Postgres DSN for curations:",
		}, &answers.PostgresDSN)
		if err != nil {
			return err
		}
	}

	// 3. Reporters
	err = askOneFunc(&survey.MultiSelect{
		Message: "Result formats to write:",
		Options: registries.Reporters.IDs(),
		Default: []string{"yaml"},
	}, &answers.Formats)
	if err != nil {
		return err
	}

	// 4. Failure threshold
	err = askOneFunc(&survey.Select{
		Message: "Fail the run on issues at or above:",
		Options: []string{"error", "warning", "hint"},
		Default: "error",
	}, &answers.FailOn)
	if err != nil {
		return err
	}

	// 5. Notifications
	err = askOneFunc(&survey.Confirm{
		Message: "Enable Slack notifications?",
		Default: false,
	}, &answers.EnableSlack)
	if err != nil {
		return err
	}
	if answers.EnableSlack {
		err = askOneFunc(&survey.Input{
			Message: "Slack Channel:",
			Default: "#general",
		}, &answers.SlackChannel)
		if err != nil {
			return err
		}
		err = askOneFunc(&survey.Password{
			Message: "Slack Bot Token:",
		}, &answers.SlackToken)
		if err != nil {
			return err
		}
	}

	// --- Saving Configuration ---

	viper.Set("package_managers", strings.Join(answers.Managers, ","))
	viper.Set("curations", strings.Join(answers.Curations, ","))
	viper.Set("format", strings.Join(answers.Formats, ","))
	viper.Set("fail_on", answers.FailOn)
	if answers.CurationsPath != "" {
		viper.Set("plugin_config.file.path", answers.CurationsPath)
	}
	if answers.CurationsURL != "" {
		viper.Set("plugin_config.http.url", answers.CurationsURL)
	}
	if answers.PostgresDSN != "" {
		viper.Set("plugin_config.postgres.dsn", answers.PostgresDSN)
	}
	if answers.EnableSlack {
		viper.Set("notifications.slack.enabled", true)
		viper.Set("notifications.slack.channel", answers.SlackChannel)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = ".depscope.yaml"
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		fmt.Printf("Warning: Could not write %s: %v\n", configFile, err)
	} else {
		fmt.Printf("Configuration saved to %s\n", configFile)
		if answers.PostgresDSN != "" {
			fmt.Println("Note: the Postgres DSN is stored in the config file; restrict its permissions.")
		}
	}

	// Write the Slack token to .env so it stays out of the config file.
	if answers.EnableSlack && answers.SlackToken != "" {
		existingEnv, _ := os.ReadFile(".env")
		existingEnvStr := string(existingEnv)

		if strings.Contains(existingEnvStr, "SLACK_BOT_USER_TOKEN=") {
			fmt.Println("Note: SLACK_BOT_USER_TOKEN already exists in .env, skipping.")
		} else {
			f, err := os.OpenFile(".env", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				fmt.Printf("Error opening .env: %v\n", err)
			} else {
				defer f.Close()
				line := ""
				if len(existingEnv) > 0 && !strings.HasSuffix(existingEnvStr, "\n") {
					line = "\n"
				}
				line += fmt.Sprintf("SLACK_BOT_USER_TOKEN=%s\n", answers.SlackToken)
				if _, err := f.WriteString(line); err != nil {
					fmt.Printf("Error writing to .env: %v\n", err)
				} else {
					fmt.Println("Secrets saved to .env")
				}
			}
		}
	}

	fmt.Println("\nSetup complete. Run 'depscope analyze' to try it out.")
	return nil
}
