package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/apierr"
)

var parseCmd = &cobra.Command{
	Use:   "parse TEXT...",
	Short: "Create tasks from natural language",
	Long: `Sends free-form text to the service's natural-language parser, which
extracts one or more tasks and creates them.

Examples:
  taskdeck parse Finish the quarterly report by Friday, high priority
  taskdeck parse "Remind Sarah to review the deployment checklist tomorrow"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return apierr.New(apierr.InvalidInput, "text must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush
	gw := newGateway(cfg, log)

	tasks, err := gw.Parse(cmd.Context(), text)
	if err != nil {
		return err
	}

	return outputCreatedTasks(tasks)
}
