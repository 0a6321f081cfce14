package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/apierr"
)

var minutesCmd = &cobra.Command{
	Use:   "minutes [FILE]",
	Short: "Extract tasks from meeting minutes",
	Long: `Sends a meeting transcript to the service, which extracts action items
and creates them as tasks.

Reads the transcript from FILE, or from stdin when no file is given:

  taskdeck minutes standup-2026-08-30.txt
  pbpaste | taskdeck minutes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMinutes,
}

func init() {
	rootCmd.AddCommand(minutesCmd)
}

func runMinutes(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(transcript) == "" {
		return apierr.New(apierr.InvalidInput, "transcript is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush
	gw := newGateway(cfg, log)

	tasks, err := gw.ParseMeetingMinutes(cmd.Context(), transcript)
	if err != nil {
		return err
	}

	return outputCreatedTasks(tasks)
}

func readTranscript(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", apierr.Wrap(apierr.InvalidInput, err, "cannot read transcript file")
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", apierr.Wrap(apierr.InvalidInput, err, "cannot read transcript from stdin")
	}
	return string(data), nil
}
