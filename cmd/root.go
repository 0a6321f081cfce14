// Package cmd implements the taskdeck CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/gateway"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/output"
	"github.com/taskdeck/taskdeck/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagAPIURL  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Terminal client for a task-management service",
	Long: `taskdeck is a terminal client for a remote task-management API.
Run taskdeck without arguments to open the interactive task list, or use
the subcommands for scripted access.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		output.InitColor(flagNoColor)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "task service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with code, no output.
	var silent *apierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TASKDECK_OUTPUT") == "json"
	}

	if jsonMode {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			output.JSONError(os.Stdout, apiErr.Code, apiErr.Message, apiErr.Details)
			os.Exit(apiErr.ExitCode())
		}
		// Unknown error, wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, apierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		os.Exit(apiErr.ExitCode())
	}
	os.Exit(1)
}

// loadConfig loads (or auto-creates) the client config, applying the
// --api-url override.
func loadConfig() (*config.Config, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrInit(dir)
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	return cfg, nil
}

// newLogger builds the file logger. Logging must never block a command,
// so failures degrade to a no-op logger.
func newLogger(cfg *config.Config) *zap.Logger {
	log, err := logging.New(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newGateway builds the remote client from config.
func newGateway(cfg *config.Config, log *zap.Logger) *gateway.Gateway {
	return gateway.New(cfg.APIURL, cfg.Timeout(), cfg.MaxRetries, log)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// outputTaskList prints a task collection in the active format.
func outputTaskList(tasks []task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}

// outputCreatedTasks prints tasks created by the parser endpoints.
func outputCreatedTasks(tasks []task.Task) error {
	if outputFormat() == output.FormatJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}

	if len(tasks) == 0 {
		output.Messagef(os.Stdout, "No tasks extracted.")
		return nil
	}
	output.Messagef(os.Stdout, "Created %d task(s):", len(tasks))
	for _, t := range tasks {
		line := fmt.Sprintf("  #%d [%s/%s] %s", t.ID, t.Status, t.Priority, t.Title)
		if t.Assignee != "" {
			line += " @" + t.Assignee
		}
		if t.DueDate != nil {
			line += " due:" + t.DueDate.String()
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []int64, fn func(int64) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		err := fn(id)
		if err != nil {
			anyFailed = true
			var apiErr *apierr.Error
			if errors.As(err, &apiErr) {
				results = append(results, output.BatchResult{TaskID: id, OK: false, Error: apiErr.Message, Code: apiErr.Code})
			} else {
				results = append(results, output.BatchResult{TaskID: id, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{TaskID: id, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.TaskID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &apierr.SilentError{Code: 1}
	}
	return nil
}
