package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/output"
	"github.com/taskdeck/taskdeck/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a task on the remote service with the given title and
optional fields. The service assigns the ID and timestamps.

Title can be provided as a positional argument or via --title flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("description", "", "task description")
	createCmd.Flags().String("assignee", "", "task assignee")
	createCmd.Flags().String("due", "", `due date ("yyyy-MM-dd HH:mm" or "yyyy-MM-dd")`)
	createCmd.Flags().String("priority", "", "task priority (P1..P4, default P3)")
	createCmd.Flags().String("status", "", "task status (default PENDING)")
	createCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "body" {
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	fields := task.Fields{Title: title}
	if err := applyFieldFlags(cmd, &fields); err != nil {
		return err
	}
	if err := task.ValidateFields(fields); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush
	gw := newGateway(cfg, log)

	t, err := gw.Create(cmd.Context(), fields)
	if err != nil {
		return err
	}

	return outputCreateResult(t)
}

func outputCreateResult(t task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Created task #%d: %s", t.ID, t.Title)
	output.Messagef(os.Stdout, "  Status: %s | Priority: %s", t.Status, t.Priority)
	if t.Assignee != "" {
		output.Messagef(os.Stdout, "  Assignee: %s", t.Assignee)
	}
	if t.DueDate != nil {
		output.Messagef(os.Stdout, "  Due: %s", t.DueDate.String())
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", apierr.New(apierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", apierr.New(apierr.InvalidInput, "title is required: provide it as an argument or with --title")
	}
}

// applyFieldFlags copies changed field flags onto fields. Changed, not
// non-empty: an explicitly empty value clears the field on a
// full-record replace.
func applyFieldFlags(cmd *cobra.Command, fields *task.Fields) error {
	if cmd.Flags().Changed("description") {
		fields.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("assignee") {
		fields.Assignee, _ = cmd.Flags().GetString("assignee")
	}
	if cmd.Flags().Changed("due") {
		v, _ := cmd.Flags().GetString("due")
		if v == "" {
			return apierr.New(apierr.InvalidInput, "--due requires a value")
		}
		d, err := task.ParseDateTime(v)
		if err != nil {
			return apierr.Wrap(apierr.InvalidInput, err, "invalid --due")
		}
		fields.DueDate = &d
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		p := task.Priority(strings.ToUpper(v))
		if err := task.ValidatePriority(p); err != nil {
			return err
		}
		fields.Priority = p
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		s := task.Status(strings.ToUpper(v))
		if err := task.ValidateStatus(s); err != nil {
			return err
		}
		fields.Status = s
	}
	return nil
}
