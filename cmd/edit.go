package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/output"
	"github.com/taskdeck/taskdeck/internal/task"
)

var editCmd = &cobra.Command{
	Use:     "edit ID",
	Aliases: []string{"update"},
	Short:   "Edit a task",
	Long: `Updates a task with the provided flags. The update is a full-record
replace: the current record is fetched, changed fields are applied, and
the whole record is written back.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().String("assignee", "", "new assignee")
	editCmd.Flags().String("due", "", `new due date ("yyyy-MM-dd HH:mm" or "yyyy-MM-dd")`)
	editCmd.Flags().Bool("clear-due", false, "remove the due date")
	editCmd.Flags().String("priority", "", "new priority (P1..P4)")
	editCmd.Flags().String("status", "", "new status (PENDING, IN_PROGRESS, COMPLETED)")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := task.ParseID(args[0])
	if err != nil {
		return err
	}

	if !anyFieldFlagChanged(cmd) {
		return apierr.New(apierr.NoChanges, "no changes: provide at least one field flag")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush
	gw := newGateway(cfg, log)

	ctx := cmd.Context()
	current, err := gw.Get(ctx, id)
	if err != nil {
		return err
	}

	fields := task.FieldsOf(current)
	if cmd.Flags().Changed("title") {
		fields.Title, _ = cmd.Flags().GetString("title")
	}
	if err := applyFieldFlags(cmd, &fields); err != nil {
		return err
	}
	if clear, _ := cmd.Flags().GetBool("clear-due"); clear {
		fields.DueDate = nil
	}
	if err := task.ValidateFields(fields); err != nil {
		return err
	}

	updated, err := gw.Update(ctx, id, fields)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, updated)
	}
	output.Messagef(os.Stdout, "Updated task #%d: %s", updated.ID, updated.Title)
	return nil
}

func anyFieldFlagChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"title", "description", "assignee", "due", "clear-due", "priority", "status"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
