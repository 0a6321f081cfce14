package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	// Timestamps line.
	var ts []string
	if t.CreatedAt != nil {
		ts = append(ts, "created:"+t.CreatedAt.String())
	}
	if t.UpdatedAt != nil {
		ts = append(ts, "updated:"+t.UpdatedAt.String())
	}
	if len(ts) > 0 {
		fmt.Fprintln(w, "  "+strings.Join(ts, " "))
	}

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t task.Task) string {
	line := "#" + strconv.FormatInt(t.ID, 10) + " [" + string(t.Status) + "/" + string(t.Priority) + "] " + t.Title

	if t.Assignee != "" {
		line += " @" + t.Assignee
	}
	if t.DueDate != nil {
		line += " due:" + t.DueDate.String()
	}

	return line
}
