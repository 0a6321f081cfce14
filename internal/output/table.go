package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status colors aligned with the TUI row palette.
	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	// Priority colors, P1 most urgent.
	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityP1: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		task.PriorityP2: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityP3: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityP4: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	assigneeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[task.Status]lipgloss.Style{}
	priorityStyles = map[task.Priority]lipgloss.Style{}
	assigneeStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, statusW, prioW, titleW, assigneeW, dueW := 4, 8, 10, 5, 10, 18
	for _, t := range tasks {
		idW = max(idW, len(strconv.FormatInt(t.ID, 10))+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		assigneeW = max(assigneeW, min(len(t.Assignee)+pad, 24)) //nolint:mnd // max assignee column width
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", assigneeW, "ASSIGNEE", dueW, "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}

		assignee := t.Assignee
		if assignee == "" {
			assignee = "--"
		}

		due := "--"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}

		// Styled cells are padded by visible width; styling adds escape
		// bytes that %-*s would count.
		row := fmt.Sprintf("%-*s %s %s %s %s %s",
			idW, strconv.FormatInt(t.ID, 10),
			padRight(statusDisplay(t.Status), statusW),
			padRight(priorityDisplay(t.Priority), prioW),
			padRight(title, titleW),
			padRight(assigneeDisplay(assignee), assigneeW),
			padRight(due, dueW))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with all fields. The description is
// rendered as markdown when styling is available.
func TaskDetail(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "%s #%d: %s\n", headerStyle.Render("Task"), t.ID, t.Title)
	fmt.Fprintf(w, "  Status:   %s\n", statusDisplay(t.Status))
	fmt.Fprintf(w, "  Priority: %s\n", priorityDisplay(t.Priority))
	if t.Assignee != "" {
		fmt.Fprintf(w, "  Assignee: %s\n", assigneeDisplay(t.Assignee))
	}
	if t.DueDate != nil {
		fmt.Fprintf(w, "  Due:      %s\n", t.DueDate.String())
	}
	if t.CreatedAt != nil {
		fmt.Fprintf(w, "  Created:  %s\n", t.CreatedAt.String())
	}
	if t.UpdatedAt != nil {
		fmt.Fprintf(w, "  Updated:  %s\n", t.UpdatedAt.String())
	}
	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, RenderMarkdown(t.Description))
	}
}

// RenderMarkdown renders a task description through glamour, falling
// back to the raw text when rendering fails (e.g. no TTY).
func RenderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)) //nolint:mnd // wrap width
	if err != nil {
		return text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// padRight pads s with spaces to the given visible width, accounting for
// ANSI escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func statusDisplay(s task.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func priorityDisplay(p task.Priority) string {
	if style, ok := priorityStyles[p]; ok {
		return style.Render(string(p))
	}
	return string(p)
}

func assigneeDisplay(name string) string {
	if name == "--" {
		return dimStyle.Render(name)
	}
	return assigneeStyle.Render(name)
}
