package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/controller"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	// priorityColors maps urgency to color, P1 hottest.
	priorityColors = map[task.Priority]lipgloss.Color{
		task.PriorityP1: "196",
		task.PriorityP2: "208",
		task.PriorityP3: "226",
		task.PriorityP4: "242",
	}

	statusColors = map[task.Status]lipgloss.Color{
		task.StatusPending:    "252",
		task.StatusInProgress: "33",
		task.StatusCompleted:  "34",
	}

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case viewConfirmDelete:
		return m.viewDeleteConfirm()
	case viewDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m *Model) viewList() string {
	vs := m.ctrl.ViewState()

	parts := []string{titleStyle.Render("taskdeck"), ""}

	if m.searching || m.search.Value() != "" {
		parts = append(parts, m.search.View(), "")
	}

	switch vs.Phase {
	case store.PhaseEmpty, store.PhaseLoading:
		parts = append(parts, m.spin.View()+" Loading tasks...")
	case store.PhaseFailed:
		parts = append(parts,
			errorStyle.Render("Error: "+errText(vs.Err)),
			"",
			dimStyle.Render("r: retry  q: quit"))
	default:
		parts = append(parts, m.renderRows(vs)...)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Pad so the status bar sits on the bottom line.
	const chrome = 1
	target := m.height - chrome
	if target > 0 {
		actual := strings.Count(body, "\n") + 1
		if actual < target {
			body += strings.Repeat("\n", target-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(vs))
}

func (m *Model) renderRows(vs controller.ViewState) []string {
	if vs.TotalCount == 0 {
		if m.search.Value() != "" {
			return []string{dimStyle.Render("No tasks match the search.")}
		}
		return []string{dimStyle.Render("No tasks. Create one with 'taskdeck create'.")}
	}

	idW, prioW, statusW := 5, 4, 12
	titleW := m.width - idW - prioW - statusW - 16
	if titleW < 10 {
		titleW = 10
	}
	assigneeW := 12

	header := fmt.Sprintf(" %-*s %-*s %-*s %-*s %-*s",
		idW, "ID", prioW, "PRI", statusW, "STATUS", titleW, "TITLE", assigneeW, "ASSIGNEE")
	rows := []string{headerRowStyle.Width(m.width).Render(truncate(header, m.width))}

	for i, t := range vs.Tasks {
		assignee := t.Assignee
		if assignee == "" {
			assignee = "--"
		}
		line := fmt.Sprintf(" %-*s %-*s %-*s %-*s %-*s",
			idW, strconv.FormatInt(t.ID, 10),
			prioW, string(t.Priority),
			statusW, string(t.Status),
			titleW, truncate(t.Title, titleW),
			assigneeW, truncate(assignee, assigneeW))
		line = truncate(line, m.width)

		if i == m.selected {
			rows = append(rows, selectedRowStyle.Width(m.width).Render(line))
			continue
		}
		rows = append(rows, m.styleRow(t, line))
	}

	return rows
}

func (m *Model) styleRow(t task.Task, line string) string {
	if c, ok := priorityColors[t.Priority]; ok && t.Status != task.StatusCompleted {
		return lipgloss.NewStyle().Foreground(c).Render(line)
	}
	if c, ok := statusColors[t.Status]; ok {
		return lipgloss.NewStyle().Foreground(c).Render(line)
	}
	return line
}

func (m *Model) renderStatusBar(vs controller.ViewState) string {
	status := fmt.Sprintf(" page %d/%d | %d tasks | /:search n/p:page d:del r:refresh q:quit",
		vs.Page+1, vs.TotalPages, vs.TotalCount)
	status = truncate(status, m.width)

	if m.notice.Text != "" {
		style := noticeStyle
		if m.notice.IsErr {
			style = errorStyle
		}
		return style.Render(truncate(m.notice.Text, m.width)) + "\n" + statusBarStyle.Render(status)
	}

	return statusBarStyle.Render(status)
}

func (m *Model) viewDeleteConfirm() string {
	vs := m.ctrl.ViewState()
	if vs.PendingDelete == nil {
		return m.viewList()
	}

	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  #%d: %s", vs.PendingDelete.ID, vs.PendingDelete.Title) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func (m *Model) viewDetail() string {
	if m.detail == nil {
		return m.viewList()
	}
	t := m.detail

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Task #%d", t.ID)),
		"",
		"  " + t.Title,
		"",
		fmt.Sprintf("  Status:   %s", t.Status),
		fmt.Sprintf("  Priority: %s", t.Priority),
	}
	if t.Assignee != "" {
		lines = append(lines, "  Assignee: "+t.Assignee)
	}
	if t.DueDate != nil {
		lines = append(lines, "  Due:      "+t.DueDate.String())
	}
	if t.CreatedAt != nil {
		lines = append(lines, "  Created:  "+t.CreatedAt.String())
	}
	if t.UpdatedAt != nil {
		lines = append(lines, "  Updated:  "+t.UpdatedAt.String())
	}
	if t.Description != "" {
		lines = append(lines, "", dimStyle.Render("  "+strings.ReplaceAll(t.Description, "\n", "\n  ")))
	}
	lines = append(lines, "", dimStyle.Render("esc: back"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
