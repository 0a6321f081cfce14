package cmd

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/gateway"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks with optional filtering, searching, sorting, and paging.

Status, assignee, and priority filters run on the server; searching and
paging run locally on the fetched collection.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("status", "", "filter by status (server-side)")
	listCmd.Flags().String("assignee", "", "filter by assignee (server-side)")
	listCmd.Flags().String("priority", "", "filter by priority (server-side)")
	listCmd.Flags().StringP("search", "s", "", "search by title, description, or assignee (case-insensitive, local)")
	listCmd.Flags().Int("page", 0, "page index, starting at 0")
	listCmd.Flags().Int("size", 0, "page size (default from config)")
	listCmd.Flags().String("sort", "", "sort field ("+strings.Join(task.ValidSortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // best-effort flush
	gw := newGateway(cfg, log)

	status, _ := cmd.Flags().GetString("status")
	assignee, _ := cmd.Flags().GetString("assignee")
	priority, _ := cmd.Flags().GetString("priority")
	search, _ := cmd.Flags().GetString("search")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")

	if sortBy != "" && !slices.Contains(task.ValidSortFields(), sortBy) {
		return apierr.Newf(apierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(task.ValidSortFields(), ", "))
	}
	if countSet(status, assignee, priority) > 1 {
		return apierr.New(apierr.InvalidInput,
			"--status, --assignee, and --priority are mutually exclusive")
	}

	ctx := cmd.Context()
	tasks, err := fetchFiltered(ctx, gw, status, assignee, priority)
	if err != nil {
		return err
	}

	if sortBy != "" {
		task.Sort(tasks, sortBy, reverse)
	}

	// Local search and paging run through the same derivation the TUI uses.
	if search != "" || cmd.Flags().Changed("page") || cmd.Flags().Changed("size") {
		if size < 1 {
			size = cfg.PageSize
		}
		st := store.New(size, log)
		st.FinishLoad(st.BeginLoad(), tasks, nil)
		st.SetSearch(search)
		if page > 0 && !st.SetPage(page) {
			return apierr.Newf(apierr.InvalidInput, "page %d out of range", page)
		}
		tasks = st.View().Tasks
	}

	return outputTaskList(tasks)
}

func fetchFiltered(ctx context.Context, gw gateway.Client, status, assignee, priority string) ([]task.Task, error) {
	switch {
	case status != "":
		s := task.Status(strings.ToUpper(status))
		if err := task.ValidateStatus(s); err != nil {
			return nil, err
		}
		return gw.ByStatus(ctx, s)
	case assignee != "":
		return gw.ByAssignee(ctx, assignee)
	case priority != "":
		p := task.Priority(strings.ToUpper(priority))
		if err := task.ValidatePriority(p); err != nil {
			return nil, err
		}
		return gw.ByPriority(ctx, p)
	default:
		return gw.List(ctx)
	}
}

func countSet(vals ...string) int {
	n := 0
	for _, v := range vals {
		if v != "" {
			n++
		}
	}
	return n
}
