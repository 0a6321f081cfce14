package task

import (
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/internal/apierr"
)

// ValidStatuses lists the statuses accepted for explicit user input.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ValidPriorities lists the priorities accepted for explicit user input,
// most urgent first.
func ValidPriorities() []Priority {
	return []Priority{PriorityP1, PriorityP2, PriorityP3, PriorityP4}
}

// ValidateTitle checks that a title is non-empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apierr.New(apierr.ValidationError, "title is required")
	}
	return nil
}

// ValidateStatus checks that an explicitly supplied status is one of the
// known values. Statuses read back from the service are never validated.
func ValidateStatus(s Status) error {
	for _, v := range ValidStatuses() {
		if s == v {
			return nil
		}
	}
	return apierr.Newf(apierr.ValidationError, "invalid status %q; valid: %s",
		s, joinStatuses(ValidStatuses()))
}

// ValidatePriority checks that an explicitly supplied priority is one of
// the known values.
func ValidatePriority(p Priority) error {
	for _, v := range ValidPriorities() {
		if p == v {
			return nil
		}
	}
	return apierr.Newf(apierr.ValidationError, "invalid priority %q; valid: %s",
		p, joinPriorities(ValidPriorities()))
}

// ValidateFields checks a create/update payload before it is sent.
func ValidateFields(f Fields) error {
	if err := ValidateTitle(f.Title); err != nil {
		return err
	}
	if f.Status != "" {
		if err := ValidateStatus(f.Status); err != nil {
			return err
		}
	}
	if f.Priority != "" {
		if err := ValidatePriority(f.Priority); err != nil {
			return err
		}
	}
	return nil
}

// ParseID parses a task ID argument from the command line.
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, apierr.Newf(apierr.InvalidInput, "invalid task ID %q: expected a positive integer", arg)
	}
	return id, nil
}

// ParseIDs splits a comma-separated ID string into deduplicated IDs.
func ParseIDs(arg string) ([]int64, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int64]bool, len(parts))
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := ParseID(p)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apierr.Newf(apierr.InvalidInput, "no task IDs in %q", arg)
	}
	return ids, nil
}

func joinStatuses(vals []Status) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinPriorities(vals []Priority) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
