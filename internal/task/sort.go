package task

import "sort"

// Sort fields accepted by list commands.
const (
	fieldID       = "id"
	fieldStatus   = "status"
	fieldPriority = "priority"
	fieldDue      = "due"
	fieldCreated  = "created"
	fieldUpdated  = "updated"
)

// ValidSortFields returns the accepted --sort values.
func ValidSortFields() []string {
	return []string{fieldID, fieldStatus, fieldPriority, fieldDue, fieldCreated, fieldUpdated}
}

// Sort sorts tasks by the given field. Priority ordering is P1-first;
// status ordering follows the lifecycle, not the alphabet.
func Sort(tasks []Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		less := compareTasks(tasks[i], tasks[j], field)
		if reverse {
			return !less
		}
		return less
	})
}

func compareTasks(a, b Task, field string) bool {
	switch field {
	case fieldStatus:
		return StatusRank(a.Status) < StatusRank(b.Status)
	case fieldPriority:
		return PriorityRank(a.Priority) < PriorityRank(b.Priority)
	case fieldDue:
		return compareDue(a, b)
	case fieldCreated:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case fieldUpdated:
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	default:
		return a.ID < b.ID
	}
}

func compareDue(a, b Task) bool {
	if a.DueDate == nil && b.DueDate == nil {
		return false
	}
	if a.DueDate == nil {
		return false // no due date sorts last
	}
	if b.DueDate == nil {
		return true
	}
	return a.DueDate.Before(b.DueDate.Time)
}

func compareTimes(a, b *DateTime) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(b.Time)
}
