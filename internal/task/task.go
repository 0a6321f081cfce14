// Package task defines the task record and its wire encoding.
package task

import "encoding/json"

// Status is the lifecycle state of a task.
type Status string

// Statuses known to the remote service. Unknown values are preserved
// as-is and rendered verbatim, never rejected at read time.
const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Priority is the urgency level of a task. P1 is the most urgent.
type Priority string

// Priorities known to the remote service.
const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// Defaults applied by the service when a create request omits the field.
const (
	DefaultPriority = PriorityP3
	DefaultStatus   = StatusPending
)

// Task represents a task record as held by the remote service.
// ID and the two timestamps are server-assigned and never originate
// on the client.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	DueDate     *DateTime `json:"dueDate,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	Status      Status    `json:"status,omitempty"`
	CreatedAt   *DateTime `json:"createdAt,omitempty"`
	UpdatedAt   *DateTime `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "assignee" and the legacy "assigneeName"
// key some service responses use for the same field.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		AssigneeName string `json:"assigneeName"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.Assignee == "" {
		t.Assignee = aux.AssigneeName
	}
	return nil
}

// Fields is the client-supplied portion of a task, sent on create and
// update. The zero value of an optional field means "absent".
type Fields struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	DueDate     *DateTime `json:"dueDate,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	Status      Status    `json:"status,omitempty"`
}

// FieldsOf extracts the client-writable fields from a task, for
// full-record update requests.
func FieldsOf(t Task) Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
	}
}

// priorityRanks orders priorities by urgency, P1 highest.
var priorityRanks = map[Priority]int{
	PriorityP1: 0,
	PriorityP2: 1,
	PriorityP3: 2,
	PriorityP4: 3,
}

// PriorityRank returns the sort rank of a priority, P1 first.
// Unknown priorities rank after all known ones.
func PriorityRank(p Priority) int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return len(priorityRanks)
}

// statusRanks orders statuses by lifecycle position.
var statusRanks = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// StatusRank returns the sort rank of a status. Unknown statuses rank last.
func StatusRank(s Status) int {
	if r, ok := statusRanks[s]; ok {
		return r
	}
	return len(statusRanks)
}
