package domain

import "time"

// ComplaintChangeType captures what changed in a history entry.
type ComplaintChangeType string

const (
	ChangeTypeStatus   ComplaintChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee ComplaintChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority ComplaintChangeType = "PRIORITY_CHANGE"
)

// ComplaintHistory is an immutable audit trail entry.
type ComplaintHistory struct {
	ID          string
	ComplaintID string
	ChangedBy   string
	ChangeType  ComplaintChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
