package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated         EventType = "complaint_created"
	EventComplaintAssigned        EventType = "complaint_assigned"
	EventComplaintStatusChanged   EventType = "complaint_status_changed"
	EventComplaintPriorityChanged EventType = "complaint_priority_changed"
)

// WriteEvents lists every event emitted after a complaint write.
var WriteEvents = []EventType{
	EventComplaintCreated,
	EventComplaintAssigned,
	EventComplaintStatusChanged,
	EventComplaintPriorityChanged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       string      `json:"actor,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	TrainNo    string                   `json:"train_no"`
	Department string                   `json:"department"`
	Priority   domain.ComplaintPriority `json:"priority"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	ResponderName       string `json:"responder_name"`
	ResponderDepartment string `json:"responder_department,omitempty"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintPriorityChangedPayload payload.
type ComplaintPriorityChangedPayload struct {
	OldPriority domain.ComplaintPriority `json:"old_priority"`
	NewPriority domain.ComplaintPriority `json:"new_priority"`
}
