package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusNew        ComplaintStatus = "New"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusClosed     ComplaintStatus = "Closed"
)

// statusRank orders the lifecycle. Unknown statuses rank 0.
var statusRank = map[ComplaintStatus]int{
	StatusNew:        1,
	StatusInProgress: 2,
	StatusResolved:   3,
	StatusClosed:     4,
}

// Rank returns the position of the status in the lifecycle ordering.
func (s ComplaintStatus) Rank() int {
	return statusRank[s]
}

// Valid reports whether s is one of the four lifecycle states.
func (s ComplaintStatus) Valid() bool {
	return s.Rank() > 0
}

// IsResolved is the canonical "done" predicate used by every metric.
func (s ComplaintStatus) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

// ParseStatus accepts the stored spelling plus the common variants sent by
// intake clients ("InProgress", "in_progress", any case).
func ParseStatus(raw string) (ComplaintStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "new":
		return StatusNew, true
	case "inprogress":
		return StatusInProgress, true
	case "resolved":
		return StatusResolved, true
	case "closed":
		return StatusClosed, true
	default:
		return "", false
	}
}

// ReconcileLegacyStatus maps a stored status string and the legacy boolean
// "resolved" flag into a single status. A present status always wins; the
// flag is only consulted for rows that predate the status column.
func ReconcileLegacyStatus(raw string, resolved *bool) ComplaintStatus {
	if status, ok := ParseStatus(raw); ok {
		return status
	}
	if strings.TrimSpace(raw) != "" {
		// unknown value, left for Validate to reject
		return ComplaintStatus(raw)
	}
	if resolved == nil {
		return ""
	}
	if *resolved {
		return StatusResolved
	}
	return StatusNew
}

// ComplaintPriority enumerates triage urgency.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

// ParsePriority normalizes a priority label, case-insensitively.
func ParsePriority(raw string) (ComplaintPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Responder is the person or team a complaint is routed to. It is embedded
// per complaint and has no lifecycle of its own.
type Responder struct {
	Name       string
	Phone      string
	Department string
}

// Complaint is a passenger-reported issue tracked through its lifecycle.
type Complaint struct {
	ID                    string
	TrainNo               string
	CoachNo               string
	PNRNumber             string
	UserPhone             string
	Details               string
	Department            string
	Priority              ComplaintPriority
	Status                ComplaintStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ResolvedAt            *time.Time
	ResolutionTimeMinutes *float64
	AssignedTo            *Responder
	// Version counts committed writes. Stores only accept an update whose
	// Version matches the stored one.
	Version int64
}

// Clone returns a deep copy so callers never share pointer fields.
func (c Complaint) Clone() Complaint {
	out := c
	if c.ResolvedAt != nil {
		at := *c.ResolvedAt
		out.ResolvedAt = &at
	}
	if c.ResolutionTimeMinutes != nil {
		minutes := *c.ResolutionTimeMinutes
		out.ResolutionTimeMinutes = &minutes
	}
	if c.AssignedTo != nil {
		responder := *c.AssignedTo
		out.AssignedTo = &responder
	}
	return out
}

// Validate checks the fields every stored record must carry and the
// timestamp invariants. It returns a MALFORMED_RECORD error on failure.
func (c Complaint) Validate() error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return apperrors.NewMalformedRecord(c.ID, "record has no id")
	case c.CreatedAt.IsZero():
		return apperrors.NewMalformedRecord(c.ID, "record has no createdAt")
	case c.Status == "":
		return apperrors.NewMalformedRecord(c.ID, "record has no status")
	case !c.Status.Valid():
		return apperrors.NewMalformedRecord(c.ID, "record has unknown status "+string(c.Status))
	case c.ResolvedAt != nil && c.ResolvedAt.Before(c.CreatedAt):
		return apperrors.NewMalformedRecord(c.ID, "resolvedAt precedes createdAt")
	case c.ResolutionTimeMinutes != nil && *c.ResolutionTimeMinutes < 0:
		return apperrors.NewMalformedRecord(c.ID, "resolutionTimeMinutes is negative")
	}
	return nil
}
