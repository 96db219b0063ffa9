package dto

import (
	"time"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	TrainNo               string   `json:"trainNo"`
	CoachNo               string   `json:"coachNo"`
	PNRNumber             string   `json:"pnrNumber"`
	UserPhone             string   `json:"userPhone"`
	Details               string   `json:"details"`
	Department            string   `json:"department"`
	Priority              string   `json:"priority"`
	ResolutionTimeMinutes *float64 `json:"resolutionTimeMinutes"`
}

// AssignComplaintRequest payload.
type AssignComplaintRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	StartWork  bool   `json:"startWork"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status                string     `json:"status"`
	ResolvedAt            *time.Time `json:"resolvedAt"`
	ResolutionTimeMinutes *float64   `json:"resolutionTimeMinutes"`
	Backfill              bool       `json:"backfill"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// ResponderResponse is the single assignment slot.
type ResponderResponse struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

// ComplaintResponse represents a stored complaint.
type ComplaintResponse struct {
	ID                    string             `json:"id"`
	TrainNo               string             `json:"trainNo"`
	CoachNo               string             `json:"coachNo"`
	PNRNumber             string             `json:"pnrNumber"`
	UserPhone             string             `json:"userPhone"`
	Details               string             `json:"details"`
	Department            string             `json:"department"`
	Priority              string             `json:"priority"`
	Status                string             `json:"status"`
	CreatedAt             *time.Time         `json:"createdAt"`
	UpdatedAt             *time.Time         `json:"updatedAt,omitempty"`
	ResolvedAt            *time.Time         `json:"resolvedAt"`
	ResolutionTimeMinutes *float64           `json:"resolutionTimeMinutes"`
	AssignedTo            *ResponderResponse `json:"assignedTo"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID          string         `json:"id"`
	ComplaintID string         `json:"complaintId"`
	ChangedBy   string         `json:"changedBy"`
	ChangeType  string         `json:"changeType"`
	OldValue    map[string]any `json:"oldValue"`
	NewValue    map[string]any `json:"newValue"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// DepartmentSummaryResponse breaks the summary down per department.
type DepartmentSummaryResponse struct {
	Department       string `json:"department"`
	TotalProblems    int    `json:"totalProblems"`
	ProblemsResolved int    `json:"problemsResolved"`
	PriorityIssues   int    `json:"priorityIssues"`
}

// SummaryResponse carries the dashboard aggregate. Averages are null when
// no record qualifies.
type SummaryResponse struct {
	TotalProblems         int                         `json:"totalProblems"`
	ProblemsResolved      int                         `json:"problemsResolved"`
	AverageResponseTime   *float64                    `json:"averageResponseTime"`
	AverageResolutionTime *float64                    `json:"averageResolutionTime"`
	PriorityIssues        int                         `json:"priorityIssues"`
	MalformedRecords      int                         `json:"malformedRecords"`
	ByDepartment          []DepartmentSummaryResponse `json:"byDepartment"`
}

// ReportResponse is the reporting endpoint body.
type ReportResponse struct {
	Summary SummaryResponse     `json:"summary"`
	Data    []ComplaintResponse `json:"data"`
}
