package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// TransitionRequest describes a status change. ResolvedAt and
// ResolutionTimeMinutes are only accepted when entering Resolved.
type TransitionRequest struct {
	To                    ComplaintStatus
	ResolvedAt            *time.Time
	ResolutionTimeMinutes *float64
	// Backfill allows New -> Resolved in one step for historical records.
	// It is a deliberate relaxation and must be granted by the caller.
	Backfill bool
}

// Transition applies req to c and returns the updated complaint. c itself is
// never modified, so a failed transition leaves the record untouched.
//
// Transitions only move one step forward: New -> In Progress -> Resolved ->
// Closed. Entering In Progress requires a responder. Entering Resolved stamps
// ResolvedAt with now unless the caller supplied one. Closed is terminal.
func Transition(c Complaint, req TransitionRequest, now time.Time) (Complaint, error) {
	from := c.Status
	to := req.To
	if !from.Valid() {
		return c, apperrors.NewMalformedRecord(c.ID, "record has unknown status "+string(from))
	}
	if !to.Valid() {
		return c, apperrors.NewValidationError("unknown status", map[string]any{"status": string(to)})
	}
	if to.Rank() <= from.Rank() {
		return c, apperrors.NewInvalidTransition(string(from), string(to))
	}
	if to.Rank() != from.Rank()+1 && !(req.Backfill && from == StatusNew && to == StatusResolved) {
		return c, apperrors.NewInvalidTransition(string(from), string(to))
	}
	if to != StatusResolved && (req.ResolvedAt != nil || req.ResolutionTimeMinutes != nil) {
		return c, apperrors.NewValidationError("resolution fields are only accepted when resolving", map[string]any{"status": string(to)})
	}

	next := c.Clone()
	switch to {
	case StatusInProgress:
		if next.AssignedTo == nil {
			return c, apperrors.NewUnassignedComplaint(c.ID)
		}
	case StatusResolved:
		if next.CreatedAt.IsZero() {
			return c, apperrors.NewMalformedRecord(c.ID, "record has no createdAt")
		}
		resolvedAt := now
		switch {
		case req.ResolvedAt != nil:
			resolvedAt = *req.ResolvedAt
		case next.ResolvedAt != nil:
			resolvedAt = *next.ResolvedAt
		}
		if resolvedAt.Before(next.CreatedAt) {
			return c, apperrors.NewValidationError("resolvedAt precedes createdAt", map[string]any{
				"created_at":  next.CreatedAt,
				"resolved_at": resolvedAt,
			})
		}
		next.ResolvedAt = &resolvedAt
		if req.ResolutionTimeMinutes != nil {
			if *req.ResolutionTimeMinutes < 0 {
				return c, apperrors.NewValidationError("resolutionTimeMinutes must not be negative", nil)
			}
			minutes := *req.ResolutionTimeMinutes
			next.ResolutionTimeMinutes = &minutes
		}
	}
	next.Status = to
	next.UpdatedAt = now
	return next, nil
}

// Assign replaces the current responder. The last write wins and no
// assignment history is kept on the complaint itself.
func Assign(c Complaint, responder Responder, now time.Time) (Complaint, error) {
	if c.Status == StatusClosed {
		return c, apperrors.NewComplaintClosed(c.ID)
	}
	responder.Name = strings.TrimSpace(responder.Name)
	responder.Phone = strings.TrimSpace(responder.Phone)
	responder.Department = strings.TrimSpace(responder.Department)
	if responder.Name == "" {
		return c, apperrors.NewValidationError("responder name required", nil)
	}
	next := c.Clone()
	next.AssignedTo = &responder
	next.UpdatedAt = now
	return next, nil
}

// ChangePriority reassigns the triage priority of an open complaint.
func ChangePriority(c Complaint, priority ComplaintPriority, now time.Time) (Complaint, error) {
	if c.Status == StatusClosed {
		return c, apperrors.NewComplaintClosed(c.ID)
	}
	if _, ok := ParsePriority(string(priority)); !ok {
		return c, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}
	next := c.Clone()
	next.Priority = priority
	next.UpdatedAt = now
	return next, nil
}
