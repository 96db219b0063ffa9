package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const defaultDepartment = "General"

// ComplaintService coordinates complaint intake and lifecycle writes.
type ComplaintService struct {
	complaints    repository.ComplaintRepository
	history       repository.ComplaintHistoryRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
	allowBackfill bool
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	// Clock defaults to time.Now.
	Clock         func() time.Time
	AllowBackfill bool
}

// ComplaintCreateInput describes the intake payload.
type ComplaintCreateInput struct {
	TrainNo               string
	CoachNo               string
	PNRNumber             string
	UserPhone             string
	Details               string
	Department            string
	Priority              string
	ResolutionTimeMinutes *float64
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints:    deps.ComplaintRepo,
		history:       deps.HistoryRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		now:           clock,
		allowBackfill: deps.AllowBackfill,
	}
}

// CreateComplaint records a new passenger complaint with status New.
func (s *ComplaintService) CreateComplaint(ctx context.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	required := []struct{ field, value string }{
		{"trainNo", input.TrainNo},
		{"coachNo", input.CoachNo},
		{"pnrNumber", input.PNRNumber},
		{"userPhone", input.UserPhone},
		{"details", input.Details},
	}
	missing := []string{}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(input.Priority) != "" {
		parsed, ok := domain.ParsePriority(input.Priority)
		if !ok {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
		}
		priority = parsed
	}
	if input.ResolutionTimeMinutes != nil && *input.ResolutionTimeMinutes < 0 {
		return nil, apperrors.NewValidationError("resolutionTimeMinutes must not be negative", nil)
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = defaultDepartment
	}

	now := s.now()
	complaint := &domain.Complaint{
		ID:                    uuid.NewString(),
		TrainNo:               strings.TrimSpace(input.TrainNo),
		CoachNo:               strings.TrimSpace(input.CoachNo),
		PNRNumber:             strings.TrimSpace(input.PNRNumber),
		UserPhone:             strings.TrimSpace(input.UserPhone),
		Details:               strings.TrimSpace(input.Details),
		Department:            department,
		Priority:              priority,
		Status:                domain.StatusNew,
		CreatedAt:             now,
		UpdatedAt:             now,
		ResolutionTimeMinutes: input.ResolutionTimeMinutes,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.StoreError(err, "complaint", nil)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Payload: events.ComplaintCreatedPayload{
			TrainNo:    complaint.TrainNo,
			Department: complaint.Department,
			Priority:   complaint.Priority,
		},
	})
	return complaint, nil
}

// GetComplaint fetches a single complaint.
func (s *ComplaintService) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError(err, "complaint", map[string]any{"complaint_id": id})
	}
	return complaint, nil
}

// AssignComplaint routes a complaint to responder. With startWork the
// New -> In Progress transition is applied in the same write, after the
// assignment, so the assignment-first rule always holds.
func (s *ComplaintService) AssignComplaint(ctx context.Context, actor *domain.Operator, id string, responder domain.Responder, startWork bool) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("operator required")
	}
	current, err := s.loadWritable(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := domain.Assign(*current, responder, now)
	if err != nil {
		return nil, err
	}
	if startWork {
		next, err = domain.Transition(next, domain.TransitionRequest{To: domain.StatusInProgress}, now)
		if err != nil {
			return nil, err
		}
	}
	if err := s.complaints.Update(ctx, &next); err != nil {
		return nil, apperrors.StoreError(err, "complaint", map[string]any{"complaint_id": id})
	}

	s.recordHistory(ctx, actor, next.ID, domain.ChangeTypeAssignee,
		map[string]any{"assigned_to": responderValue(current.AssignedTo)},
		map[string]any{"assigned_to": responderValue(next.AssignedTo)})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: next.ID,
		Actor:       actor.ID,
		Payload: events.ComplaintAssignedPayload{
			ResponderName:       next.AssignedTo.Name,
			ResponderDepartment: next.AssignedTo.Department,
		},
	})
	if next.Status != current.Status {
		s.statusChanged(ctx, actor, next.ID, current.Status, next.Status)
	}
	return &next, nil
}

// TransitionComplaint moves a complaint forward in its lifecycle.
func (s *ComplaintService) TransitionComplaint(ctx context.Context, actor *domain.Operator, id string, req domain.TransitionRequest) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("operator required")
	}
	if req.Backfill {
		if !s.allowBackfill {
			return nil, apperrors.NewForbidden("backfill transitions are disabled")
		}
		if !actor.IsSupervisor() {
			return nil, apperrors.NewForbidden("backfill requires a supervisor")
		}
	}
	current, err := s.loadWritable(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.Transition(*current, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.complaints.Update(ctx, &next); err != nil {
		return nil, apperrors.StoreError(err, "complaint", map[string]any{"complaint_id": id})
	}
	s.statusChanged(ctx, actor, next.ID, current.Status, next.Status)
	return &next, nil
}

// UpdatePriority lets a supervisor reprioritize an open complaint.
func (s *ComplaintService) UpdatePriority(ctx context.Context, actor *domain.Operator, id string, priority string) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("operator required")
	}
	if !actor.IsSupervisor() {
		return nil, apperrors.NewForbidden("priority changes require a supervisor")
	}
	parsed, ok := domain.ParsePriority(priority)
	if !ok {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	current, err := s.loadWritable(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.ChangePriority(*current, parsed, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.complaints.Update(ctx, &next); err != nil {
		return nil, apperrors.StoreError(err, "complaint", map[string]any{"complaint_id": id})
	}
	s.recordHistory(ctx, actor, next.ID, domain.ChangeTypePriority,
		map[string]any{"priority": current.Priority},
		map[string]any{"priority": next.Priority})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintPriorityChanged,
		ComplaintID: next.ID,
		Actor:       actor.ID,
		Payload: events.ComplaintPriorityChangedPayload{
			OldPriority: current.Priority,
			NewPriority: next.Priority,
		},
	})
	return &next, nil
}

// ListHistory returns the audit trail of a complaint, oldest first.
func (s *ComplaintService) ListHistory(ctx context.Context, id string) ([]domain.ComplaintHistory, error) {
	if _, err := s.GetComplaint(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ComplaintHistory{}, nil
	}
	entries, err := s.history.ListByComplaint(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError(err, "complaint history", map[string]any{"complaint_id": id})
	}
	return entries, nil
}

// loadWritable fetches a complaint and refuses records that fail validation.
func (s *ComplaintService) loadWritable(ctx context.Context, id string) (*domain.Complaint, error) {
	current, err := s.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *ComplaintService) statusChanged(ctx context.Context, actor *domain.Operator, complaintID string, from, to domain.ComplaintStatus) {
	s.recordHistory(ctx, actor, complaintID, domain.ChangeTypeStatus,
		map[string]any{"status": from},
		map[string]any{"status": to})
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaintID,
		Actor:       actor.ID,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: from,
			NewStatus: to,
		},
	})
}

// recordHistory appends an audit entry. The complaint write has already
// succeeded, so a failing audit store is logged and the request goes on.
func (s *ComplaintService) recordHistory(ctx context.Context, actor *domain.Operator, complaintID string, change domain.ComplaintChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.ComplaintHistory{
		ID:          uuid.NewString(),
		ComplaintID: complaintID,
		ChangedBy:   actor.ID,
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
		CreatedAt:   s.now(),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("complaint history write failed",
			zap.String("complaint_id", complaintID),
			zap.String("change_type", string(change)),
			zap.Error(err))
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("complaint event publish failed",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func responderValue(responder *domain.Responder) map[string]any {
	if responder == nil {
		return nil
	}
	return map[string]any{
		"name":       responder.Name,
		"phone":      responder.Phone,
		"department": responder.Department,
	}
}
