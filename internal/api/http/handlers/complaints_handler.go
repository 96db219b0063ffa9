package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler serves complaint intake and lifecycle endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// CreateComplaint POST /api/complaints.
func (h *ComplaintsHandler) CreateComplaint(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.CreateComplaint(c.UserContext(), service.ComplaintCreateInput{
		TrainNo:               req.TrainNo,
		CoachNo:               req.CoachNo,
		PNRNumber:             req.PNRNumber,
		UserPhone:             req.UserPhone,
		Details:               req.Details,
		Department:            req.Department,
		Priority:              req.Priority,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// GetComplaint GET /api/complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	complaint, err := h.service.GetComplaint(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// AssignComplaint POST /api/complaints/:id/assign.
func (h *ComplaintsHandler) AssignComplaint(c *fiber.Ctx) error {
	var req dto.AssignComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	responder := domain.Responder{Name: req.Name, Phone: req.Phone, Department: req.Department}
	complaint, err := h.service.AssignComplaint(c.UserContext(), auth.OperatorFromContext(c), c.Params("id"), responder, req.StartWork)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// TransitionComplaint POST /api/complaints/:id/status.
func (h *ComplaintsHandler) TransitionComplaint(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	complaint, err := h.service.TransitionComplaint(c.UserContext(), auth.OperatorFromContext(c), c.Params("id"), domain.TransitionRequest{
		To:                    status,
		ResolvedAt:            req.ResolvedAt,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
		Backfill:              req.Backfill,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// UpdatePriority PATCH /api/complaints/:id/priority.
func (h *ComplaintsHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Priority) == "" {
		return apperrors.NewValidationError("priority required", nil)
	}
	complaint, err := h.service.UpdatePriority(c.UserContext(), auth.OperatorFromContext(c), c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// ListHistory GET /api/complaints/:id/history.
func (h *ComplaintsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryResponse{
			ID:          entry.ID,
			ComplaintID: entry.ComplaintID,
			ChangedBy:   entry.ChangedBy,
			ChangeType:  string(entry.ChangeType),
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:                    complaint.ID,
		TrainNo:               complaint.TrainNo,
		CoachNo:               complaint.CoachNo,
		PNRNumber:             complaint.PNRNumber,
		UserPhone:             complaint.UserPhone,
		Details:               complaint.Details,
		Department:            complaint.Department,
		Priority:              string(complaint.Priority),
		Status:                string(complaint.Status),
		CreatedAt:             optionalTime(complaint.CreatedAt),
		UpdatedAt:             optionalTime(complaint.UpdatedAt),
		ResolvedAt:            complaint.ResolvedAt,
		ResolutionTimeMinutes: complaint.ResolutionTimeMinutes,
	}
	if complaint.AssignedTo != nil {
		resp.AssignedTo = &dto.ResponderResponse{
			Name:       complaint.AssignedTo.Name,
			Phone:      complaint.AssignedTo.Phone,
			Department: complaint.AssignedTo.Department,
		}
	}
	return resp
}

// optionalTime renders a missing timestamp as null rather than year 1.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
