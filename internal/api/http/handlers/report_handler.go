package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ReportHandler serves the dashboard report.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{service: reportService}
}

// Report GET /api/problem and GET /api/complaints/report.
func (h *ReportHandler) Report(c *fiber.Ctx) error {
	order, ok := repository.ParseSortOrder(c.Query("sort"))
	if !ok {
		return apperrors.NewValidationError("unsupported sort", map[string]any{
			"sort":    c.Query("sort"),
			"allowed": []string{string(repository.SortCreatedAtDesc), string(repository.SortCreatedAtAsc)},
		})
	}
	report, err := h.service.Report(c.UserContext(), order)
	if err != nil {
		return err
	}
	return c.JSON(reportResponse(report))
}

func reportResponse(report *service.Report) dto.ReportResponse {
	summary := report.Summary
	departments := make([]dto.DepartmentSummaryResponse, 0, len(summary.ByDepartment))
	for _, dept := range summary.ByDepartment {
		departments = append(departments, dto.DepartmentSummaryResponse{
			Department:       dept.Department,
			TotalProblems:    dept.TotalProblems,
			ProblemsResolved: dept.ProblemsResolved,
			PriorityIssues:   dept.PriorityIssues,
		})
	}
	data := make([]dto.ComplaintResponse, 0, len(report.Data))
	for i := range report.Data {
		data = append(data, complaintResponse(&report.Data[i]))
	}
	return dto.ReportResponse{
		Summary: dto.SummaryResponse{
			TotalProblems:         summary.TotalProblems,
			ProblemsResolved:      summary.ProblemsResolved,
			AverageResponseTime:   summary.AverageResponseTime,
			AverageResolutionTime: summary.AverageResolutionTime,
			PriorityIssues:        summary.PriorityIssues,
			MalformedRecords:      summary.MalformedRecords,
			ByDepartment:          departments,
		},
		Data: data,
	}
}
