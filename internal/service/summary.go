package service

import (
	"errors"
	"math"
	"sort"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// SummaryMetrics is the derived, never persisted, dashboard aggregate.
//
// AverageResponseTime and AverageResolutionTime are different statistics:
// the first is the mean of resolvedAt-createdAt in hours over records that
// carry both timestamps; the second is the sum of resolutionTimeMinutes over
// all records (missing counts as 0) divided by TotalProblems. Both are nil
// when their denominator is zero.
type SummaryMetrics struct {
	TotalProblems         int
	ProblemsResolved      int
	AverageResponseTime   *float64
	AverageResolutionTime *float64
	PriorityIssues        int
	MalformedRecords      int
	ByDepartment          []DepartmentSummary
}

// DepartmentSummary breaks the well-formed set down by routing department.
type DepartmentSummary struct {
	Department       string
	TotalProblems    int
	ProblemsResolved int
	PriorityIssues   int
}

// MalformedRecord names a record excluded from the aggregate and why.
type MalformedRecord struct {
	ID     string
	Reason string
}

type departmentTally struct {
	total, resolved, priority int
}

// Summarize runs the single pass over records. Records failing
// domain.Complaint.Validate are excluded from every count, TotalProblems
// included, and returned separately so the caller can report them. That
// covers a missing id, createdAt or status, an unknown status, a resolvedAt
// before createdAt and a negative resolutionTimeMinutes.
// TotalProblems+MalformedRecords always equals len(records). Rounding to two
// decimals happens only on the returned averages.
func Summarize(records []domain.Complaint) (SummaryMetrics, []MalformedRecord) {
	var (
		summary         SummaryMetrics
		malformed       []MalformedRecord
		responseHours   float64
		responseCount   int
		resolutionTotal float64
		departments     = map[string]*departmentTally{}
	)

	for i := range records {
		c := &records[i]
		if err := c.Validate(); err != nil {
			malformed = append(malformed, MalformedRecord{ID: c.ID, Reason: malformedReason(err)})
			continue
		}

		summary.TotalProblems++
		dept := departments[c.Department]
		if dept == nil {
			dept = &departmentTally{}
			departments[c.Department] = dept
		}
		dept.total++

		if c.Status.IsResolved() {
			summary.ProblemsResolved++
			dept.resolved++
		} else if c.Priority == domain.PriorityHigh {
			summary.PriorityIssues++
			dept.priority++
		}

		if c.ResolvedAt != nil {
			responseHours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
			responseCount++
		}
		if c.ResolutionTimeMinutes != nil {
			resolutionTotal += *c.ResolutionTimeMinutes
		}
	}

	if responseCount > 0 {
		summary.AverageResponseTime = round2(responseHours / float64(responseCount))
	}
	if summary.TotalProblems > 0 {
		summary.AverageResolutionTime = round2(resolutionTotal / float64(summary.TotalProblems))
	}
	summary.MalformedRecords = len(malformed)
	summary.ByDepartment = departmentSummaries(departments)
	return summary, malformed
}

func departmentSummaries(departments map[string]*departmentTally) []DepartmentSummary {
	out := make([]DepartmentSummary, 0, len(departments))
	for name, tally := range departments {
		out = append(out, DepartmentSummary{
			Department:       name,
			TotalProblems:    tally.total,
			ProblemsResolved: tally.resolved,
			PriorityIssues:   tally.priority,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProblems != out[j].TotalProblems {
			return out[i].TotalProblems > out[j].TotalProblems
		}
		return out[i].Department < out[j].Department
	})
	return out
}

func malformedReason(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

func round2(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}
