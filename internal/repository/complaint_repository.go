package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// SortOrder selects the ordering of ListAll results.
type SortOrder string

const (
	SortCreatedAtDesc SortOrder = "createdAt_desc"
	SortCreatedAtAsc  SortOrder = "createdAt_asc"
)

// ParseSortOrder validates a sort query value. Empty means newest first.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch SortOrder(strings.TrimSpace(raw)) {
	case "", SortCreatedAtDesc:
		return SortCreatedAtDesc, true
	case SortCreatedAtAsc:
		return SortCreatedAtAsc, true
	default:
		return "", false
	}
}

// ComplaintRepository is the complaint store. ListAll returns every record,
// including ones that fail domain validation, as a point-in-time snapshot.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListAll(ctx context.Context, order SortOrder) ([]domain.Complaint, error)
	Ping(ctx context.Context) error
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the Postgres-backed store.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, train_no, coach_no, pnr_number, user_phone, details, department, priority,
               status, resolved, created_at, updated_at, resolved_at, resolution_time_minutes,
               assignee_name, assignee_phone, assignee_department, version`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (id, train_no, coach_no, pnr_number, user_phone, details, department, priority,
            status, created_at, updated_at, resolved_at, resolution_time_minutes,
            assignee_name, assignee_phone, assignee_department)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	name, phone, dept := assigneeColumns(complaint.AssignedTo)
	_, err := r.pool.Exec(ctx, query,
		complaint.ID,
		complaint.TrainNo,
		complaint.CoachNo,
		complaint.PNRNumber,
		complaint.UserPhone,
		complaint.Details,
		complaint.Department,
		string(complaint.Priority),
		string(complaint.Status),
		complaint.CreatedAt,
		complaint.UpdatedAt,
		complaint.ResolvedAt,
		complaint.ResolutionTimeMinutes,
		name,
		phone,
		dept,
	)
	return err
}

// Update writes the mutable lifecycle columns when the stored version still
// matches complaint.Version, then advances complaint.Version. A row that moved
// on since it was read yields ErrConcurrentUpdate. The legacy resolved flag
// is cleared once a row is written with an explicit status.
func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET department=$1, priority=$2, status=$3, resolved=NULL, updated_at=$4,
            resolved_at=$5, resolution_time_minutes=$6,
            assignee_name=$7, assignee_phone=$8, assignee_department=$9,
            version=version+1
        WHERE id=$10 AND version=$11`
	name, phone, dept := assigneeColumns(complaint.AssignedTo)
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Department,
		string(complaint.Priority),
		string(complaint.Status),
		complaint.UpdatedAt,
		complaint.ResolvedAt,
		complaint.ResolutionTimeMinutes,
		name,
		phone,
		dept,
		complaint.ID,
		complaint.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM complaints WHERE id=$1)`, complaint.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update complaint %s at version %d: %w", complaint.ID, complaint.Version, apperrors.ErrConcurrentUpdate)
	}
	complaint.Version++
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	complaint, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListAll(ctx context.Context, order SortOrder) ([]domain.Complaint, error) {
	direction := "DESC"
	if order == SortCreatedAtAsc {
		direction = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM complaints ORDER BY created_at %s NULLS LAST, id ASC`, complaintColumns, direction)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}

func (r *complaintRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanComplaint decodes one row. Nullable columns stay nil so incomplete
// legacy rows surface as malformed records instead of failing the scan.
func scanComplaint(row rowScanner) (domain.Complaint, error) {
	var (
		complaint    domain.Complaint
		priority     *string
		status       *string
		resolved     *bool
		createdAt    *time.Time
		updatedAt    *time.Time
		assigneeName *string
		assigneePh   *string
		assigneeDept *string
	)
	if err := row.Scan(
		&complaint.ID,
		&complaint.TrainNo,
		&complaint.CoachNo,
		&complaint.PNRNumber,
		&complaint.UserPhone,
		&complaint.Details,
		&complaint.Department,
		&priority,
		&status,
		&resolved,
		&createdAt,
		&updatedAt,
		&complaint.ResolvedAt,
		&complaint.ResolutionTimeMinutes,
		&assigneeName,
		&assigneePh,
		&assigneeDept,
		&complaint.Version,
	); err != nil {
		return domain.Complaint{}, err
	}

	if priority != nil {
		if parsed, ok := domain.ParsePriority(*priority); ok {
			complaint.Priority = parsed
		} else {
			complaint.Priority = domain.ComplaintPriority(*priority)
		}
	}
	complaint.Status = domain.ReconcileLegacyStatus(deref(status), resolved)
	if createdAt != nil {
		complaint.CreatedAt = *createdAt
	}
	if updatedAt != nil {
		complaint.UpdatedAt = *updatedAt
	}
	if assigneeName != nil && *assigneeName != "" {
		complaint.AssignedTo = &domain.Responder{
			Name:       *assigneeName,
			Phone:      deref(assigneePh),
			Department: deref(assigneeDept),
		}
	}
	return complaint, nil
}

func assigneeColumns(responder *domain.Responder) (name, phone, dept *string) {
	if responder == nil {
		return nil, nil, nil
	}
	return &responder.Name, &responder.Phone, &responder.Department
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
