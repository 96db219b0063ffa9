package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintHistoryRepository stores audit entries.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, history *domain.ComplaintHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds the Postgres-backed audit store.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, history *domain.ComplaintHistory) error {
	const query = `
        INSERT INTO complaint_history (id, complaint_id, changed_by, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		history.ID,
		history.ComplaintID,
		history.ChangedBy,
		string(history.ChangeType),
		history.OldValue,
		history.NewValue,
		history.CreatedAt,
	)
	return err
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	const query = `
        SELECT id, complaint_id, changed_by, change_type, old_value, new_value, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ComplaintHistory{}
	for rows.Next() {
		var history domain.ComplaintHistory
		if err := rows.Scan(
			&history.ID,
			&history.ComplaintID,
			&history.ChangedBy,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

// MemoryComplaintHistoryRepository is the in-process audit store.
type MemoryComplaintHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.ComplaintHistory
}

// NewMemoryComplaintHistoryRepository builds an empty audit store.
func NewMemoryComplaintHistoryRepository() *MemoryComplaintHistoryRepository {
	return &MemoryComplaintHistoryRepository{entries: make(map[string][]domain.ComplaintHistory)}
}

func (r *MemoryComplaintHistoryRepository) Create(_ context.Context, history *domain.ComplaintHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[history.ComplaintID] = append(r.entries[history.ComplaintID], *history)
	return nil
}

func (r *MemoryComplaintHistoryRepository) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ComplaintHistory{}, r.entries[complaintID]...), nil
}
