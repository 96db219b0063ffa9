package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// MemoryComplaintRepository keeps complaints in process memory. It is used
// when no Postgres DSN is configured and in tests. Reads return copies, so a
// ListAll result is a consistent snapshot.
type MemoryComplaintRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Complaint
	// seq keeps insertion order for records that share a createdAt.
	seq   map[string]int
	count int
}

// NewMemoryComplaintRepository builds an empty store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{
		records: make(map[string]domain.Complaint),
		seq:     make(map[string]int),
	}
}

// Put stores a record verbatim, bypassing create checks. Used for imports
// and for seeding legacy or incomplete data.
func (r *MemoryComplaintRepository) Put(complaint domain.Complaint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := complaint.ID
	if key == "" {
		key = fmt.Sprintf("_anon_%d", r.count)
	}
	if _, exists := r.seq[key]; !exists {
		r.seq[key] = r.count
		r.count++
	}
	r.records[key] = complaint.Clone()
}

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[complaint.ID]; exists {
		return fmt.Errorf("complaint %s already exists", complaint.ID)
	}
	r.seq[complaint.ID] = r.count
	r.count++
	complaint.Version = 0
	r.records[complaint.ID] = complaint.Clone()
	return nil
}

// Update replaces the stored record if its version still matches
// complaint.Version, mirroring the Postgres version check.
func (r *MemoryComplaintRepository) Update(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.records[complaint.ID]
	if !exists {
		return pgx.ErrNoRows
	}
	if stored.Version != complaint.Version {
		return fmt.Errorf("update complaint %s at version %d, stored %d: %w",
			complaint.ID, complaint.Version, stored.Version, apperrors.ErrConcurrentUpdate)
	}
	complaint.Version++
	r.records[complaint.ID] = complaint.Clone()
	return nil
}

func (r *MemoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	complaint, ok := r.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := complaint.Clone()
	return &out, nil
}

func (r *MemoryComplaintRepository) ListAll(ctx context.Context, order SortOrder) ([]domain.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	result := make([]domain.Complaint, 0, len(r.records))
	seq := make(map[int]int, len(r.records))
	for key, complaint := range r.records {
		seq[len(result)] = r.seq[key]
		result = append(result, complaint.Clone())
	}
	r.mu.RUnlock()

	idx := make([]int, len(result))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := result[idx[a]], result[idx[b]]
		// records without createdAt sort last either way
		if ca.CreatedAt.IsZero() != cb.CreatedAt.IsZero() {
			return cb.CreatedAt.IsZero()
		}
		if !ca.CreatedAt.Equal(cb.CreatedAt) {
			if order == SortCreatedAtAsc {
				return ca.CreatedAt.Before(cb.CreatedAt)
			}
			return ca.CreatedAt.After(cb.CreatedAt)
		}
		return seq[idx[a]] < seq[idx[b]]
	})

	sorted := make([]domain.Complaint, len(result))
	for i, j := range idx {
		sorted[i] = result[j]
	}
	return sorted, nil
}

func (r *MemoryComplaintRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
