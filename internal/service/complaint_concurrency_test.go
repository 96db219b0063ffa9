package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// pausingRepo holds the first GetByID caller after its read until release
// is closed, so another writer can commit in between.
type pausingRepo struct {
	*repository.MemoryComplaintRepository
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newPausingRepo(inner *repository.MemoryComplaintRepository) *pausingRepo {
	return &pausingRepo{
		MemoryComplaintRepository: inner,
		reached:                   make(chan struct{}),
		release:                   make(chan struct{}),
	}
}

func (p *pausingRepo) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := p.MemoryComplaintRepository.GetByID(ctx, id)
	p.once.Do(func() {
		close(p.reached)
		<-p.release
	})
	return complaint, err
}

func TestAssignAfterConcurrentCloseIsRejected(t *testing.T) {
	f := newComplaintFixture(t, false)
	resolved := record("c-1", domain.StatusResolved)
	resolved.ResolvedAt = timePtr(nineAM.Add(time.Hour))
	id := f.seed(resolved)

	paused := newPausingRepo(f.repo)
	slow := NewComplaintService(ComplaintDependencies{
		ComplaintRepo: paused,
		HistoryRepo:   f.history,
		Clock:         func() time.Time { return nineAM.Add(4 * time.Hour) },
	})

	type result struct {
		complaint *domain.Complaint
		err       error
	}
	done := make(chan result, 1)
	go func() {
		c, err := slow.AssignComplaint(context.Background(), operator, id, electrician, false)
		done <- result{c, err}
	}()

	select {
	case <-paused.reached:
	case <-time.After(time.Second):
		t.Fatal("assignment never read the complaint")
	}

	closed, err := f.svc.TransitionComplaint(context.Background(), operator, id, domain.TransitionRequest{To: domain.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.Status)
	close(paused.release)

	var res result
	select {
	case res = <-done:
	case <-time.After(time.Second):
		t.Fatal("assignment did not return")
	}
	require.ErrorIs(t, res.err, apperrors.ErrConcurrentUpdate)
	assert.Nil(t, res.complaint)
	assert.Equal(t, "CONCURRENT_UPDATE", apperrors.ToDomainError(res.err).Code)

	stored, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, stored.Status)
	assert.Nil(t, stored.AssignedTo)
	assert.Equal(t, int64(1), stored.Version)

	entries, err := f.history.ListByComplaint(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeTypeStatus, entries[0].ChangeType)
}

func TestSequentialWritesAdvanceVersion(t *testing.T) {
	f := newComplaintFixture(t, false)
	created, err := f.svc.CreateComplaint(context.Background(), validIntake())
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Version)

	assigned, err := f.svc.AssignComplaint(context.Background(), operator, created.ID, electrician, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), assigned.Version)

	reprioritized, err := f.svc.UpdatePriority(context.Background(), supervisor, created.ID, "High")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reprioritized.Version)
}
