package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// failingRepo fails every call with err.
type failingRepo struct {
	repository.ComplaintRepository
	err error
}

func (f failingRepo) Create(context.Context, *domain.Complaint) error { return f.err }
func (f failingRepo) ListAll(context.Context, repository.SortOrder) ([]domain.Complaint, error) {
	return nil, f.err
}

// blockingRepo waits for the read deadline.
type blockingRepo struct {
	repository.ComplaintRepository
}

func (blockingRepo) ListAll(ctx context.Context, _ repository.SortOrder) ([]domain.Complaint, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// countingRepo counts full reads.
type countingRepo struct {
	*repository.MemoryComplaintRepository
	reads int
}

func (c *countingRepo) ListAll(ctx context.Context, order repository.SortOrder) ([]domain.Complaint, error) {
	c.reads++
	return c.MemoryComplaintRepository.ListAll(ctx, order)
}

// memoryCache is a map-backed cache for exercising the cached path.
type memoryCache struct {
	generation int64
	entries    map[string][]byte
}

func cacheKey(generation int64, order string) string {
	return fmt.Sprintf("%d:%s", generation, order)
}

func (m *memoryCache) Generation(context.Context) (int64, error) {
	return m.generation, nil
}

func (m *memoryCache) Get(_ context.Context, generation int64, order string) ([]byte, bool, error) {
	payload, ok := m.entries[cacheKey(generation, order)]
	return payload, ok, nil
}

func (m *memoryCache) Set(_ context.Context, generation int64, order string, payload []byte) error {
	m.entries[cacheKey(generation, order)] = payload
	return nil
}

func (m *memoryCache) Invalidate(context.Context) error {
	m.generation++
	return nil
}

// writeDuringReadRepo commits a write and its invalidation right after the
// first full read has taken its snapshot.
type writeDuringReadRepo struct {
	*countingRepo
	write func()
}

func (w *writeDuringReadRepo) ListAll(ctx context.Context, order repository.SortOrder) ([]domain.Complaint, error) {
	records, err := w.countingRepo.ListAll(ctx, order)
	if w.write != nil {
		w.write()
		w.write = nil
	}
	return records, err
}

func TestReportEmptyStore(t *testing.T) {
	svc := NewReportService(ReportDependencies{ComplaintRepo: repository.NewMemoryComplaintRepository()})

	report, err := svc.Report(context.Background(), repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.TotalProblems)
	assert.Nil(t, report.Summary.AverageResponseTime)
	assert.Nil(t, report.Summary.AverageResolutionTime)
	assert.NotNil(t, report.Data)
	assert.Empty(t, report.Data)
}

func TestReportIncludesAllRecordsInData(t *testing.T) {
	repo := repository.NewMemoryComplaintRepository()
	older := record("old", domain.StatusResolved)
	older.ResolvedAt = timePtr(nineAM.Add(2 * time.Hour))
	newer := record("new", domain.StatusNew)
	newer.CreatedAt = nineAM.Add(24 * time.Hour)
	broken := record("broken", "")
	repo.Put(older)
	repo.Put(newer)
	repo.Put(broken)

	core, logs := observer.New(zap.WarnLevel)
	metrics := observability.NewMetrics()
	svc := NewReportService(ReportDependencies{ComplaintRepo: repo, Logger: zap.New(core), Metrics: metrics})

	report, err := svc.Report(context.Background(), repository.SortCreatedAtDesc)
	require.NoError(t, err)
	require.Len(t, report.Data, 3)
	assert.Equal(t, "new", report.Data[0].ID)
	assert.Equal(t, 2, report.Summary.TotalProblems)
	assert.Equal(t, 1, report.Summary.MalformedRecords)
	assert.Equal(t, 2.0, *report.Summary.AverageResponseTime)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "broken", logs.All()[0].ContextMap()["complaint_id"])
	assert.Equal(t, int64(1), metrics.Snapshot().MalformedRecords)

	asc, err := svc.Report(context.Background(), repository.SortCreatedAtAsc)
	require.NoError(t, err)
	assert.Equal(t, "old", asc.Data[0].ID)
}

func TestReportStoreFailure(t *testing.T) {
	svc := NewReportService(ReportDependencies{ComplaintRepo: failingRepo{err: errors.New("connection reset")}})

	report, err := svc.Report(context.Background(), repository.SortCreatedAtDesc)
	assert.Nil(t, report)
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Error fetching complaints", domainErr.Message)
	assert.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
}

func TestReportStoreTimeout(t *testing.T) {
	svc := NewReportService(ReportDependencies{ComplaintRepo: blockingRepo{}, StoreTimeout: 20 * time.Millisecond})

	report, err := svc.Report(context.Background(), repository.SortCreatedAtDesc)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReportCacheHitAndInvalidate(t *testing.T) {
	repo := &countingRepo{MemoryComplaintRepository: repository.NewMemoryComplaintRepository()}
	repo.Put(record("a", domain.StatusNew))
	reportCache := &memoryCache{entries: map[string][]byte{}}
	metrics := observability.NewMetrics()
	svc := NewReportService(ReportDependencies{ComplaintRepo: repo, Cache: reportCache, Metrics: metrics})
	ctx := context.Background()

	first, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	second, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)
	assert.Equal(t, first.Summary, second.Summary)
	require.Len(t, second.Data, 1)
	assert.True(t, first.Data[0].CreatedAt.Equal(second.Data[0].CreatedAt))
	assert.Equal(t, int64(1), metrics.Snapshot().ReportCacheHits)

	repo.Put(record("b", domain.StatusNew))
	require.NoError(t, svc.InvalidateCache(ctx))
	third, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
	assert.Equal(t, 2, third.Summary.TotalProblems)
}

func TestReportWriteDuringReadIsNotServedStale(t *testing.T) {
	repo := &writeDuringReadRepo{countingRepo: &countingRepo{MemoryComplaintRepository: repository.NewMemoryComplaintRepository()}}
	repo.Put(record("a", domain.StatusNew))
	reportCache := &memoryCache{entries: map[string][]byte{}}
	svc := NewReportService(ReportDependencies{ComplaintRepo: repo, Cache: reportCache})
	ctx := context.Background()
	repo.write = func() {
		repo.Put(record("b", domain.StatusNew))
		require.NoError(t, svc.InvalidateCache(ctx))
	}

	first, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Summary.TotalProblems)

	second, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
	assert.Equal(t, 2, second.Summary.TotalProblems)
	require.Len(t, second.Data, 2)

	third, err := svc.Report(ctx, repository.SortCreatedAtDesc)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads, "the fill after the write is served from cache")
	assert.Equal(t, 2, third.Summary.TotalProblems)
}
