package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/cache"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Report is the dashboard payload: the aggregate plus every stored record.
type Report struct {
	Summary   SummaryMetrics
	Data      []domain.Complaint
	Malformed []MalformedRecord
}

// ReportService computes reports from a full store read.
type ReportService struct {
	complaints   repository.ComplaintRepository
	cache        cache.ReportCache
	logger       *zap.Logger
	metrics      *observability.Metrics
	storeTimeout time.Duration
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Cache         cache.ReportCache
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	// StoreTimeout bounds the store read; zero leaves it to the caller.
	StoreTimeout time.Duration
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	reportCache := deps.Cache
	if reportCache == nil {
		reportCache = cache.NopReportCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		complaints:   deps.ComplaintRepo,
		cache:        reportCache,
		logger:       logger,
		metrics:      deps.Metrics,
		storeTimeout: deps.StoreTimeout,
	}
}

// Report reads every complaint and summarizes them. A store failure yields
// STORE_UNAVAILABLE and no partial result. The cache generation is read
// before the store, so a write that commits during the read retires the
// entry this call fills.
func (s *ReportService) Report(ctx context.Context, order repository.SortOrder) (*Report, error) {
	generation, cacheable := s.cacheGeneration(ctx)
	if cacheable {
		if cached, ok := s.fromCache(ctx, generation, order); ok {
			s.metrics.RecordReport(true, cached.Summary.MalformedRecords)
			return cached, nil
		}
	}

	readCtx := ctx
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}
	records, err := s.complaints.ListAll(readCtx, order)
	if err != nil {
		s.logger.Error("complaint store read failed", zap.String("order", string(order)), zap.Error(err))
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if records == nil {
		records = []domain.Complaint{}
	}

	summary, malformed := Summarize(records)
	for _, m := range malformed {
		s.logger.Warn("malformed complaint record excluded from summary",
			zap.String("complaint_id", m.ID),
			zap.String("reason", m.Reason))
	}
	s.metrics.RecordReport(false, len(malformed))

	report := &Report{Summary: summary, Data: records, Malformed: malformed}
	if cacheable {
		s.toCache(ctx, generation, order, report)
	}
	return report, nil
}

// InvalidateCache drops cached reports after a complaint write.
func (s *ReportService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *ReportService) cacheGeneration(ctx context.Context) (int64, bool) {
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("report cache generation read failed", zap.Error(err))
		return 0, false
	}
	return generation, true
}

func (s *ReportService) fromCache(ctx context.Context, generation int64, order repository.SortOrder) (*Report, bool) {
	payload, ok, err := s.cache.Get(ctx, generation, string(order))
	if err != nil {
		s.logger.Warn("report cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		s.logger.Warn("report cache entry undecodable", zap.Error(err))
		return nil, false
	}
	if report.Data == nil {
		report.Data = []domain.Complaint{}
	}
	return &report, true
}

func (s *ReportService) toCache(ctx context.Context, generation int64, order repository.SortOrder, report *Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("report cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, generation, string(order), payload); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
}
