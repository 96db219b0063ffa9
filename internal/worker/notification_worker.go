package worker

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartReportCacheInvalidator drops cached reports after every complaint
// write so the next report re-reads the store.
func StartReportCacheInvalidator(dispatcher events.Dispatcher, reportService *service.ReportService) {
	if dispatcher == nil || reportService == nil {
		return
	}
	for _, eventType := range events.WriteEvents {
		dispatcher.Subscribe(eventType, func(ctx context.Context, _ events.Event) error {
			return reportService.InvalidateCache(ctx)
		})
	}
}
