package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
)

func TestNotificationServiceSubscribesToWriteEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	for _, eventType := range events.WriteEvents {
		require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: eventType, ComplaintID: "c-1"}))
	}
	assert.Equal(t, len(events.WriteEvents), logs.Len())
}

func TestNotificationServiceEmailsOnResolution(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{EmailFrom: "noreply@rail.example"}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: "c-1",
		Payload:     events.ComplaintStatusChangedPayload{OldStatus: domain.StatusInProgress, NewStatus: domain.StatusResolved},
	}))
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: "c-2",
		Payload:     events.ComplaintStatusChangedPayload{OldStatus: domain.StatusNew, NewStatus: domain.StatusInProgress},
	}))
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
}
