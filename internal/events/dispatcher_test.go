package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherInvokesAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string

	d.Subscribe(EventComplaintCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintAssigned, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintCreated, ComplaintID: "c-1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second:c-1"}, calls)
}
