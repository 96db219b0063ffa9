package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]ComplaintStatus{
		"New":         StatusNew,
		"In Progress": StatusInProgress,
		"InProgress":  StatusInProgress,
		"in_progress": StatusInProgress,
		"RESOLVED":    StatusResolved,
		" closed ":    StatusClosed,
	}
	for raw, want := range cases {
		got, ok := ParseStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseStatus("Escalated")
	assert.False(t, ok)
}

func TestStatusOrderingAndResolvedPredicate(t *testing.T) {
	assert.Less(t, StatusNew.Rank(), StatusInProgress.Rank())
	assert.Less(t, StatusInProgress.Rank(), StatusResolved.Rank())
	assert.Less(t, StatusResolved.Rank(), StatusClosed.Rank())
	assert.False(t, ComplaintStatus("").Valid())

	assert.False(t, StatusNew.IsResolved())
	assert.False(t, StatusInProgress.IsResolved())
	assert.True(t, StatusResolved.IsResolved())
	assert.True(t, StatusClosed.IsResolved())
}

func TestReconcileLegacyStatus(t *testing.T) {
	yes, no := true, false

	assert.Equal(t, StatusInProgress, ReconcileLegacyStatus("In Progress", &yes), "status wins over flag")
	assert.Equal(t, StatusResolved, ReconcileLegacyStatus("", &yes))
	assert.Equal(t, StatusNew, ReconcileLegacyStatus("", &no))
	assert.Equal(t, ComplaintStatus(""), ReconcileLegacyStatus("", nil))
	assert.Equal(t, ComplaintStatus("Pending"), ReconcileLegacyStatus("Pending", &yes))
}

func TestValidate(t *testing.T) {
	ok := newComplaint(StatusNew)
	assert.NoError(t, ok.Validate())

	before := baseTime.Add(-time.Hour)
	negative := -1.0
	cases := map[string]func(c *Complaint){
		"missing id":         func(c *Complaint) { c.ID = "" },
		"missing createdAt":  func(c *Complaint) { c.CreatedAt = time.Time{} },
		"missing status":     func(c *Complaint) { c.Status = "" },
		"unknown status":     func(c *Complaint) { c.Status = "Pending" },
		"resolved too early": func(c *Complaint) { c.ResolvedAt = &before },
		"negative minutes":   func(c *Complaint) { c.ResolutionTimeMinutes = &negative },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := newComplaint(StatusNew)
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), apperrors.ErrMalformedRecord)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := newComplaint(StatusResolved)
	at := baseTime.Add(time.Hour)
	c.ResolvedAt = &at
	c.ResolutionTimeMinutes = floatPtr(12)
	c.AssignedTo = &Responder{Name: "A"}

	cp := c.Clone()
	*cp.ResolvedAt = baseTime
	*cp.ResolutionTimeMinutes = 1
	cp.AssignedTo.Name = "B"

	assert.Equal(t, at, *c.ResolvedAt)
	assert.Equal(t, 12.0, *c.ResolutionTimeMinutes)
	assert.Equal(t, "A", c.AssignedTo.Name)
}
