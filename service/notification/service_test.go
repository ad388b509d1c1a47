package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clearledger/policykit/service/notification"
)

func TestAppendIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := notification.New()

	first, appended := svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalRequest)
	assert.True(t, appended)
	assert.NotEmpty(t, first.ID)

	// same policy and type is a no-op returning the original record
	again, appended := svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalRequest)
	assert.False(t, appended)
	assert.Equal(t, first.ID, again.ID)

	// a different type for the same policy is a new record
	_, appended = svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalComplete)
	assert.True(t, appended)

	// same type for a different policy is a new record
	_, appended = svc.Append(ctx, "p2", "KYC Baseline", notification.TypeApprovalRequest)
	assert.True(t, appended)

	assert.Len(t, svc.List(ctx), 3)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := notification.New()

	n, _ := svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalRequest)
	svc.Append(ctx, "p2", "KYC Baseline", notification.TypeApprovalRequest)

	assert.Len(t, svc.Unread(ctx), 2)
	assert.True(t, svc.MarkRead(ctx, n.ID))
	assert.False(t, svc.MarkRead(ctx, "missing"))
	assert.Len(t, svc.Unread(ctx), 1)

	svc.MarkAllRead(ctx)
	assert.Empty(t, svc.Unread(ctx))
	assert.Len(t, svc.List(ctx), 2)
}

func TestQueueFanOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc := notification.New()

	svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalRequest)
	svc.Append(ctx, "p1", "Transfer Controls", notification.TypeApprovalRequest)

	message, err := svc.Queue().Consume(ctx)
	assert.NoError(t, err)
	event := message.T()
	assert.Equal(t, "p1", event.PolicyID)
	assert.Equal(t, notification.TypeApprovalRequest, event.Type)
	assert.NoError(t, message.Ack())
}
