// Package tasks provides background task implementations for the runner.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goatkit/goatchat/internal/service"
)

// Default interval if not configured (5 minutes).
const defaultCleanupInterval = 5 * time.Minute

// ConversationCleanupTask evicts conversation state whose session has been
// idle longer than the TTL. Closure state is ephemeral: an evicted session
// simply starts a fresh episode on its next activity.
type ConversationCleanupTask struct {
	tracker  *service.ActivityTracker
	ttl      time.Duration
	interval time.Duration
}

// NewConversationCleanupTask creates a cleanup task for the tracker.
func NewConversationCleanupTask(tracker *service.ActivityTracker, ttl, interval time.Duration) *ConversationCleanupTask {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &ConversationCleanupTask{
		tracker:  tracker,
		ttl:      ttl,
		interval: interval,
	}
}

// Name returns the task name.
func (t *ConversationCleanupTask) Name() string {
	return "conversation-cleanup"
}

// Schedule returns the cron schedule based on the configured interval.
// Minute-based intervals only; hourly and longer run at the top of the hour.
func (t *ConversationCleanupTask) Schedule() string {
	minutes := int(t.interval.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes >= 60 {
		hours := minutes / 60
		if hours >= 24 {
			return "0 0 0 * * *"
		}
		return fmt.Sprintf("0 0 */%d * * *", hours)
	}
	return fmt.Sprintf("0 */%d * * * *", minutes)
}

// Timeout returns the task timeout.
func (t *ConversationCleanupTask) Timeout() time.Duration {
	return time.Minute
}

// Run evicts idle conversation state.
func (t *ConversationCleanupTask) Run(ctx context.Context) error {
	evicted := t.tracker.EvictIdle(t.ttl)
	if evicted > 0 {
		slog.Info("evicted idle conversation state", "count", evicted, "ttl", t.ttl)
	}
	return nil
}
