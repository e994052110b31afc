package workflow

import (
	"context"
	"errors"

	"lyricreel/internal/catalog"
	"lyricreel/internal/logging"
	"lyricreel/internal/notifications"
	"lyricreel/internal/stageexec"
)

func (c *Controller) notifyTrackFailed(ctx context.Context, track catalog.Track, outcome stageexec.Outcome) {
	c.publish(ctx, notifications.EventTrackFailed, notifications.Payload{
		"album":    c.catalog.Album,
		"artist":   c.catalog.Artist,
		"position": track.Position,
		"title":    track.Title,
		"error":    firstLine(outcome.Summary),
	})
}

func (c *Controller) notifyBatchPaused(ctx context.Context, summary Summary) {
	c.publish(ctx, notifications.EventBatchPaused, c.totalsPayload(summary))
}

func (c *Controller) notifyAlbumCompleted(ctx context.Context, summary Summary) {
	c.publish(ctx, notifications.EventAlbumCompleted, c.totalsPayload(summary))
}

func (c *Controller) totalsPayload(summary Summary) notifications.Payload {
	return notifications.Payload{
		"album":     c.catalog.Album,
		"artist":    c.catalog.Artist,
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"remaining": summary.Remaining,
	}
}

func (c *Controller) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(ctx, event, payload); err != nil {
		logger := logging.WithContext(ctx, c.logger)
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, notification not sent", logging.String("event", string(event)))
			return
		}
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
