package workflow

import (
	"context"

	"lyricreel/internal/catalog"
	"lyricreel/internal/services"
)

func (c *Controller) runContext(ctx context.Context, runID string) context.Context {
	ctx = services.WithAlbum(ctx, c.catalog.Artist+" - "+c.catalog.Album)
	return services.WithRunID(ctx, runID)
}

func trackContext(ctx context.Context, track catalog.Track) context.Context {
	return services.WithTrackID(ctx, track.ID())
}
