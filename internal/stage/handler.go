package stage

import (
	"context"
	"log/slog"

	"lyricreel/internal/catalog"
)

// Request is everything a stage learns about the track it works on.
type Request struct {
	Album  string
	Artist string
	Track  catalog.Track
	Paths  ArtifactPaths
}

// Handler describes the contract the stage runner needs from each stage.
// Execute returns nil on success; any error fails the track.
type Handler interface {
	Name() string
	Execute(context.Context, Request) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a per-track logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
