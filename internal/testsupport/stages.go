package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"lyricreel/internal/services"
	"lyricreel/internal/stage"
)

// FakeStage is an in-memory stage.Handler.
type FakeStage struct {
	StageName string
	// Failures maps track titles to the failure message returned for them.
	Failures map[string]string
	// WriteVideo creates the request's video file on success.
	WriteVideo bool
	// OnExecute, when set, replaces the default behavior.
	OnExecute func(context.Context, stage.Request) error

	mu    sync.Mutex
	calls []string
}

// Name implements stage.Handler.
func (f *FakeStage) Name() string {
	return f.StageName
}

// Execute implements stage.Handler.
func (f *FakeStage) Execute(ctx context.Context, req stage.Request) error {
	f.mu.Lock()
	f.calls = append(f.calls, req.Track.Title)
	f.mu.Unlock()

	if f.OnExecute != nil {
		return f.OnExecute(ctx, req)
	}
	if msg, ok := f.Failures[req.Track.Title]; ok {
		return services.Wrap(services.ErrExternalTool, f.StageName, "run", msg, nil)
	}
	if f.WriteVideo {
		if err := os.MkdirAll(filepath.Dir(req.Paths.Video), 0o755); err != nil {
			return err
		}
		return os.WriteFile(req.Paths.Video, []byte("video:"+req.Track.Title), 0o644)
	}
	return nil
}

// HealthCheck implements stage.Handler.
func (f *FakeStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(f.StageName)
}

// Calls returns the titles this stage was executed for, in order.
func (f *FakeStage) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// FakePipeline bundles fake lyrics, synthesis, and video stages. The video
// stage writes its artifact so runs succeed by default.
type FakePipeline struct {
	Lyrics    *FakeStage
	Synthesis *FakeStage
	Video     *FakeStage
}

// NewFakePipeline returns a pipeline where every stage succeeds.
func NewFakePipeline() *FakePipeline {
	return &FakePipeline{
		Lyrics:    &FakeStage{StageName: "lyrics", Failures: map[string]string{}},
		Synthesis: &FakeStage{StageName: "synthesis", Failures: map[string]string{}},
		Video:     &FakeStage{StageName: "video", Failures: map[string]string{}, WriteVideo: true},
	}
}

// Handlers returns the stages in execution order.
func (p *FakePipeline) Handlers() []stage.Handler {
	return []stage.Handler{p.Lyrics, p.Synthesis, p.Video}
}
