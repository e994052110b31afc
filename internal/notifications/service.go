package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lyricreel/internal/config"
)

const userAgent = "lyricreel/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventTrackFailed    Event = "track_failed"
	EventBatchPaused    Event = "batch_paused"
	EventAlbumCompleted Event = "album_completed"
	EventTest           Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service defines the notification surface exposed to the batch controller.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventTrackFailed:    cfg.Notifications.TrackFailed,
			EventBatchPaused:    cfg.Notifications.BatchPaused,
			EventAlbumCompleted: cfg.Notifications.AlbumCompleted,
			EventTest:           true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	album := albumLabel(payload)
	switch event {
	case EventTrackFailed:
		body := fmt.Sprintf("❌ Track %d failed: %s", payload.number("position"), payload.text("title"))
		if album != "" {
			body += "\nAlbum: " + album
		}
		if reason := payload.text("error"); reason != "" {
			body += "\n" + reason
		}
		return message{
			title:    "lyricreel - Track Failed",
			body:     body,
			tags:     []string{"lyricreel", "track", "failed"},
			priority: "high",
		}, true
	case EventBatchPaused:
		return message{
			title: "lyricreel - Batch Paused",
			body: fmt.Sprintf("⏸️ %s: %d completed, %d failed, %d remaining",
				album, payload.number("completed"), payload.number("failed"), payload.number("remaining")),
			tags: []string{"lyricreel", "batch", "paused"},
		}, true
	case EventAlbumCompleted:
		completed, failed := payload.number("completed"), payload.number("failed")
		title := "lyricreel - Album Complete"
		body := fmt.Sprintf("✅ %s: all %d tracks rendered", album, completed)
		if failed > 0 {
			title = "lyricreel - Album Complete (with failures)"
			body = fmt.Sprintf("✅ %s: %d rendered, %d failed", album, completed, failed)
		}
		return message{
			title: title,
			body:  body,
			tags:  []string{"lyricreel", "album", "completed"},
		}, true
	case EventTest:
		return message{
			title:    "lyricreel - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"lyricreel", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func albumLabel(payload Payload) string {
	album := payload.text("album")
	artist := payload.text("artist")
	switch {
	case album != "" && artist != "":
		return artist + " - " + album
	case album != "":
		return album
	}
	return artist
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (p Payload) number(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
