package musicbrainz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"lyricreel/internal/musicbrainz"
)

const releaseJSON = `{
  "id": "rel-1",
  "title": "Abbey Road",
  "date": "1969-09-26",
  "artist-credit": [{"name": "The Beatles", "artist": {"id": "a1", "name": "The Beatles"}}],
  "media": [
    {"position": 1, "tracks": [
      {"position": 1, "number": "A1", "title": "Come Together", "length": 259946, "recording": {"id": "r1", "title": "Come Together"}},
      {"position": 2, "number": "A2", "title": "Something", "recording": {"id": "r2", "title": "Something", "length": 182293}}
    ]},
    {"position": 2, "tracks": [
      {"position": 1, "number": "B1", "title": "Here Comes the Sun", "length": 185733, "recording": {"id": "r3", "title": "Here Comes the Sun"}}
    ]}
  ]
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "lyricreel-test") {
			t.Errorf("unexpected user agent %q", ua)
		}
		if r.URL.Query().Get("fmt") != "json" {
			t.Errorf("expected fmt=json, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/release" && strings.Contains(r.URL.Query().Get("query"), `"Missing"`):
			_, _ = w.Write([]byte(`{"count":0,"releases":[]}`))
		case r.URL.Path == "/release":
			query := r.URL.Query().Get("query")
			if !strings.Contains(query, `artist:"The Beatles"`) || !strings.Contains(query, `release:"Abbey Road"`) {
				t.Errorf("unexpected query %q", query)
			}
			_, _ = w.Write([]byte(`{"count":1,"releases":[{"id":"rel-1","title":"Abbey Road","score":100,
				"artist-credit":[{"name":"The Beatles","artist":{"name":"The Beatles"}}]}]}`))
		case r.URL.Path == "/release/rel-1":
			if inc := r.URL.Query().Get("inc"); !strings.Contains(inc, "recordings") {
				t.Errorf("lookup missing recordings include: %q", inc)
			}
			_, _ = w.Write([]byte(releaseJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not Found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, baseURL string) *musicbrainz.Client {
	t.Helper()
	client, err := musicbrainz.New(baseURL, "lyricreel-test/1.0", time.Second, musicbrainz.WithRateLimit(rate.Inf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresSettings(t *testing.T) {
	if _, err := musicbrainz.New("", "ua", 0); err == nil {
		t.Fatal("expected error without base url")
	}
	if _, err := musicbrainz.New("https://example.com", " ", 0); err == nil {
		t.Fatal("expected error without user agent")
	}
}

func TestSearchAndLookup(t *testing.T) {
	client := newClient(t, newServer(t).URL)

	hit, err := client.SearchRelease(context.Background(), "The Beatles", "Abbey Road")
	if err != nil {
		t.Fatalf("SearchRelease: %v", err)
	}
	if hit.ID != "rel-1" || hit.ArtistName() != "The Beatles" {
		t.Fatalf("unexpected hit %+v", hit)
	}

	release, err := client.GetRelease(context.Background(), hit.ID)
	if err != nil {
		t.Fatalf("GetRelease: %v", err)
	}
	if len(release.Media) != 2 || len(release.Media[0].Tracks) != 2 {
		t.Fatalf("unexpected media %+v", release.Media)
	}
}

func TestSearchNoMatch(t *testing.T) {
	client := newClient(t, newServer(t).URL)
	_, err := client.SearchRelease(context.Background(), "Nobody", "Missing")
	if !errors.Is(err, musicbrainz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{name: "rate limited", status: http.StatusServiceUnavailable, want: "rate limited"},
		{name: "server error", status: http.StatusInternalServerError, want: "returned 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(server.Close)

			_, err := newClient(t, server.URL).GetRelease(context.Background(), "rel-1")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, err)
			}
		})
	}
}

func TestRateLimitHonorsContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(releaseJSON))
	}))
	t.Cleanup(server.Close)

	client, err := musicbrainz.New(server.URL, "lyricreel-test/1.0", time.Second, musicbrainz.WithRateLimit(rate.Every(time.Hour)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.GetRelease(context.Background(), "rel-1"); err != nil {
		t.Fatalf("first request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GetRelease(ctx, "rel-1"); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit wait error, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server saw %d requests, want 1", got)
	}
}
