package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a search matches no release.
var ErrNotFound = errors.New("release not found")

// ArtistCredit names one credited artist.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

// Release is a search hit or the header of a release lookup.
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Score        int            `json:"score"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Media        []Medium       `json:"media"`
}

// Medium is one disc or side of a release.
type Medium struct {
	Position int           `json:"position"`
	Format   string        `json:"format"`
	Tracks   []MediumTrack `json:"tracks"`
}

// MediumTrack is one track on a medium.
type MediumTrack struct {
	Position  int    `json:"position"`
	Number    string `json:"number"`
	Title     string `json:"title"`
	Length    int64  `json:"length"`
	Recording struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Length int64  `json:"length"`
	} `json:"recording"`
}

// ArtistName returns the first credited artist.
func (r Release) ArtistName() string {
	if len(r.ArtistCredit) == 0 {
		return ""
	}
	if name := strings.TrimSpace(r.ArtistCredit[0].Artist.Name); name != "" {
		return name
	}
	return strings.TrimSpace(r.ArtistCredit[0].Name)
}

type searchResponse struct {
	Count    int       `json:"count"`
	Releases []Release `json:"releases"`
}

// Client talks to the MusicBrainz web service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// DefaultRateLimit matches the MusicBrainz policy of one request per second
// per client.
const DefaultRateLimit = rate.Limit(1)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit replaces the request rate. rate.Inf disables limiting.
func WithRateLimit(limit rate.Limit) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, 1)
	}
}

// New creates a MusicBrainz client. MusicBrainz rejects requests without a
// descriptive user agent, so one is required.
func New(baseURL, userAgent string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchRelease returns the best release match for artist and album.
func (c *Client) SearchRelease(ctx context.Context, artist, album string) (*Release, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" || album == "" {
		return nil, errors.New("artist and album must not be empty")
	}
	params := url.Values{}
	params.Set("query", fmt.Sprintf("artist:%s AND release:%s", luceneQuote(artist), luceneQuote(album)))
	params.Set("limit", "5")
	params.Set("fmt", "json")

	var payload searchResponse
	if err := c.get(ctx, "/release", params, &payload); err != nil {
		return nil, fmt.Errorf("search release: %w", err)
	}
	if len(payload.Releases) == 0 {
		return nil, fmt.Errorf("%w: %s - %s", ErrNotFound, artist, album)
	}
	release := payload.Releases[0]
	return &release, nil
}

// GetRelease looks up a release with its media, tracks and recordings.
func (c *Client) GetRelease(ctx context.Context, id string) (*Release, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("release id must not be empty")
	}
	params := url.Values{}
	params.Set("inc", "recordings artist-credits")
	params.Set("fmt", "json")

	var release Release
	if err := c.get(ctx, "/release/"+url.PathEscape(id), params, &release); err != nil {
		return nil, fmt.Errorf("lookup release %s: %w", id, err)
	}
	return &release, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for musicbrainz rate limit: %w", err)
	}
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("musicbrainz rate limited the request (latency=%v)", latency)
		}
		if msg != "" {
			return fmt.Errorf("musicbrainz returned %d: %s (latency=%v)", resp.StatusCode, msg, latency)
		}
		return fmt.Errorf("musicbrainz returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode musicbrainz response: %w", err)
	}
	return nil
}

// luceneQuote wraps value as a Lucene phrase.
func luceneQuote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}
