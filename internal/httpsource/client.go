// Package httpsource is a network-backed deferred.Source: every fetch_*
// call launches a goroutine (bounded only when WithConcurrencyLimit is
// given) that performs an HTTP GET,
// decompresses a zstd body, decodes CBOR, and appends the result to a
// buffer that the matching get_* call drains and clears.
package httpsource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/semaphore"

	"github.com/StanfordLegion/prof-viewer-go/internal/deferred"
	"github.com/StanfordLegion/prof-viewer-go/internal/payload"
	"github.com/StanfordLegion/prof-viewer-go/internal/tile"
)

// Client is a deferred.Source that fetches tiles from a remote profile
// viewer server.
type Client struct {
	base *url.URL
	hc   *http.Client
	ua   string
	log  *slog.Logger
	sem  *semaphore.Weighted // nil means unlimited concurrency

	mu            sync.Mutex
	infos         []payload.DataSourceInfo
	summaryTiles  []deferred.SummaryTileResponse
	slotTiles     []deferred.SlotTileResponse
	slotMetaTiles []deferred.SlotMetaTileResponse
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.ua = ua }
}

// WithLogger configures the structured logger used for fetch diagnostics.
// By default, log lines are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithConcurrencyLimit bounds the number of in-flight HTTP requests. By
// default there is no limit.
func WithConcurrencyLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.sem = semaphore.NewWeighted(int64(limit))
		}
	}
}

// New creates a Client fetching from base, which is normalized to a
// directory URL (see EnsureDirectory) before any path is joined to it.
func New(base *url.URL, opts ...Option) *Client {
	c := &Client{base: EnsureDirectory(base)}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.ua == "" {
		c.ua = "prof-viewer-go"
	}
	if c.log == nil {
		c.log = slog.New(discardHandler{})
	}
	return c
}

func (c *Client) FetchDescription() payload.DataSourceDescription {
	return payload.DataSourceDescription{SourceLocator: []string{c.base.String()}}
}

func (c *Client) FetchInfo() {
	c.launch(func() {
		info, err := fetchCBOR[payload.DataSourceInfo](c, "info", nil)
		if err != nil {
			c.log.Error("fetch info failed", "err", err)
			return
		}
		c.mu.Lock()
		c.infos = append(c.infos, info)
		c.mu.Unlock()
	})
}

func (c *Client) GetInfos() []payload.DataSourceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.infos
	c.infos = nil
	return out
}

func (c *Client) FetchSummaryTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	fetchTile(c, "summary_tile", entryID, tileID, full, &c.summaryTiles)
}

func (c *Client) GetSummaryTiles() []deferred.SummaryTileResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.summaryTiles
	c.summaryTiles = nil
	return out
}

func (c *Client) FetchSlotTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	fetchTile(c, "slot_tile", entryID, tileID, full, &c.slotTiles)
}

func (c *Client) GetSlotTiles() []deferred.SlotTileResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.slotTiles
	c.slotTiles = nil
	return out
}

func (c *Client) FetchSlotMetaTile(entryID tile.EntryID, tileID tile.ID, full bool) {
	fetchTile(c, "slot_meta_tile", entryID, tileID, full, &c.slotMetaTiles)
}

func (c *Client) GetSlotMetaTiles() []deferred.SlotMetaTileResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.slotMetaTiles
	c.slotMetaTiles = nil
	return out
}

// fetchTile launches the fetch for one of the three tile kinds, appending
// its eventual (value, err) pair to buf under the client mutex.
func fetchTile[T any](c *Client, kind string, entryID tile.EntryID, tileID tile.ID, full bool, buf *[]deferred.Response[T]) {
	req := deferred.Request{EntryID: entryID, TileID: tileID, Full: full}
	c.launch(func() {
		value, err := fetchCBOR[T](c, kind+"/"+slugFor(entryID, tileID), map[string]string{"full": boolString(full)})
		c.mu.Lock()
		*buf = append(*buf, deferred.Response[T]{Value: value, Err: err, Request: req})
		c.mu.Unlock()
	})
}

// launch runs fn in its own goroutine, respecting the concurrency limit.
func (c *Client) launch(fn func()) {
	if c.sem == nil {
		go fn()
		return
	}
	go func() {
		ctx := context.Background()
		if err := c.sem.Acquire(ctx, 1); err != nil {
			c.log.Error("acquiring fetch slot", "err", err)
			return
		}
		defer c.sem.Release(1)
		fn()
	}()
}

// fetchCBOR performs the GET and decodes a zstd-compressed CBOR body of
// type T. Errors are returned, never panicked: a failed tile fetch is a
// per-request outcome, not a contract violation.
func fetchCBOR[T any](c *Client, relPath string, query map[string]string) (T, error) {
	var zero T

	u, err := c.base.Parse(relPath)
	if err != nil {
		return zero, fmt.Errorf("httpsource: invalid path %q: %w", relPath, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	c.log.Info("fetching tile", "url", u.String())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u.String(), nil)
	if err != nil {
		return zero, fmt.Errorf("httpsource: building request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "*/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return zero, fmt.Errorf("httpsource: GET %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("httpsource: GET %s: unexpected status %d", u, resp.StatusCode)
	}

	zr, err := zstd.NewReader(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("httpsource: zstd decompression of %s: %w", u, err)
	}
	defer zr.Close()

	var value T
	if err := cbor.NewDecoder(zr).Decode(&value); err != nil {
		return zero, fmt.Errorf("httpsource: cbor decoding of %s: %w", u, err)
	}
	return value, nil
}

// slugFor builds the path segment identifying one (entry, tile) pair. The
// entry path is URL-escaped so a literal "/" inside an entry's String() can
// never be mistaken for a path separator introduced here; the tile bounds
// are plain decimal numbers and are not escaped.
func slugFor(entryID tile.EntryID, tileID tile.ID) string {
	entry := url.PathEscape(entryID.String())
	bounds := fmt.Sprintf("%d-%d", tileID.Interval.Start, tileID.Interval.Stop)
	return entry + "/" + bounds
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// discardHandler is a slog.Handler that drops every record, used as the
// default logger so a Client is silent unless WithLogger is supplied.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler  { return discardHandler{} }
func (discardHandler) WithGroup(name string) slog.Handler        { return discardHandler{} }

var _ deferred.Source = (*Client)(nil)
