package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"collabCanvas/internal/errs"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const maxImageBytes = 32 << 20

type imageEntry struct {
	img  image.Image
	err  error
	done bool
}

// ImageCache decodes image payloads in the background. Lookup never
// blocks: it starts a decode on first sight and reports ErrImagePending
// until the decode finishes. URL payloads are fetched only from allowed
// hosts.
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]*imageEntry
	wg      sync.WaitGroup
	client  *http.Client
	hosts   map[string]struct{}
	onReady func()
	logger  *slog.Logger
}

type ImageCacheOption func(*ImageCache)

// OnReady is called after every finished decode, successful or not, so the
// owner can schedule a redraw.
func OnReady(fn func()) ImageCacheOption {
	return func(c *ImageCache) { c.onReady = fn }
}

func WithHTTPClient(client *http.Client) ImageCacheOption {
	return func(c *ImageCache) { c.client = client }
}

// AllowHosts permits fetching URL payloads from the given host[:port]
// values. Without it no URL payload is fetched.
func AllowHosts(hosts ...string) ImageCacheOption {
	return func(c *ImageCache) {
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				c.hosts[h] = struct{}{}
			}
		}
	}
}

func WithCacheLogger(l *slog.Logger) ImageCacheOption {
	return func(c *ImageCache) { c.logger = l }
}

func NewImageCache(opts ...ImageCacheOption) *ImageCache {
	c := &ImageCache{
		entries: make(map[string]*imageEntry),
		client:  &http.Client{Timeout: 15 * time.Second},
		hosts:   make(map[string]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ImageCache) Lookup(payload string) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[payload]
	if !ok {
		c.start(payload)
		return nil, errs.ErrImagePending
	}
	if !e.done {
		return nil, errs.ErrImagePending
	}
	return e.img, e.err
}

// Prefetch starts decodes for payloads not seen before.
func (c *ImageCache) Prefetch(payloads ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range payloads {
		if _, ok := c.entries[p]; !ok {
			c.start(p)
		}
	}
}

// Wait blocks until every started decode has finished.
func (c *ImageCache) Wait() {
	c.wg.Wait()
}

func (c *ImageCache) start(payload string) {
	e := &imageEntry{}
	c.entries[payload] = e
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		img, err := c.decode(payload)
		if err != nil {
			c.logger.Debug("ImageCache - decode failed", "err", err)
			err = fmt.Errorf("%w: %w", errs.ErrImageDecodeFailure, err)
		}
		c.mu.Lock()
		e.img, e.err, e.done = img, err, true
		c.mu.Unlock()
		if c.onReady != nil {
			c.onReady()
		}
	}()
}

func (c *ImageCache) decode(payload string) (image.Image, error) {
	data, err := c.load(payload)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func (c *ImageCache) load(payload string) ([]byte, error) {
	switch {
	case strings.HasPrefix(payload, "data:"):
		return decodeDataURL(payload)
	case strings.HasPrefix(payload, "http://"), strings.HasPrefix(payload, "https://"):
		return c.fetch(payload)
	}
	return base64.StdEncoding.DecodeString(payload)
}

func (c *ImageCache) fetch(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if _, ok := c.hosts[strings.ToLower(u.Host)]; !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrImageHostBlocked, u.Host)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func decodeDataURL(s string) ([]byte, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errs.ErrInvalidPayload
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(data)
	}
	decoded, err := url.PathUnescape(data)
	return []byte(decoded), err
}
