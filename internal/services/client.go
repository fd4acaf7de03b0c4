package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/shared"
)

const (
	defaultBaseURL      = "http://127.0.0.1:5000"
	defaultStreamPath   = "/stream"
	defaultDownloadPath = "/download/zip"
)

// Client talks to the backend's stream and download endpoints.
type Client struct {
	baseURL      string
	streamPath   string
	downloadPath string
	httpClient   *http.Client
	logger       *log.Logger
}

// NewClient creates a client for the backend described by cfg. Empty settings fall back to
// the backend defaults and a nil client to [http.DefaultClient].
func NewClient(cfg shared.ClientConfig, client *http.Client, logger *log.Logger) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		streamPath:   cfg.StreamPath,
		downloadPath: cfg.DownloadPath,
		httpClient:   client,
		logger:       logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.streamPath == "" {
		c.streamPath = defaultStreamPath
	}
	if c.downloadPath == "" {
		c.downloadPath = defaultDownloadPath
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// StreamURL builds the stream endpoint for partition and target. Both are always sent, the
// partition possibly empty.
func (c *Client) StreamURL(partition, target string) string {
	q := url.Values{}
	q.Set("p", partition)
	q.Set("u", target)
	return c.baseURL + c.streamPath + "?" + q.Encode()
}

// DownloadURL builds the download endpoint for ref.
func (c *Client) DownloadURL(ref protocol.FileRef) string {
	return c.baseURL + ref.DownloadPath(c.downloadPath)
}

// Stream opens the event stream. The returned [Stream] owns the response until closed.
func (c *Client) Stream(ctx context.Context, partition, target string) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(partition, target), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", shared.ErrStreamFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Debug("stream opened", "partition", partition, "target", target)
	return newStream(resp.Body, cancel), nil
}
