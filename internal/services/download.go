package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/shared"
)

// NewDownloader picks the downloader for mode, defaulting to [ModeFetch].
func NewDownloader(mode string, client *Client, dir string) Downloader {
	if mode == ModeBrowser {
		return &BrowserDownloader{client: client, open: shared.OpenBrowser}
	}
	return &FetchDownloader{client: client, dir: dir}
}

// FetchDownloader saves produced files into a local directory.
type FetchDownloader struct {
	client *Client
	dir    string
}

// Download saves ref as <dir>/<name> and returns the written path.
func (d *FetchDownloader) Download(ctx context.Context, ref protocol.FileRef) (string, error) {
	name := filepath.Base(filepath.Clean("/" + ref.Name))
	if ref.Name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("%w: file name is required", shared.ErrInvalidArgument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.client.DownloadURL(ref), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d for %s", shared.ErrUnexpectedStatus, resp.StatusCode, ref.Name)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(d.dir, name)
	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	d.client.logger.Debug("downloaded", "file", path)
	return path, nil
}

// BrowserDownloader hands the download URL to the system browser.
type BrowserDownloader struct {
	client *Client
	open   func(string) error
}

// Download opens the download URL and returns it.
func (d *BrowserDownloader) Download(_ context.Context, ref protocol.FileRef) (string, error) {
	u := d.client.DownloadURL(ref)
	if err := d.open(u); err != nil {
		return "", fmt.Errorf("failed to open browser: %w", err)
	}
	return u, nil
}
