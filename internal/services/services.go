// package services defines the client side of the task backend: the event stream and the
// download endpoint.
package services

import (
	"context"

	"github.com/desertthunder/dumper/internal/protocol"
)

// Streamer opens the event stream for a partition and target.
type Streamer interface {
	Stream(ctx context.Context, partition, target string) (*Stream, error)
}

// Downloader performs the navigation to a produced file's download endpoint.
type Downloader interface {
	// Download fetches or opens ref and returns where it went (a local path or a URL).
	Download(ctx context.Context, ref protocol.FileRef) (string, error)
}

// Download modes.
const (
	ModeFetch   = "fetch"
	ModeBrowser = "browser"
)
