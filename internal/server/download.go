package server

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/shared"
)

const downloadPrefix = "/download/"

// DownloadHandler serves produced files from the output directory as attachments.
type DownloadHandler struct {
	root   string
	logger *log.Logger
}

// NewDownloadHandler serves files below root.
func NewDownloadHandler(root string, logger *log.Logger) *DownloadHandler {
	return &DownloadHandler{root: root, logger: logger}
}

func (h *DownloadHandler) Routes() []string {
	return []string{downloadPrefix}
}

func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	full, err := h.resolve(strings.TrimPrefix(r.URL.Path, downloadPrefix))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	h.logger.Debug("serving file", "path", full, "size", info.Size())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// resolve maps a slash-separated request path onto a file below root.
func (h *DownloadHandler) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", shared.ErrNotFound
	}

	full := filepath.Join(h.root, filepath.FromSlash(clean))
	within, err := filepath.Rel(h.root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", shared.ErrNotFound
	}

	if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", shared.ErrNotFound, clean)
	}
	return full, nil
}
