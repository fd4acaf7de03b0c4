package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/shared"
)

// maxTaskLine bounds a single stdout line; BUTTONS fragments can be large.
const maxTaskLine = 2 * 1024 * 1024

// StreamHandler runs the task command for each request and relays its stdout as an event stream.
//
// The command is invoked as <command> <args...> <partition> <target>. Every stdout line is
// sent trimmed as one event; once the process exits the completion sentinel follows.
type StreamHandler struct {
	command string
	args    []string
	logger  *log.Logger
}

// NewStreamHandler creates a handler running command with args.
func NewStreamHandler(command string, args []string, logger *log.Logger) *StreamHandler {
	return &StreamHandler{command: command, args: args, logger: logger}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	partition := r.URL.Query().Get("p")
	target := r.URL.Query().Get("u")
	if target == "" {
		http.Error(w, "Missing parameters", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := shared.WithLogger(h.logger, "partition", partition, "target", target)

	args := append(append([]string{}, h.args...), partition, target)
	cmd := exec.CommandContext(ctx, h.command, args...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logger.Error("failed to attach stdout", "err", err)
		http.Error(w, shared.ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		logger.Error("failed to attach stderr", "err", err)
		http.Error(w, shared.ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := cmd.Start(); err != nil {
		logger.Error("failed to start command", "command", h.command, "err", err)
		http.Error(w, shared.ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	logger.Info("task started", "pid", cmd.Process.Pid)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.logStderr(logger, stderr)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxTaskLine)
	for scanner.Scan() {
		if err := writeEvent(w, scanner.Text()); err != nil {
			logger.Warn("client went away", "err", err)
			cancel()
			break
		}
		flusher.Flush()
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stopped reading task output", "err", err)
	}
	// The task blocks on a full pipe unless the rest of stdout is consumed.
	io.Copy(io.Discard, stdout)

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		logger.Warn("task exited", "err", err)
	} else {
		logger.Info("task finished")
	}

	if ctx.Err() != nil {
		return
	}
	if err := writeEvent(w, protocol.TokenFinished); err != nil {
		logger.Warn("client went away", "err", err)
		return
	}
	flusher.Flush()
}

func (h *StreamHandler) logStderr(logger *log.Logger, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxTaskLine)
	for scanner.Scan() {
		logger.Warn("task stderr", "line", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stopped reading task stderr", "err", err)
	}
	io.Copy(io.Discard, r)
}

// writeEvent writes data trimmed as a single event-stream message.
func writeEvent(w io.Writer, data string) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", strings.TrimSpace(data))
	return err
}
