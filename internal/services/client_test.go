package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/shared"
	tu "github.com/desertthunder/dumper/internal/testing"
)

func newTestClient(baseURL string, client *http.Client) *Client {
	return NewClient(shared.ClientConfig{BaseURL: baseURL}, client, log.New(io.Discard))
}

// drain reads every message until the stream ends.
func drain(t *testing.T, s *Stream) ([]Message, error) {
	t.Helper()
	var got []Message
	for {
		m, err := s.Next()
		if err != nil {
			return got, err
		}
		got = append(got, m)
	}
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewClient(shared.ClientConfig{}, nil, nil)
			if c.baseURL != "http://127.0.0.1:5000" || c.streamPath != "/stream" || c.downloadPath != "/download/zip" {
				t.Errorf("unexpected defaults %+v", c)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trailing Slash", func(t *testing.T) {
			c := newTestClient("http://example.com/", nil)
			if c.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", c.baseURL)
			}
		})
	})

	t.Run("URLs", func(t *testing.T) {
		c := newTestClient("http://example.com", nil)

		tt := []struct {
			name string
			got  string
			want string
		}{
			{
				name: "stream without partition",
				got:  c.StreamURL("", "http://a.b/c"),
				want: "http://example.com/stream?p=&u=http%3A%2F%2Fa.b%2Fc",
			},
			{
				name: "stream with partition",
				got:  c.StreamURL("boot", "https://x.y/ota.zip"),
				want: "http://example.com/stream?p=boot&u=https%3A%2F%2Fx.y%2Fota.zip",
			},
			{
				name: "download",
				got:  c.DownloadURL(protocol.ParseFileRef("/out/partA/result.zip")),
				want: "http://example.com/download/zip/partA/result.zip",
			},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if tc.got != tc.want {
					t.Errorf("got %s, want %s", tc.got, tc.want)
				}
			})
		}
	})
}

func TestStream(t *testing.T) {
	t.Run("Delivers Messages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/stream" {
				t.Errorf("expected path /stream, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("u"); got != "http://a.b/c" {
				t.Errorf("expected u=http://a.b/c, got %s", got)
			}
			if !r.URL.Query().Has("p") {
				t.Error("expected p to be sent even when empty")
			}
			if got := r.Header.Get("Accept"); got != "text/event-stream" {
				t.Errorf("expected Accept text/event-stream, got %s", got)
			}

			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, tu.SSEBody("STATUS:hello", "STATUS_END", "SCRIPT_FINISHED"))
		}))
		defer server.Close()

		s, err := newTestClient(server.URL, nil).Stream(context.Background(), "", "http://a.b/c")
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		defer s.Close()

		got, err := drain(t, s)
		if !errors.Is(err, shared.ErrStreamFailed) {
			t.Errorf("server close should end the stream with ErrStreamFailed, got %v", err)
		}

		want := []string{"STATUS:hello", "STATUS_END", "SCRIPT_FINISHED"}
		if len(got) != len(want) {
			t.Fatalf("expected %d messages, got %d", len(want), len(got))
		}
		for i, m := range got {
			if m.Data != want[i] || m.Event != "message" {
				t.Errorf("message %d = %+v, want data %q", i, m, want[i])
			}
		}
	})

	t.Run("Framing", func(t *testing.T) {
		body := ": keep-alive\n\n" +
			"event: ping\ndata: skipped\n\n" +
			"data: first\ndata:second\nid: 7\nretry: 1000\n\n" +
			"data:\n\n" +
			"\n\n" +
			"data: incomplete"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		defer server.Close()

		s, err := newTestClient(server.URL, nil).Stream(context.Background(), "p", "http://a.b")
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		defer s.Close()

		got, _ := drain(t, s)
		if len(got) != 2 {
			t.Fatalf("expected 2 messages, got %d: %+v", len(got), got)
		}
		if got[0].Data != "first\nsecond" || got[0].ID != "7" {
			t.Errorf("unexpected first message %+v", got[0])
		}
		if got[1].Data != "" {
			t.Errorf("expected empty data message, got %+v", got[1])
		}
	})

	t.Run("Close Ends Stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, tu.SSEBody("STATUS:waiting"))
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		s, err := newTestClient(server.URL, nil).Stream(context.Background(), "", "http://a.b")
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}

		if m, err := s.Next(); err != nil || m.Data != "STATUS:waiting" {
			t.Fatalf("Next() = %+v, %v", m, err)
		}

		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}

		if _, err := s.Next(); !errors.Is(err, shared.ErrStreamClosed) {
			t.Errorf("expected ErrStreamClosed after Close, got %v", err)
		}
	})

	t.Run("Unexpected Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Missing parameters", http.StatusBadRequest)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, nil).Stream(context.Background(), "", "")
		if !errors.Is(err, shared.ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := newTestClient("http://example.com", client).Stream(context.Background(), "", "http://a.b")
		if !errors.Is(err, shared.ErrStreamFailed) {
			t.Errorf("expected ErrStreamFailed, got %v", err)
		}
	})

	t.Run("Read Error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		s, err := newTestClient("http://example.com", client).Stream(context.Background(), "", "http://a.b")
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		defer s.Close()

		if _, err := s.Next(); !errors.Is(err, shared.ErrStreamFailed) {
			t.Errorf("expected ErrStreamFailed, got %v", err)
		}
	})
}

func TestDownloaders(t *testing.T) {
	t.Run("Fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/download/zip/partA/result.zip" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, "zip-bytes")
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "downloads")
		d := NewDownloader(ModeFetch, newTestClient(server.URL, nil), dir)

		path, err := d.Download(context.Background(), protocol.ParseFileRef("/out/partA/result.zip"))
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if path != filepath.Join(dir, "result.zip") {
			t.Errorf("unexpected path %s", path)
		}
		if got := tu.MustReadFile(t, path); got != "zip-bytes" {
			t.Errorf("unexpected content %q", got)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected only the downloaded file, found %d entries", len(entries))
		}

		if _, err := d.Download(context.Background(), protocol.ParseFileRef("/out/partB/missing.zip")); !errors.Is(err, shared.ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus for missing file, got %v", err)
		}
		if _, err := d.Download(context.Background(), protocol.FileRef{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty name, got %v", err)
		}
	})

	t.Run("Fetch Keeps Name Inside Directory", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "x")
		}))
		defer server.Close()

		dir := t.TempDir()
		d := &FetchDownloader{client: newTestClient(server.URL, nil), dir: dir}
		path, err := d.Download(context.Background(), protocol.FileRef{Name: "../escape.zip", Subdir: "a"})
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("download escaped its directory: %s", path)
		}
	})

	t.Run("Browser", func(t *testing.T) {
		var opened string
		d := &BrowserDownloader{
			client: newTestClient("http://example.com", nil),
			open:   func(u string) error { opened = u; return nil },
		}

		got, err := d.Download(context.Background(), protocol.ParseFileRef("out/partA/result.zip"))
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		want := "http://example.com/download/zip/partA/result.zip"
		if got != want || opened != want {
			t.Errorf("opened %q returned %q, want %q", opened, got, want)
		}

		d.open = func(string) error { return errors.New("no browser") }
		if _, err := d.Download(context.Background(), protocol.ParseFileRef("a/b")); err == nil {
			t.Error("expected error when the browser cannot be opened")
		}
	})

	t.Run("Mode Selection", func(t *testing.T) {
		c := newTestClient("http://example.com", nil)
		if _, ok := NewDownloader(ModeBrowser, c, "").(*BrowserDownloader); !ok {
			t.Error("browser mode should use BrowserDownloader")
		}
		if _, ok := NewDownloader(ModeFetch, c, "").(*FetchDownloader); !ok {
			t.Error("fetch mode should use FetchDownloader")
		}
		if _, ok := NewDownloader("", c, "").(*FetchDownloader); !ok {
			t.Error("unknown mode should fall back to fetch")
		}
	})
}
