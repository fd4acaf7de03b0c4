// Package page models the client's location: a path carrying the single u query argument,
// and a back/forward history of such locations.
package page

import (
	"fmt"
	"net/url"

	"github.com/desertthunder/dumper/internal/shared"
)

// TargetParam is the query argument naming the target resource.
const TargetParam = "u"

// Location builds path?u=<target>; an empty target yields the bare path.
func Location(path, target string) *url.URL {
	loc := &url.URL{Path: path}
	if target != "" {
		loc.RawQuery = url.Values{TargetParam: {target}}.Encode()
	}
	return loc
}

// Parse reads a location such as "/dump?u=http%3A%2F%2Fa.b" or a full URL.
func Parse(raw string) (*url.URL, error) {
	loc, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %v", shared.ErrInvalidArgument, raw, err)
	}
	return loc, nil
}

// Target returns the u argument of loc, empty when absent.
func Target(loc *url.URL) string {
	if loc == nil {
		return ""
	}
	return loc.Query().Get(TargetParam)
}

// History is a browser-style stack of locations with a cursor.
type History struct {
	entries []*url.URL
	index   int
}

// NewHistory starts a history at initial.
func NewHistory(initial *url.URL) *History {
	return &History{entries: []*url.URL{initial}}
}

// Current returns the location under the cursor.
func (h *History) Current() *url.URL {
	return h.entries[h.index]
}

// Push records loc as the new current location and drops any forward entries.
func (h *History) Push(loc *url.URL) {
	h.entries = append(h.entries[:h.index+1], loc)
	h.index++
}

// Back moves the cursor one entry back. It reports false at the oldest entry.
func (h *History) Back() (*url.URL, bool) {
	if h.index == 0 {
		return h.Current(), false
	}
	h.index--
	return h.Current(), true
}

// Forward moves the cursor one entry forward. It reports false at the newest entry.
func (h *History) Forward() (*url.URL, bool) {
	if h.index == len(h.entries)-1 {
		return h.Current(), false
	}
	h.index++
	return h.Current(), true
}

func (h *History) Len() int           { return len(h.entries) }
func (h *History) CanGoBack() bool    { return h.index > 0 }
func (h *History) CanGoForward() bool { return h.index < len(h.entries)-1 }
