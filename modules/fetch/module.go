// Package fetch provides the "fetch" macro. It resolves the input element's
// path and loads what the path points at: web links over HTTP, home-relative
// paths through the execution runtime.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/specialistvlad/macrograph/internal/graphpath"
	"github.com/specialistvlad/macrograph/internal/macro"
)

// Name is the macro name this module registers.
const Name = "fetch"

// DefaultMaxBodySize bounds a web response body when Module.MaxBodySize is
// unset.
const DefaultMaxBodySize = 10 << 20

// ErrBodyTooLarge is returned when a web response exceeds the body limit.
var ErrBodyTooLarge = errors.New("fetch: response body too large")

// ErrUnsupportedLocation is returned for paths that are neither web links
// nor home-relative.
var ErrUnsupportedLocation = errors.New("fetch: neither a web link nor a home-relative path")

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.Status)
}

// Module implements the macro.Module interface for this package.
type Module struct {
	Resolver *graphpath.Resolver
	Bridge   *bridge.Bridge
	Client   *http.Client // http.DefaultClient when nil
	// MaxBodySize caps web response bodies in bytes. Zero means
	// DefaultMaxBodySize.
	MaxBodySize int64
}

// Register registers the macro with the registry.
func (m *Module) Register(r *macro.Registry) {
	r.Register(Name, m.Run)
	r.Describe(Name, "Loads the web link or home-relative file named by the input element's path.")
}

// Run fetches the location named by the input element's path.
func (m *Module) Run(ctx context.Context, inv macro.Invocation) (macro.Result, error) {
	location, err := m.Resolver.ResolvePath(inv.Scene, inv.Input, inv.OutputRef())
	if err != nil {
		return macro.Result{}, err
	}
	ctx = ctxlog.With(ctx, "location", location)
	logger := ctxlog.FromContext(ctx)

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		logger.Debug("Fetching web location.")
		body, err := m.get(ctx, RawURL(location))
		if err != nil {
			return macro.Result{}, err
		}
		return macro.Text(body), nil
	case strings.HasPrefix(location, "~/"):
		logger.Debug("Reading local file through the runtime.")
		data, err := m.readLocal(ctx, location)
		if err != nil {
			return macro.Result{}, err
		}
		return macro.Text(data), nil
	default:
		return macro.Result{}, fmt.Errorf("%w: %q", ErrUnsupportedLocation, location)
	}
}

func (m *Module) get(ctx context.Context, url string) (string, error) {
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, Status: resp.StatusCode}
	}
	limit := m.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(body)) > limit {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, limit)
	}
	return string(body), nil
}

func (m *Module) readLocal(ctx context.Context, location string) (string, error) {
	p, err := m.Bridge.Submit(ctx, bridge.Request{
		Code:     ReadFileScript(location),
		Argument: location,
		Runtime:  "deno",
	})
	if err != nil {
		return "", err
	}
	return p.Wait(ctx)
}

// ReadFileScript returns the runtime script that reads path as text.
func ReadFileScript(path string) string {
	return "async function readFile(input) {\n" +
		"  return await Deno.readTextFile(" + strconv.Quote(path) + ");\n" +
		"}\n"
}

// RawURL rewrites GitHub page links to their raw content location. A
// "tree/<branch>" part is collapsed to "<branch>". Other URLs are returned
// unchanged.
func RawURL(url string) string {
	const (
		github = "https://github.com"
		raw    = "https://raw.githubusercontent.com"
	)
	if !strings.HasPrefix(url, github) {
		return url
	}
	url = raw + strings.TrimPrefix(url, github)

	idx := strings.Index(url, "/tree/")
	if idx < 0 {
		return url
	}
	rest := url[idx+len("/tree/"):]
	branch, _, _ := strings.Cut(rest, "/")
	return strings.Replace(url, "/tree/"+branch, "/"+branch, 1)
}
