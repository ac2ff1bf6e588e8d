package skema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/reoring/skema/internal/debug"
)

// ResourceLoader fetches the document identified by an absolute IRI. A
// loader that does not serve an IRI returns an error wrapping
// ErrResourceNotFound so that the next loader is tried.
type ResourceLoader interface {
	Load(ctx context.Context, iri string) (any, error)
}

// FuncLoader adapts a function to ResourceLoader.
type FuncLoader func(ctx context.Context, iri string) (any, error)

func (f FuncLoader) Load(ctx context.Context, iri string) (any, error) { return f(ctx, iri) }

// MapLoader serves in-memory documents keyed by IRI. Values may be decoded
// trees, []byte or string (decoded by extension).
type MapLoader struct {
	mu   sync.RWMutex
	docs map[string]any
}

// NewMapLoader returns a MapLoader holding docs.
func NewMapLoader(docs map[string]any) *MapLoader {
	m := &MapLoader{docs: make(map[string]any, len(docs))}
	for k, v := range docs {
		m.docs[k] = v
	}
	return m
}

// Set adds or replaces a document.
func (m *MapLoader) Set(iri string, doc any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string]any)
	}
	m.docs[iri] = doc
}

func (m *MapLoader) Load(_ context.Context, iri string) (any, error) {
	m.mu.RLock()
	v, ok := m.docs[iri]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrResourceNotFound
	}
	switch t := v.(type) {
	case []byte:
		return decodeDocument(iri, t, true)
	case string:
		return decodeDocument(iri, []byte(t), true)
	}
	return v, nil
}

// FSLoader serves IRIs below Prefix from a file system. The remainder of
// the IRI after Prefix is the file name.
type FSLoader struct {
	Prefix string
	FS     fs.FS
}

// NewDirLoader serves IRIs below prefix from a local directory.
func NewDirLoader(prefix, dir string) *FSLoader {
	return &FSLoader{Prefix: prefix, FS: os.DirFS(dir)}
}

func (l *FSLoader) Load(_ context.Context, iri string) (any, error) {
	if !strings.HasPrefix(iri, l.Prefix) {
		return nil, ErrResourceNotFound
	}
	name := path.Clean(strings.TrimPrefix(strings.TrimPrefix(iri, l.Prefix), "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: invalid path %q", ErrResourceNotFound, name)
	}
	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
		}
		return nil, err
	}
	return decodeDocument(iri, data, true)
}

// FileLoader serves file:// IRIs from the local file system.
type FileLoader struct{}

func (FileLoader) Load(_ context.Context, iri string) (any, error) {
	p, ok := strings.CutPrefix(iri, "file://")
	if !ok {
		return nil, ErrResourceNotFound
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
		}
		return nil, err
	}
	return decodeDocument(iri, data, true)
}

// HTTPLoader fetches http and https IRIs.
type HTTPLoader struct {
	Client *http.Client
	// MaxBytes bounds response bodies; zero means 10 MiB.
	MaxBytes int64
}

// NewHTTPLoader returns an HTTPLoader with a bounded timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{Client: &http.Client{Timeout: timeout}}
}

func (l *HTTPLoader) Load(ctx context.Context, iri string) (any, error) {
	if !strings.HasPrefix(iri, "http://") && !strings.HasPrefix(iri, "https://") {
		return nil, ErrResourceNotFound
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9")
	if debug.Load() {
		debug.Logf("load: GET %s\n", iri)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, resp.Status)
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("skema: GET %s: %s", iri, resp.Status)
	}
	limit := l.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: GET %s: more than %d bytes", ErrResourceTooLarge, iri, limit)
	}
	name := iri
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		name += ".yaml"
	}
	return decodeDocument(name, data, true)
}

// Mapping rewrites IRIs starting with Prefix.
type Mapping struct {
	Prefix      string
	Replacement string
}

// Mappings apply the longest matching prefix.
type Mappings []Mapping

// Map returns the rewritten IRI.
func (m Mappings) Map(iri string) string {
	best := -1
	for i, mp := range m {
		if strings.HasPrefix(iri, mp.Prefix) && (best < 0 || len(mp.Prefix) > len(m[best].Prefix)) {
			best = i
		}
	}
	if best < 0 {
		return iri
	}
	return m[best].Replacement + strings.TrimPrefix(iri, m[best].Prefix)
}
