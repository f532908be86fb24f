package headless

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/renderkit/pkg/assets"
)

// Image is the resource produced for image files. Only the header is
// decoded.
type Image struct {
	URL    string
	Format string
	Width  int
	Height int
}

// Blob is the resource produced for non-image files.
type Blob struct {
	URL  string
	Data []byte
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

// FileLoader loads assets from a file system. URLs are slash-separated
// paths relative to the file system root.
type FileLoader struct {
	FS fs.FS
	// Concurrency bounds parallel reads; values below 1 mean 4.
	Concurrency int

	active atomic.Int32
}

// LoadAll loads urls concurrently. On the first failure the remaining
// loads are cancelled; resources loaded so far are returned with the error.
func (l *FileLoader) LoadAll(ctx context.Context, urls []string) (map[string]assets.Resource, error) {
	limit := l.Concurrency
	if limit < 1 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	out := make(map[string]assets.Resource, len(urls))
	for _, url := range urls {
		g.Go(func() error {
			r, err := l.LoadOne(ctx, url)
			if err != nil {
				return err
			}
			mu.Lock()
			out[url] = r
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return out, err
}

// LoadOne loads a single url.
func (l *FileLoader) LoadOne(ctx context.Context, url string) (assets.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.active.Add(1)
	defer l.active.Add(-1)

	name := strings.TrimPrefix(path.Clean("/"+url), "/")
	if imageExts[strings.ToLower(path.Ext(name))] {
		f, err := l.FS.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cfg, format, err := image.DecodeConfig(f)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return Image{URL: url, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	}
	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, err
	}
	return Blob{URL: url, Data: data}, nil
}

// Busy reports whether a load is in progress.
func (l *FileLoader) Busy() bool {
	return l.active.Load() > 0
}

// MapLoader serves resources from memory and records every request.
// Unknown URLs load as their own name unless a failure is registered.
type MapLoader struct {
	mu        sync.Mutex
	resources map[string]assets.Resource
	failures  map[string]error
	calls     [][]string
	gate      chan struct{}
	active    int
}

// NewMapLoader creates an empty loader.
func NewMapLoader() *MapLoader {
	return &MapLoader{
		resources: make(map[string]assets.Resource),
		failures:  make(map[string]error),
	}
}

// Set registers the resource returned for url.
func (l *MapLoader) Set(url string, r assets.Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources[url] = r
	delete(l.failures, url)
}

// Fail makes loads of url fail with err.
func (l *MapLoader) Fail(url string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[url] = err
}

// Hold blocks subsequent loads until Release.
func (l *MapLoader) Hold() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gate == nil {
		l.gate = make(chan struct{})
	}
}

// Release unblocks held loads.
func (l *MapLoader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gate != nil {
		close(l.gate)
		l.gate = nil
	}
}

// Calls returns the URL lists of every LoadAll call so far.
func (l *MapLoader) Calls() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.calls))
	for i, c := range l.calls {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// Busy reports whether a load is in progress.
func (l *MapLoader) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active > 0
}

func (l *MapLoader) LoadAll(ctx context.Context, urls []string) (map[string]assets.Resource, error) {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string(nil), urls...))
	gate := l.gate
	l.active++
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.active--
		l.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]assets.Resource, len(urls))
	var errs []error
	for _, url := range urls {
		if err, ok := l.failures[url]; ok {
			errs = append(errs, err)
			continue
		}
		if r, ok := l.resources[url]; ok {
			out[url] = r
		} else {
			out[url] = url
		}
	}
	if len(errs) > 0 {
		return out, errs[0]
	}
	return out, nil
}
