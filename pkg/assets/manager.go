package assets

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/go-drift/renderkit/pkg/errors"
)

var errMissing = stderrors.New("loader returned no resource")

// Option configures a Manager.
type Option func(*Manager)

// WithDispatch sets the function used to deliver notifications. Render
// roots pass their scheduler's Dispatch so subscribers run on the owner
// goroutine. The default calls notifications inline on the loading goroutine.
func WithDispatch(dispatch func(func())) Option {
	return func(m *Manager) { m.dispatch = dispatch }
}

// WithContext sets the parent context for background loads.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) { m.parent = ctx }
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

type subscriber struct {
	id int
	fn func(Batch)
}

// Manager is a per-root asset cache. A URL is fetched at most once while
// it is loading or cached; failed URLs are not cached and may be retried.
type Manager struct {
	loader   Loader
	dispatch func(func())
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
	group    singleflight.Group

	mu       sync.Mutex
	cache    map[string]Resource
	loading  map[string]struct{}
	subs     []subscriber
	nextID   int
	inflight int
}

// NewManager creates a manager that fetches through loader.
func NewManager(loader Loader, opts ...Option) *Manager {
	m := &Manager{
		loader:  loader,
		parent:  context.Background(),
		cache:   make(map[string]Resource),
		loading: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dispatch == nil {
		m.dispatch = func(fn func()) { fn() }
	}
	if m.logger == nil {
		m.logger = errors.Logger()
	}
	m.ctx, m.cancel = context.WithCancel(m.parent)
	return m
}

// Get returns a cached resource.
func (m *Manager) Get(url string) (Resource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.cache[url]
	return r, ok
}

// Has reports whether url is cached.
func (m *Manager) Has(url string) bool {
	_, ok := m.Get(url)
	return ok
}

// HasAll reports whether every url is cached.
func (m *Manager) HasAll(urls []string) bool {
	return len(m.Missing(urls)) == 0
}

// Missing returns the urls that are not cached, in order and without
// duplicates.
func (m *Manager) Missing(urls []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var missing []string
	for _, url := range urls {
		if _, ok := m.cache[url]; ok || slices.Contains(missing, url) {
			continue
		}
		missing = append(missing, url)
	}
	return missing
}

// Len returns the number of cached resources.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// Busy reports whether any batch is still loading or has a notification
// that has not yet been handed to the dispatcher.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight > 0
}

// Subscribe registers fn to be notified after every batch. The returned
// function unsubscribes; notifications after that are dropped.
func (m *Manager) Subscribe(fn func(Batch)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subs = slices.DeleteFunc(m.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Subscribers returns the number of live subscriptions.
func (m *Manager) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// AddMany loads every url that is neither cached nor already loading, in
// the background, then notifies all subscribers. Subscribers are notified
// even when nothing needed loading. Returns the urls this call fetches.
func (m *Manager) AddMany(urls []string) []string {
	m.mu.Lock()
	var fetch []string
	for _, url := range urls {
		if _, ok := m.cache[url]; ok {
			continue
		}
		if _, ok := m.loading[url]; ok || slices.Contains(fetch, url) {
			continue
		}
		fetch = append(fetch, url)
	}
	for _, url := range fetch {
		m.loading[url] = struct{}{}
	}
	m.inflight++
	m.mu.Unlock()

	requested := slices.Clone(urls)
	go func() {
		batch := Batch{URLs: requested}
		if len(fetch) > 0 {
			batch.Loaded, batch.Err = m.fetch(m.ctx, fetch)
		}
		m.dispatch(func() { m.notify(batch) })
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}()
	return fetch
}

// Load returns a single resource, fetching it if needed. Concurrent calls
// for the same url share one fetch. Load does not notify subscribers.
func (m *Manager) Load(ctx context.Context, url string) (Resource, error) {
	if r, ok := m.Get(url); ok {
		return r, nil
	}
	v, err, _ := m.group.Do(url, func() (any, error) {
		if r, ok := m.Get(url); ok {
			return r, nil
		}
		if _, err := m.fetch(ctx, []string{url}); err != nil {
			return nil, err
		}
		r, _ := m.Get(url)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Preload fetches every missing url and blocks until done.
func (m *Manager) Preload(ctx context.Context, urls []string) error {
	missing := m.Missing(urls)
	if len(missing) == 0 {
		return nil
	}
	_, err := m.fetch(ctx, missing)
	return err
}

// Close cancels background loads. Notifications for batches already
// loading are still delivered, carrying the cancellation error.
func (m *Manager) Close() {
	m.cancel()
}

func (m *Manager) fetch(ctx context.Context, urls []string) ([]string, error) {
	m.logger.Debug("loading assets", slog.Any("urls", urls))
	var (
		resources map[string]Resource
		err       error
	)
	if m.loader == nil {
		err = errors.ErrNoResolver
	} else {
		func() {
			defer errors.Recover("assets.Manager.fetch", func(p *errors.PanicError) { err = p })
			resources, err = m.loader.LoadAll(ctx, urls)
		}()
	}

	m.mu.Lock()
	var loaded, failed []string
	for _, url := range urls {
		delete(m.loading, url)
		if r, ok := resources[url]; ok {
			m.cache[url] = r
			loaded = append(loaded, url)
		} else {
			failed = append(failed, url)
		}
	}
	m.mu.Unlock()

	if len(failed) == 0 {
		return loaded, nil
	}
	if err == nil {
		err = errMissing
	}
	m.logger.Warn("asset load failed", slog.Any("urls", failed), slog.String("error", err.Error()))
	return loaded, &errors.AssetError{URLs: failed, Err: err}
}

func (m *Manager) notify(batch Batch) {
	m.mu.Lock()
	subs := slices.Clone(m.subs)
	m.mu.Unlock()
	for _, s := range subs {
		if !m.subscribed(s.id) {
			continue
		}
		s.fn(batch)
	}
}

func (m *Manager) subscribed(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.subs, func(s subscriber) bool { return s.id == id })
}
