package core

// ContextManager is a root-scoped registry of values keyed by name, with
// per-key subscriptions. A Set notifies the key's subscribers synchronously.
//
// Each key has one shared subscriber set, created lazily on the first
// Subscribe.
type ContextManager struct {
	data        map[any]any
	subscribers map[any]*Listeners[any]
}

// NewContextManager creates an empty registry.
func NewContextManager() *ContextManager {
	return &ContextManager{
		data:        make(map[any]any),
		subscribers: make(map[any]*Listeners[any]),
	}
}

// Set stores value under key and notifies the key's subscribers.
func (m *ContextManager) Set(key, value any) {
	m.data[key] = value
	if subs := m.subscribers[key]; subs != nil {
		subs.Notify(value)
	}
}

// Get returns the value stored under key.
func (m *ContextManager) Get(key any) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Subscribe registers fn for changes to key and returns an unsubscribe
// function. fn is not called until the next Set.
func (m *ContextManager) Subscribe(key any, fn func(any)) func() {
	subs := m.subscribers[key]
	if subs == nil {
		subs = &Listeners[any]{}
		m.subscribers[key] = subs
	}
	remove := subs.Add(fn)
	return func() {
		remove()
		if subs.Len() == 0 && m.subscribers[key] == subs {
			delete(m.subscribers, key)
		}
	}
}

// Len returns the number of live subscriptions across all keys.
func (m *ContextManager) Len() int {
	n := 0
	for _, subs := range m.subscribers {
		n += subs.Len()
	}
	return n
}
