package core

// Listeners is an ordered set of callbacks. Callbacks are notified in
// subscription order; removing a callback makes pending notifications to it
// no-ops. Not safe for concurrent use.
type Listeners[T any] struct {
	order  []int
	fns    map[int]func(T)
	nextID int
}

// Add registers fn and returns a function that removes it.
func (l *Listeners[T]) Add(fn func(T)) func() {
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.order = append(l.order, id)
	return func() {
		if _, ok := l.fns[id]; !ok {
			return
		}
		delete(l.fns, id)
		for i, v := range l.order {
			if v == id {
				l.order = append(l.order[:i:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// Notify calls every registered callback with v.
func (l *Listeners[T]) Notify(v T) {
	ids := append([]int(nil), l.order...)
	for _, id := range ids {
		if fn, ok := l.fns[id]; ok {
			fn(v)
		}
	}
}

// Len returns the number of registered callbacks.
func (l *Listeners[T]) Len() int {
	return len(l.fns)
}
