package animation

// listeners is an ordered callback list whose entries can remove
// themselves while it is being notified.
type listeners[T any] struct {
	next    int
	entries []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	id := l.next
	l.next++
	l.entries = append(l.entries, listener[T]{id, fn})
	return func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners[T]) notify(v T) {
	for _, e := range append([]listener[T](nil), l.entries...) {
		e.fn(v)
	}
}

func (l *listeners[T]) clear() {
	l.entries = nil
}
