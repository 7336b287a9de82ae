// Package observable provides a synchronous, single-threaded notification
// stream whose subscribers can be primed with a snapshot when they subscribe.
package observable

// FilterFunc is used to filter values before they reach an observer.
type FilterFunc[T any] func(v T) bool

// Observer is a registered callback. It is returned by Add so it can be removed.
type Observer[T any] struct {
	fn      func(T)
	filters []FilterFunc[T]
	removed bool
}

func (o *Observer[T]) deliver(v T) {
	if o.removed {
		return
	}
	for _, f := range o.filters {
		if !f(v) {
			return
		}
	}
	o.fn(v)
}

// Observable dispatches values to its observers in subscription order.
// It is not safe for concurrent use.
type Observable[T any] struct {
	observers []*Observer[T]
	onAdd     func(o *Observer[T])
}

// New returns an Observable. If onAdd is not nil it runs right after each
// observer is added, before Add returns; use NotifyObserver from it to replay
// existing state to the new observer only.
func New[T any](onAdd func(o *Observer[T])) *Observable[T] {
	return &Observable[T]{onAdd: onAdd}
}

// Add registers fn. Values rejected by any filter are not delivered.
func (ob *Observable[T]) Add(fn func(T), filters ...FilterFunc[T]) *Observer[T] {
	o := &Observer[T]{fn: fn, filters: filters}
	ob.observers = append(ob.observers, o)
	if ob.onAdd != nil {
		ob.onAdd(o)
	}
	return o
}

// Remove unregisters o. It is a no-op for unknown or already removed observers.
func (ob *Observable[T]) Remove(o *Observer[T]) {
	if o == nil {
		return
	}
	for i, cur := range ob.observers {
		if cur == o {
			o.removed = true
			ob.observers = append(ob.observers[:i:i], ob.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers v to every observer registered when Notify was called.
func (ob *Observable[T]) Notify(v T) {
	snapshot := ob.observers
	for _, o := range snapshot {
		o.deliver(v)
	}
}

// NotifyObserver delivers v to o alone.
func (ob *Observable[T]) NotifyObserver(o *Observer[T], v T) {
	o.deliver(v)
}

// Len returns the number of registered observers.
func (ob *Observable[T]) Len() int {
	return len(ob.observers)
}

// Clear removes every observer.
func (ob *Observable[T]) Clear() {
	for _, o := range ob.observers {
		o.removed = true
	}
	ob.observers = nil
}
