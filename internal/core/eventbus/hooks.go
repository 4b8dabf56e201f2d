package eventbus

import "sync"

// hooks holds the observer callbacks of an EventBus. Hooks run on the
// publishing goroutine (publish, drop, subscribe) or the dispatch
// goroutine (panic), so they must not block.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// register appends fn to list under the hooks lock.
func register[F any](h *hooks, list *[]F, fn F) {
	h.mu.Lock()
	*list = append(*list, fn)
	h.mu.Unlock()
}

// snapshot copies the list chosen by pick under the read lock so hooks
// can register further hooks without deadlocking.
func snapshot[F any](h *hooks, pick func(*hooks) []F) []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]F(nil), pick(h)...)
}

// OnPublish registers fn to run after an event was queued for dispatch.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	register(&bus.hooks, &bus.hooks.onPublish, fn)
}

// OnDrop registers fn to run when the dispatch buffer is full and an
// event is discarded.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	register(&bus.hooks, &bus.hooks.onDrop, fn)
}

// OnSubscribe registers fn to run whenever a handler subscribes.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	register(&bus.hooks, &bus.hooks.onSubscribe, fn)
}

// OnPanic registers fn to run when a handler panics. fn receives the
// recovered value; a panic inside fn itself is swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	register(&bus.hooks, &bus.hooks.onPanic, fn)
}

// send queues an event without blocking the publisher.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range snapshot(&bus.hooks, func(h *hooks) []func(Event, any) { return h.onPublish }) {
			fn(event, payload)
		}
	default:
		for _, fn := range snapshot(&bus.hooks, func(h *hooks) []func(Event, any) { return h.onDrop }) {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range snapshot(&bus.hooks, func(h *hooks) []func(Event) { return h.onSubscribe }) {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range snapshot(&bus.hooks, func(h *hooks) []func(Event, any, any) { return h.onPanic }) {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
