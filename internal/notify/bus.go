// Package notify propagates state changes to independently rendered views
// that do not share a store.
//
// Two mechanisms, matching the two classes of change:
//
//   - Bus: a typed pub/sub channel for session events (login/logout).
//     Views subscribe on mount and unsubscribe on teardown.
//   - Signals: coarse revision cells for data mutations (post added/edited,
//     like, view, follow). Views remember the last revision they rendered
//     and re-fetch when the cell has moved on.
package notify

import "sync"

// SessionEventType discriminates session events.
type SessionEventType int

const (
	// SessionLogin fires after a credential is stored.
	SessionLogin SessionEventType = iota + 1
	// SessionLogout fires after the credential is cleared.
	SessionLogout
)

// SessionEvent describes a session transition. Identity fields are only
// populated on login.
type SessionEvent struct {
	Type     SessionEventType
	UserID   string
	Username string
	Role     string
}

// Bus delivers session events to subscribers synchronously, in subscription
// order. Synchronous delivery keeps ordering deterministic: by the time
// Publish returns, every mounted view has seen the event.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]func(SessionEvent)
	order  []int
	nextID int
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(SessionEvent))}
}

// Subscribe registers fn and returns an unsubscribe function. Callers must
// invoke the returned function on teardown; a subscription that outlives
// its view would keep receiving events against disposed state.
func (b *Bus) Subscribe(fn func(SessionEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, sid := range b.order {
			if sid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers e to every current subscriber.
func (b *Bus) Publish(e SessionEvent) {
	b.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(b.order))
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	// Deliver outside the lock so a subscriber may unsubscribe itself.
	for _, fn := range fns {
		fn(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
