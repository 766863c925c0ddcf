// Package broadcast provides the process-wide logout channel. The token
// refresh coordinator lives outside any delivery surface, so this is how it
// forces the session manager to log out.
package broadcast

import "sync"

// LogoutBroadcast is a minimal publish/subscribe channel with no payload.
// It is constructed once at startup and injected into both the session
// manager and the request pipeline; there is no hidden package-level state.
type LogoutBroadcast struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// New creates an empty broadcast.
func New() *LogoutBroadcast {
	return &LogoutBroadcast{subs: make(map[int]func())}
}

// Subscribe registers fn and returns a function that removes it.
// Unsubscribing twice is harmless.
func (b *LogoutBroadcast) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish invokes every currently subscribed callback. The subscriber set is
// snapshotted before iterating, so a callback may unsubscribe itself or
// others mid-broadcast without corrupting the iteration.
func (b *LogoutBroadcast) Publish() {
	b.mu.Lock()
	snapshot := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		snapshot = append(snapshot, fn)
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}
