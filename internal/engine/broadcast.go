package engine

import (
	"sync"
	"time"

	"github.com/roach88/inkwell/internal/block"
)

// DefaultDebounce is the delay between a committed transaction and the
// resulting notification. A second commit inside the window cancels and
// reschedules, so a burst yields exactly one notification.
const DefaultDebounce = 50 * time.Millisecond

// broadcaster delivers coalesced state-change notifications to
// subscribers with a trailing-edge debounce.
//
// Subscription is bounded: each subscriber gets a buffered channel, and
// a notification that does not fit is dropped for that subscriber rather
// than blocking the engine. Subscribers that care can detect gaps via
// Notification.UpdateVector.
type broadcaster struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending *block.Notification
	subs    map[int]chan block.Notification
	nextSub int
	closed  bool
}

func newBroadcaster(delay time.Duration) *broadcaster {
	return &broadcaster{
		delay: delay,
		subs:  make(map[int]chan block.Notification),
	}
}

// publish schedules n for delivery after the debounce delay, replacing
// any notification already pending. Only the last notification of a
// burst is delivered.
func (b *broadcaster) publish(n block.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = &n
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.emit)
}

// emit delivers the pending notification to every subscriber.
func (b *broadcaster) emit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.pending == nil {
		return
	}
	n := *b.pending
	b.pending = nil
	b.timer = nil
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
			// Subscriber buffer full: drop rather than block the engine.
		}
	}
}

// subscribe registers a subscriber with the given channel buffer size
// (minimum 1) and returns the channel plus a cancel func. The channel is
// closed on cancel or broadcaster shutdown.
func (b *broadcaster) subscribe(buffer int) (<-chan block.Notification, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan block.Notification, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// close stops the timer, drops any pending notification, and closes all
// subscriber channels.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pending = nil
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
