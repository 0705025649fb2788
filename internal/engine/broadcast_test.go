package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/inkwell/internal/block"
)

func testNotification(vector int64) block.Notification {
	return block.Notification{
		Origin:       block.Origin{Source: block.SourceUser},
		UpdateVector: vector,
		Timestamp:    1000,
	}
}

func waitNotification(t *testing.T, ch <-chan block.Notification) block.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed before notification arrived")
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return block.Notification{}
	}
}

func TestBroadcaster_CoalescesBurst(t *testing.T) {
	b := newBroadcaster(30 * time.Millisecond)
	defer b.close()

	ch, cancel := b.subscribe(4)
	defer cancel()

	// Five rapid publishes inside one debounce window.
	for i := int64(1); i <= 5; i++ {
		b.publish(testNotification(i))
	}

	n := waitNotification(t, ch)
	require.Equal(t, int64(5), n.UpdateVector, "only the last notification of the burst survives")

	// No second delivery follows.
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra notification: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_SeparateBurstsDeliverSeparately(t *testing.T) {
	b := newBroadcaster(10 * time.Millisecond)
	defer b.close()

	ch, cancel := b.subscribe(4)
	defer cancel()

	b.publish(testNotification(1))
	first := waitNotification(t, ch)
	require.Equal(t, int64(1), first.UpdateVector)

	b.publish(testNotification(2))
	second := waitNotification(t, ch)
	require.Equal(t, int64(2), second.UpdateVector)
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	b := newBroadcaster(10 * time.Millisecond)
	defer b.close()

	ch1, cancel1 := b.subscribe(1)
	defer cancel1()
	ch2, cancel2 := b.subscribe(1)
	defer cancel2()

	b.publish(testNotification(7))

	require.Equal(t, int64(7), waitNotification(t, ch1).UpdateVector)
	require.Equal(t, int64(7), waitNotification(t, ch2).UpdateVector)
}

func TestBroadcaster_CancelClosesChannel(t *testing.T) {
	b := newBroadcaster(10 * time.Millisecond)
	defer b.close()

	ch, cancel := b.subscribe(1)
	cancel()

	_, ok := <-ch
	require.False(t, ok, "cancel must close the subscriber channel")

	// Cancel is idempotent and later publishes must not panic.
	cancel()
	b.publish(testNotification(1))
	time.Sleep(30 * time.Millisecond)
}

func TestBroadcaster_CloseClosesAllSubscribers(t *testing.T) {
	b := newBroadcaster(10 * time.Millisecond)

	ch1, _ := b.subscribe(1)
	ch2, _ := b.subscribe(1)

	b.close()

	_, ok := <-ch1
	require.False(t, ok)
	_, ok = <-ch2
	require.False(t, ok)

	// Publish after close is a no-op.
	b.publish(testNotification(1))
}

func TestBroadcaster_SubscribeAfterClose(t *testing.T) {
	b := newBroadcaster(10 * time.Millisecond)
	b.close()

	ch, cancel := b.subscribe(1)
	defer cancel()

	_, ok := <-ch
	require.False(t, ok, "subscription after close yields a closed channel")
}

func TestBroadcaster_DropsWhenBufferFull(t *testing.T) {
	b := newBroadcaster(5 * time.Millisecond)
	defer b.close()

	ch, cancel := b.subscribe(1)
	defer cancel()

	// Fill the buffer, then force a second emit while the first sits unread.
	b.publish(testNotification(1))
	time.Sleep(30 * time.Millisecond)
	b.publish(testNotification(2))
	time.Sleep(30 * time.Millisecond)

	n := waitNotification(t, ch)
	require.Equal(t, int64(1), n.UpdateVector)

	// The second notification was dropped, not queued.
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued notification: %+v", extra)
	default:
	}
}
