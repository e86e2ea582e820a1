package notification

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	hub.Publish("u1", []byte(`{"type":"booking_update"}`))

	select {
	case got := <-ch:
		assert.Equal(t, `{"type":"booking_update"}`, string(got))
	default:
		t.Fatal("expected a buffered payload")
	}
}

func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe("u1")
	_, cancel2 := hub.Subscribe("u2")
	defer cancel1()
	defer cancel2()

	hub.Publish("u2", []byte("x"))

	select {
	case <-ch1:
		t.Fatal("payload leaked to the wrong user")
	default:
	}
}

func TestHubFansOutToAllConnections(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe("u1")
	ch2, cancel2 := hub.Subscribe("u1")
	defer cancel1()
	defer cancel2()

	require.Equal(t, 2, hub.ConnectionCount("u1"))
	hub.Publish("u1", []byte("x"))

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}

func TestHubCancelRemovesConnection(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	cancel()

	assert.Equal(t, 0, hub.ConnectionCount("u1"))
	_, open := <-ch
	assert.False(t, open, "channel must be closed after cancel")

	// Cancelling twice is harmless.
	cancel()
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish("u1", []byte("x"))
	}
	require.Equal(t, 1, hub.ConnectionCount("u1"))

	// One payload past the buffer disconnects the consumer.
	hub.Publish("u1", []byte("overflow"))
	assert.Equal(t, 0, hub.ConnectionCount("u1"))

	// The buffered payloads drain, then the channel reports closed.
	for i := 0; i < subscriberBuffer; i++ {
		_, open := <-ch
		require.True(t, open)
	}
	_, open := <-ch
	assert.False(t, open)
}

func TestHubPublishRacesCancelSafely(t *testing.T) {
	hub := NewHub()

	// Undrained connections so publishes hit the full-buffer drop path
	// while cancels close the same channels concurrently.
	const conns = 8
	cancels := make([]func(), conns)
	for i := range cancels {
		_, cancel := hub.Subscribe("u1")
		cancels[i] = cancel
	}

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				hub.Publish("u1", []byte("ping"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, cancel := range cancels {
			cancel()
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, hub.ConnectionCount("u1"))
}
