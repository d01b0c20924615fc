package hub

import (
	"sync"
	"testing"
	"time"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
}

func TestBroadcastDelivers(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- c
	waitForCount(t, h, 1)

	h.Broadcast([]byte(`{"type":"cart_update"}`))

	select {
	case msg := <-c.send:
		if string(msg) != `{"type":"cart_update"}` {
			t.Errorf("got %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never delivered")
	}
}

// Dropping slow observers mutates the client map, which must stay safe
// against concurrent ClientCount readers (the health endpoint polls it).
func TestSlowClientDropConcurrentWithCount(t *testing.T) {
	h := New("test")
	go h.Run()

	// Unbuffered send channels, so every broadcast finds them full and
	// drops them.
	for i := 0; i < 4; i++ {
		h.register <- &Client{hub: h, send: make(chan []byte)}
	}
	waitForCount(t, h, 4)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				h.ClientCount()
			}
		}
	}()

	for i := 0; i < 50; i++ {
		h.Broadcast([]byte(`{"type":"cart_update"}`))
	}

	waitForCount(t, h, 0)
	close(done)
	wg.Wait()
}
