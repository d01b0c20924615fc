package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestReconcilerResolve(t *testing.T) {
	r := NewReconciler(time.Second)
	call := r.Register("add_to_cart")

	if call.ID == "" {
		t.Fatal("pending call should have a generated id")
	}
	if r.PendingCount() != 1 {
		t.Fatalf("PendingCount() = %d, want 1", r.PendingCount())
	}

	// A response with a mismatched call id leaves the call unresolved.
	if r.Resolve("fn_other", json.RawMessage(`{}`)) {
		t.Error("mismatched call id must not resolve")
	}
	if r.PendingCount() != 1 {
		t.Error("mismatched resolve must not deregister the call")
	}

	// The matching call id resolves exactly once.
	if !r.Resolve(call.ID, json.RawMessage(`{"success":true}`)) {
		t.Error("matching call id should resolve")
	}
	if r.PendingCount() != 0 {
		t.Error("resolved call should be deregistered")
	}

	// A duplicate delivery afterward is a no-op.
	if r.Resolve(call.ID, json.RawMessage(`{"success":true}`)) {
		t.Error("duplicate resolve must be a no-op")
	}

	payload, status := r.Await(context.Background(), call)
	if status != AwaitResolved {
		t.Fatalf("status = %v, want AwaitResolved", status)
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(payload, &out); err != nil || !out.Success {
		t.Errorf("payload = %s", payload)
	}
}

func TestReconcilerTimeout(t *testing.T) {
	r := NewReconciler(20 * time.Millisecond)
	call := r.Register("checkout")

	start := time.Now()
	payload, status := r.Await(context.Background(), call)
	if status != AwaitTimedOut {
		t.Fatalf("status = %v, want AwaitTimedOut", status)
	}
	if payload != nil {
		t.Error("timed-out await should carry no payload")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout took far longer than configured")
	}
	if r.PendingCount() != 0 {
		t.Error("timed-out call should be deregistered")
	}

	// A response arriving after the timeout is ignored.
	if r.Resolve(call.ID, json.RawMessage(`{}`)) {
		t.Error("late resolve must be a no-op")
	}
}

func TestReconcilerAbandon(t *testing.T) {
	t.Run("context cancellation", func(t *testing.T) {
		r := NewReconciler(time.Second)
		call := r.Register("add_to_cart")

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan AwaitStatus, 1)
		go func() {
			_, status := r.Await(ctx, call)
			done <- status
		}()

		cancel()

		select {
		case status := <-done:
			if status != AwaitAbandoned {
				t.Errorf("status = %v, want AwaitAbandoned", status)
			}
		case <-time.After(time.Second):
			t.Fatal("await did not return after cancellation")
		}

		if r.PendingCount() != 0 {
			t.Error("abandoned call should be deregistered")
		}
	})

	t.Run("explicit abandon", func(t *testing.T) {
		r := NewReconciler(time.Second)
		call := r.Register("add_to_cart")
		r.Abandon(call.ID)
		if r.PendingCount() != 0 {
			t.Error("Abandon should deregister the call")
		}
	})
}

func TestReconcilerConcurrentCalls(t *testing.T) {
	r := NewReconciler(time.Second)

	a := r.Register("add_to_cart")
	b := r.Register("remove_from_cart")
	if a.ID == b.ID {
		t.Fatal("call ids must be unique within a session")
	}

	// Resolving b does not touch a.
	r.Resolve(b.ID, json.RawMessage(`{"which":"b"}`))
	if r.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", r.PendingCount())
	}

	payload, status := r.Await(context.Background(), b)
	if status != AwaitResolved {
		t.Fatalf("b status = %v, want AwaitResolved", status)
	}
	var out struct {
		Which string `json:"which"`
	}
	json.Unmarshal(payload, &out)
	if out.Which != "b" {
		t.Errorf("b payload = %s", payload)
	}
}
