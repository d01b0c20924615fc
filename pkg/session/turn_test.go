package session

import (
	"testing"
	"time"

	"github.com/sliceline/voiceorder/pkg/realtime"
)

func TestTurnControllerRequest(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 0)

	if tc.State() != Idle {
		t.Fatal("new controller should be Idle")
	}

	if err := tc.RequestTurn(); err != nil {
		t.Fatalf("RequestTurn() error = %v", err)
	}
	if tc.State() != Responding {
		t.Error("state should be Responding after request")
	}
	if mock.CreateCount() != 1 {
		t.Errorf("CreateCount() = %d, want 1", mock.CreateCount())
	}
}

func TestTurnControllerQueueCollapses(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 0)

	tc.RequestTurn()

	// Two more requests while responding: queued, nothing emitted.
	tc.RequestTurn()
	tc.RequestTurn()
	if mock.CreateCount() != 1 {
		t.Fatalf("CreateCount() = %d, want 1 while responding", mock.CreateCount())
	}
	if tc.QueuedCount() != 2 {
		t.Errorf("QueuedCount() = %d, want 2", tc.QueuedCount())
	}

	// Completion collapses the queue into a single follow-up turn.
	tc.Complete()
	if mock.CreateCount() != 2 {
		t.Errorf("CreateCount() = %d, want 2 (queued requests collapsed)", mock.CreateCount())
	}
	if tc.State() != Responding {
		t.Error("follow-up turn should leave state Responding")
	}
	if tc.QueuedCount() != 0 {
		t.Error("queue should be drained")
	}

	// Completing the follow-up with nothing queued stays Idle.
	tc.Complete()
	if tc.State() != Idle || mock.CreateCount() != 2 {
		t.Error("no extra turn should be emitted with an empty queue")
	}
}

func TestTurnControllerCancelWhileIdle(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 0)

	if err := tc.Cancel(); err != nil {
		t.Errorf("Cancel() while Idle error = %v, want nil no-op", err)
	}
	if mock.CancelCount() != 0 {
		t.Error("Cancel while Idle must not emit a cancellation event")
	}
}

func TestTurnControllerCancelForcesIdle(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 20*time.Millisecond)

	tc.RequestTurn()
	if err := tc.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if mock.CancelCount() != 1 {
		t.Errorf("CancelCount() = %d, want 1", mock.CancelCount())
	}

	// No acknowledgment arrives: Idle is forced after the grace period.
	deadline := time.Now().Add(time.Second)
	for tc.State() != Idle {
		if time.Now().After(deadline) {
			t.Fatal("state never forced back to Idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTurnControllerCancelAcknowledged(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 20*time.Millisecond)

	tc.RequestTurn()
	tc.Cancel()

	// The upstream acknowledges before the grace period expires.
	tc.Complete()
	if tc.State() != Idle {
		t.Fatal("acknowledged cancel should be Idle")
	}

	// A new turn begun after the acknowledgment must not be clobbered by
	// the stale grace timer.
	tc.RequestTurn()
	time.Sleep(50 * time.Millisecond)
	if tc.State() != Responding {
		t.Error("stale grace timer clobbered a new turn")
	}
	if mock.CreateCount() != 2 {
		t.Errorf("CreateCount() = %d, want 2", mock.CreateCount())
	}
}

func TestTurnControllerNoteResponding(t *testing.T) {
	mock := realtime.NewMock()
	tc := NewTurnController(mock, 0)

	// Server VAD started a response upstream on its own.
	tc.NoteResponding()
	if tc.State() != Responding {
		t.Fatal("NoteResponding should mark Responding")
	}

	// A request during that response queues rather than double-emitting.
	tc.RequestTurn()
	if mock.CreateCount() != 0 {
		t.Error("request during VAD response must queue, not emit")
	}
	tc.Complete()
	if mock.CreateCount() != 1 {
		t.Errorf("CreateCount() = %d, want 1 after completion", mock.CreateCount())
	}
}
