package batch

import "testing"

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusValidating: false,
		StatusInProgress: false,
		StatusFinalizing: false,
		StatusCancelling: false,
		StatusCompleted:  true,
		StatusFailed:     true,
		StatusExpired:    true,
		StatusCancelled:  true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestStatusHasOutput(t *testing.T) {
	for _, status := range []Status{StatusFailed, StatusExpired, StatusCancelled, StatusInProgress} {
		if status.HasOutput() {
			t.Errorf("%s should not report output", status)
		}
	}
	if !StatusCompleted.HasOutput() {
		t.Error("completed should report output")
	}
}

func TestStatusKnown(t *testing.T) {
	if Status("paused").Known() {
		t.Error("unexpected status should not be known")
	}
	if !StatusFinalizing.Known() {
		t.Error("finalizing should be known")
	}
}
