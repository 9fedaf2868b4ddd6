package notify

import (
	"slices"
	"testing"
)

func TestUrgencyValues(t *testing.T) {
	// Urgency levels are fixed by the freedesktop notification protocol.
	if UrgencyLow != 0 || UrgencyNormal != 1 || UrgencyCritical != 2 {
		t.Errorf("urgency values = %d %d %d, want 0 1 2", UrgencyLow, UrgencyNormal, UrgencyCritical)
	}
}

func TestNotification_FlatActions(t *testing.T) {
	n := Notification{Actions: []Action{{"signup", "Sign up"}, {"later", "Later"}}}
	want := []string{"signup", "Sign up", "later", "Later"}
	if got := n.flatActions(); !slices.Equal(got, want) {
		t.Errorf("flatActions() = %v, want %v", got, want)
	}

	if got := (Notification{}).flatActions(); got == nil || len(got) != 0 {
		t.Errorf("flatActions() on no actions = %#v, want empty non-nil", got)
	}
}

func TestDisabled(t *testing.T) {
	n := Disabled()
	id, err := n.Notify(Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("Notify() = %d, %v; want 0, nil", id, err)
	}
	if err := n.Close(1); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
