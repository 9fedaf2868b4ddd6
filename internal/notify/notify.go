// Package notify provides desktop notifications via D-Bus and the preview
// sign-up prompt built on them.
package notify

// Urgency is the freedesktop notification priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Action is a button shown on the notification.
type Action struct {
	Key   string // returned to the caller when invoked
	Label string
}

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string   // Summary text (required)
	Body       string   // Body text (optional, supports basic markup)
	Icon       string   // Path to image file or icon name (optional)
	Timeout    int32    // ms, -1 = server default, 0 = never expire
	ReplacesID uint32   // 0 = new notification, >0 = replace existing
	Urgency    Urgency  // Low, Normal, Critical
	Actions    []Action // optional buttons
}

// flatActions encodes actions as the alternating key/label list D-Bus
// expects.
func (n Notification) flatActions() []string {
	out := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// Disabled returns a Notifier that drops everything.
func Disabled() Notifier {
	return nopNotifier{}
}

// nopNotifier accepts everything and shows nothing.
type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (nopNotifier) Close(uint32) error { return nil }
