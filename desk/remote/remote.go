// Package remote is the command boundary to the desk's companion server.
// Intents go out fire-and-forget; data comes back asynchronously and
// lands in the model store, never blocking the frame loop.
package remote

// Intent names one remote action.
type Intent string

const (
	IntentFocusStart Intent = "focus_start"
	IntentFocusEnd   Intent = "focus_end"
	IntentCleanTemp  Intent = "clean_temp"
)

// Commander emits intents. Send must not block on the network; a lost
// intent is acceptable, a stalled frame loop is not.
type Commander interface {
	Send(Intent)
}

// Null is the offline commander. Tap-driven navigation keeps working
// with no server attached.
type Null struct{}

func (Null) Send(Intent) {}
