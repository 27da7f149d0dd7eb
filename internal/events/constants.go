package events

// Event type constants
const (
	// Fired after modifiers are aggregated and before the pool total is
	// computed. Listeners may change the pool's base and modifiers.
	EventTypePoolExtension EventType = "pool-extension"

	// Setting lifecycle
	EventTypeSettingActivated   EventType = "setting-activated"
	EventTypeSettingDeactivated EventType = "setting-deactivated"

	// Roll lifecycle
	EventTypeRollCreated EventType = "roll-created"
	EventTypeRollPushed  EventType = "roll-pushed"
)

// Cancellable reports whether a listener may stop delivery of this event type.
// Lifecycle events are notifications and always reach every listener.
func (t EventType) Cancellable() bool {
	return t == EventTypePoolExtension
}
