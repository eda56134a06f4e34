package services

import "log"

// LogNotifier is the fire-and-forget notification collaborator. The core
// only emits events; delivery is somebody else's job, so logging is a
// complete implementation of the contract.
type LogNotifier struct{}

// NewLogNotifier creates a logging notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the event. Never fails, never blocks the caller.
func (n *LogNotifier) Notify(userID int, event string, payload map[string]interface{}) {
	log.Printf("notify user %d: %s %v", userID, event, payload)
}
