// Package events decouples world creation from background design
// generation. The world service emits a TaskRequestEvent when a world
// is created; the task pipeline subscribes a handler that turns design
// requests into queued background tasks. Neither side imports the
// other.
package events
