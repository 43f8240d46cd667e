package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeDesignGeneration identifies requests to generate a visual design
// for a learning world. The task package reuses this string as its task
// type so events and stored tasks stay correlated.
const TypeDesignGeneration = "design_generation"

// TaskRequestEvent carries a request from a service to the background
// task pipeline. The payload is kept as raw JSON so this package needs
// no knowledge of individual task implementations.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// DesignRequestPayload is the payload of a TypeDesignGeneration event:
// the world whose design should be produced.
type DesignRequestPayload struct {
	WorldID uuid.UUID `json:"world_id"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent builds an event of the given type around an
// arbitrary payload.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// NewDesignRequestEvent builds a design generation request for the
// given world.
func NewDesignRequestEvent(worldID uuid.UUID) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypeDesignGeneration, DesignRequestPayload{WorldID: worldID})
}

// EventHandler processes emitted events. The task pipeline registers a
// handler that turns design requests into queued tasks.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to registered handlers. Services hold
// this interface so world creation does not depend on the task package.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
