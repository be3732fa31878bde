package audit

import "time"

// Action enumerates the mutation kinds recorded in the trail.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Actor identifies who performed a mutation. A nil actor records a system
// mutation (migrations, seeding, scheduled jobs).
type Actor struct {
	UID   string
	Email string
}

// Entry is an immutable audit record. Entries are written once by the
// logger and never updated or deleted by the application.
type Entry struct {
	ID         int64
	EntityType string
	EntityID   string
	Action     Action
	Actor      *Actor
	OldData    map[string]any
	NewData    map[string]any
	Source     string
	OccurredAt time.Time
}

// Change is the document-change event delivered to the audit hook. Before
// and After are full field snapshots of the document around the mutation.
type Change struct {
	Collection string         `json:"collection"`
	DocumentID string         `json:"document_id"`
	Action     Action         `json:"action"`
	ActorUID   string         `json:"actor_uid,omitempty"`
	ActorEmail string         `json:"actor_email,omitempty"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Source     string         `json:"source,omitempty"`
}
