package types

import "time"

type ChangeType string

const (
	ClientCreated ChangeType = "client.created"
	ClientUpdated ChangeType = "client.updated"
	ClientDeleted ChangeType = "client.deleted"
)

// ChangeEvent is published after a successful write. Record is empty for deletions.
type ChangeEvent struct {
	Type   ChangeType `json:"type"`
	ID     string     `json:"id"`
	Record Record     `json:"record,omitempty"`
	At     time.Time  `json:"at"`
}
