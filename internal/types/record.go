package types

import (
	"fmt"
	"strings"
)

const (
	// IDField is the partition key of the clients table. It is assigned on insert and never updated.
	IDField = "id"
	// NameField must hold a non-empty string on every created client.
	NameField = "fullName"
)

// Record is a schema-less client item. Values are scalars (string, bool, number) as decoded
// from the store or from JSON.
type Record map[string]any

// ID returns the record id or "" when unset.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	if id, ok := r[IDField].(string); ok {
		return id
	}
	return ""
}

// Clone returns a shallow copy; nil stays nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// WithoutID returns a copy without the id attribute.
func (r Record) WithoutID() Record {
	out := r.Clone()
	if out != nil {
		delete(out, IDField)
	}
	return out
}

// Validate checks the application-level rule for new clients.
func (r Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: client data is required", ErrInvalidInput)
	}
	name, ok := r[NameField].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: client data is required (%s)", ErrInvalidInput, NameField)
	}
	return nil
}
