package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// ShortID returns a new 8-character identifier with the given prefix,
// e.g. "hyp_1a2b3c4d". Used for hypothesis and creative ids.
func ShortID(prefix string) ID {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return ID(fmt.Sprintf("%s_%s", prefix, raw[:8]))
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	TaskID       ID
	HypothesisID ID
	CreativeID   ID
	RunID        ID
)

func (id TaskID) String() string       { return ID(id).String() }
func (id HypothesisID) String() string { return ID(id).String() }
func (id CreativeID) String() string   { return ID(id).String() }
func (id RunID) String() string        { return ID(id).String() }

// ParseTaskID parses a string into TaskID
func ParseTaskID(s string) (TaskID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	return TaskID(s), nil
}

// ParseHypothesisID parses a string into HypothesisID
func ParseHypothesisID(s string) (HypothesisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("hypothesis ID cannot be empty")
	}
	return HypothesisID(s), nil
}

// NewCreativeID returns a short prefixed creative identifier.
func NewCreativeID() CreativeID {
	return CreativeID(ShortID("cr"))
}

// NewRunID returns a timestamp-style run identifier, e.g. "20260830T120000Z".
func NewRunID() RunID {
	return RunID(Now().Time().UTC().Format("20060102T150405Z"))
}
