package valueobjects

import (
	"errors"
)

// KeyPrefix namespaces every record this service writes. Existing data depends
// on it, so it must not change.
const KeyPrefix = "flowy:"

// childrenSuffix is appended to the field-map key to address the children list.
const childrenSuffix = "_children"

// NodeID is a value object wrapping the opaque, caller-supplied node identifier.
// Uniqueness is not enforced; any non-empty string is accepted.
type NodeID struct {
	value string
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// FieldKey is the key of the hash holding text and flags.
func (id NodeID) FieldKey() string {
	return KeyPrefix + id.value
}

// ChildrenKey is the key of the list holding the ordered child ids.
func (id NodeID) ChildrenKey() string {
	return id.FieldKey() + childrenSuffix
}
