package entities

import (
	"github.com/ProfAvery/flowy-servers/domain/core/valueobjects"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"
)

// Field names inside a node's field-map record.
const (
	FieldText      = "text"
	FieldChecked   = "checked"
	FieldPinned    = "pinned"
	FieldCollapsed = "collapsed"
)

// Node is a single tree entry. Children are references to other node ids and
// their order is significant.
//
// Text is nil when the field was never written, which is distinct from an
// empty string.
type Node struct {
	ID        valueobjects.NodeID
	Text      *string
	Checked   bool
	Pinned    bool
	Collapsed bool
	Children  []string
}

// NewNode creates a node for the given id with no fields written.
func NewNode(id string) (*Node, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewMalformedInputError(err.Error())
	}
	return &Node{
		ID:       nodeID,
		Children: []string{},
	}, nil
}

// SetText records a written text value
func (n *Node) SetText(text string) {
	n.Text = &text
}

// TextValue returns the text, or the empty string when never written
func (n *Node) TextValue() string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

// Flags returns the encoded flag fields in a stable order, ready to be written
// into the field-map record.
func (n *Node) Flags() [][2]string {
	return [][2]string{
		{FieldChecked, valueobjects.EncodeFlag(n.Checked)},
		{FieldPinned, valueobjects.EncodeFlag(n.Pinned)},
		{FieldCollapsed, valueobjects.EncodeFlag(n.Collapsed)},
	}
}

// FieldKey returns the key of this node's field-map record
func (n *Node) FieldKey() string {
	return n.ID.FieldKey()
}

// ChildrenKey returns the key of this node's children-list record
func (n *Node) ChildrenKey() string {
	return n.ID.ChildrenKey()
}
