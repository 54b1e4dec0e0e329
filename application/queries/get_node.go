package queries

import (
	"github.com/ProfAvery/flowy-servers/domain/core/entities"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"
)

// GetNodeQuery represents a query to get a single node
type GetNodeQuery struct {
	NodeID string
}

// Validate validates the GetNodeQuery
func (q GetNodeQuery) Validate() error {
	if q.NodeID == "" {
		return pkgerrors.NewMalformedInputError("id is required")
	}
	return nil
}

// GetNodeResult represents the result of getting a node. Text is nil when
// the node's text was never written.
type GetNodeResult struct {
	ID        string   `json:"id"`
	Text      *string  `json:"text"`
	Checked   bool     `json:"checked"`
	Pinned    bool     `json:"pinned"`
	Collapsed bool     `json:"collapsed"`
	Children  []string `json:"children"`
}

// NewGetNodeResult converts a node entity into its response shape
func NewGetNodeResult(node *entities.Node) *GetNodeResult {
	children := node.Children
	if children == nil {
		children = []string{}
	}
	return &GetNodeResult{
		ID:        node.ID.String(),
		Text:      node.Text,
		Checked:   node.Checked,
		Pinned:    node.Pinned,
		Collapsed: node.Collapsed,
		Children:  children,
	}
}
