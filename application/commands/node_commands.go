package commands

import (
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"
	"github.com/ProfAvery/flowy-servers/pkg/utils"
)

// UpsertNodeCommand overwrites a node's fields and replaces its children
type UpsertNodeCommand struct {
	NodeID    string   `json:"id" validate:"required"`
	Text      *string  `json:"text" validate:"required"`
	Checked   bool     `json:"checked"`
	Pinned    bool     `json:"pinned"`
	Collapsed bool     `json:"collapsed"`
	Children  []string `json:"children" validate:"required"`
}

// Validate validates the UpsertNodeCommand
func (c UpsertNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewMalformedInputError(err.Error())
	}
	return nil
}

// DeleteNodeCommand removes a node's field map
type DeleteNodeCommand struct {
	NodeID string `json:"id" validate:"required"`
}

// Validate validates the DeleteNodeCommand
func (c DeleteNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewMalformedInputError(err.Error())
	}
	return nil
}
