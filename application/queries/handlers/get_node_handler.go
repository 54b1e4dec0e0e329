package handlers

import (
	"context"

	"github.com/ProfAvery/flowy-servers/application/queries"
	"github.com/ProfAvery/flowy-servers/application/services"

	"go.uber.org/zap"
)

// GetNodeHandler handles single node queries
type GetNodeHandler struct {
	gateway *services.NodeGateway
	logger  *zap.Logger
}

// NewGetNodeHandler creates a new get node handler
func NewGetNodeHandler(gateway *services.NodeGateway, logger *zap.Logger) *GetNodeHandler {
	return &GetNodeHandler{gateway: gateway, logger: logger}
}

// Handle executes the get node query
func (h *GetNodeHandler) Handle(ctx context.Context, query queries.GetNodeQuery) (*queries.GetNodeResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	node, err := h.gateway.Fetch(ctx, query.NodeID)
	if err != nil {
		return nil, err
	}

	return queries.NewGetNodeResult(node), nil
}
