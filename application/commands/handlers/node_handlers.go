package handlers

import (
	"context"
	"time"

	"github.com/ProfAvery/flowy-servers/application/commands"
	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/application/services"
	"github.com/ProfAvery/flowy-servers/domain/core/entities"
	"github.com/ProfAvery/flowy-servers/domain/events"

	"go.uber.org/zap"
)

// UpsertNodeHandler handles node upsert commands
type UpsertNodeHandler struct {
	gateway   *services.NodeGateway
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUpsertNodeHandler creates a new upsert node handler. A nil publisher
// disables change events.
func NewUpsertNodeHandler(gateway *services.NodeGateway, publisher ports.EventPublisher, logger *zap.Logger) *UpsertNodeHandler {
	if publisher == nil {
		publisher = ports.NoopEventPublisher{}
	}
	return &UpsertNodeHandler{gateway: gateway, publisher: publisher, logger: logger}
}

// Handle executes the upsert node command
func (h *UpsertNodeHandler) Handle(ctx context.Context, cmd commands.UpsertNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	node, err := entities.NewNode(cmd.NodeID)
	if err != nil {
		return err
	}
	node.SetText(*cmd.Text)
	node.Checked = cmd.Checked
	node.Pinned = cmd.Pinned
	node.Collapsed = cmd.Collapsed
	node.Children = append(node.Children, cmd.Children...)

	if err := h.gateway.Upsert(ctx, node); err != nil {
		return err
	}

	// Events are best effort; the write already happened
	if err := h.publisher.Publish(ctx, events.NewNodeUpserted(node.ID, node.Children, time.Now())); err != nil {
		h.logger.Warn("Failed to publish node event",
			zap.String("nodeID", cmd.NodeID),
			zap.String("eventType", events.TypeNodeUpserted),
			zap.Error(err),
		)
	}
	return nil
}

// DeleteNodeHandler handles node deletion commands
type DeleteNodeHandler struct {
	gateway   *services.NodeGateway
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteNodeHandler creates a new delete node handler
func NewDeleteNodeHandler(gateway *services.NodeGateway, publisher ports.EventPublisher, logger *zap.Logger) *DeleteNodeHandler {
	if publisher == nil {
		publisher = ports.NoopEventPublisher{}
	}
	return &DeleteNodeHandler{gateway: gateway, publisher: publisher, logger: logger}
}

// Handle executes the delete node command
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd commands.DeleteNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	node, err := entities.NewNode(cmd.NodeID)
	if err != nil {
		return err
	}

	if err := h.gateway.Delete(ctx, cmd.NodeID); err != nil {
		return err
	}

	if err := h.publisher.Publish(ctx, events.NewNodeDeleted(node.ID, h.gateway.PurgesChildren(), time.Now())); err != nil {
		h.logger.Warn("Failed to publish node event",
			zap.String("nodeID", cmd.NodeID),
			zap.String("eventType", events.TypeNodeDeleted),
			zap.Error(err),
		)
	}
	return nil
}
