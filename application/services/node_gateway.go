package services

import (
	"context"
	"errors"

	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/domain/core/entities"
	"github.com/ProfAvery/flowy-servers/domain/core/valueobjects"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"

	"go.uber.org/zap"
)

// NodeGateway translates node upserts, fetches and deletes into key-value
// store operations. It holds no state of its own.
//
// A node is split across two records that are written independently: the
// field map at "flowy:<id>" and the children list at "flowy:<id>_children".
// Nothing is atomic; a failure part way through an Upsert leaves the earlier
// writes in place, and concurrent Upserts of one id may interleave.
type NodeGateway struct {
	store                 ports.KeyValueStore
	purgeChildrenOnDelete bool
	logger                *zap.Logger
}

// GatewayOption configures a NodeGateway
type GatewayOption func(*NodeGateway)

// WithChildrenPurge makes Delete remove the children list as well as the
// field map. It is off by default, which leaves the list behind.
func WithChildrenPurge(enabled bool) GatewayOption {
	return func(g *NodeGateway) {
		g.purgeChildrenOnDelete = enabled
	}
}

// NewNodeGateway creates a gateway over the given store
func NewNodeGateway(store ports.KeyValueStore, logger *zap.Logger, opts ...GatewayOption) *NodeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &NodeGateway{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Upsert overwrites the node's fields and replaces its children list.
func (g *NodeGateway) Upsert(ctx context.Context, node *entities.Node) error {
	if node == nil || node.ID.IsZero() {
		return pkgerrors.NewMalformedInputError("id is required")
	}
	if node.Text == nil {
		return pkgerrors.NewMalformedInputError("text is required")
	}

	fieldKey := node.FieldKey()
	childrenKey := node.ChildrenKey()

	if err := g.store.HSet(ctx, fieldKey, entities.FieldText, *node.Text); err != nil {
		return g.writeError("HSET "+entities.FieldText, fieldKey, err)
	}
	for _, kv := range node.Flags() {
		if err := g.store.HSet(ctx, fieldKey, kv[0], kv[1]); err != nil {
			return g.writeError("HSET "+kv[0], fieldKey, err)
		}
	}

	if err := g.store.Del(ctx, childrenKey); err != nil {
		return g.writeError("DEL", childrenKey, err)
	}
	if len(node.Children) > 0 {
		if err := g.store.RPush(ctx, childrenKey, node.Children...); err != nil {
			return g.writeError("RPUSH", childrenKey, err)
		}
	}

	g.logger.Debug("Node upserted",
		zap.String("nodeID", node.ID.String()),
		zap.Int("children", len(node.Children)),
	)
	return nil
}

// Fetch reads a node. An id that was never written is not an error: the
// result has nil text, false flags and no children.
func (g *NodeGateway) Fetch(ctx context.Context, id string) (*entities.Node, error) {
	node, err := entities.NewNode(id)
	if err != nil {
		return nil, err
	}
	fieldKey := node.FieldKey()

	text, ok, err := g.store.HGet(ctx, fieldKey, entities.FieldText)
	if err != nil {
		return nil, g.readError("HGET "+entities.FieldText, fieldKey, err)
	}
	if ok {
		node.SetText(text)
	}

	flags := []struct {
		field  string
		target *bool
	}{
		{entities.FieldChecked, &node.Checked},
		{entities.FieldPinned, &node.Pinned},
		{entities.FieldCollapsed, &node.Collapsed},
	}
	for _, f := range flags {
		stored, ok, err := g.store.HGet(ctx, fieldKey, f.field)
		if err != nil {
			return nil, g.readError("HGET "+f.field, fieldKey, err)
		}
		*f.target = valueobjects.DecodeFlag(stored, ok)
	}

	children, err := g.store.LRange(ctx, node.ChildrenKey())
	if err != nil {
		return nil, g.readError("LRANGE", node.ChildrenKey(), err)
	}
	if children != nil {
		node.Children = children
	}

	return node, nil
}

// Delete removes the node's field map. The children list is kept unless the
// gateway was built WithChildrenPurge. Deleting a missing node succeeds.
func (g *NodeGateway) Delete(ctx context.Context, id string) error {
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return pkgerrors.NewMalformedInputError(err.Error())
	}

	if err := g.store.Del(ctx, nodeID.FieldKey()); err != nil {
		return g.writeError("DEL", nodeID.FieldKey(), err)
	}

	if g.purgeChildrenOnDelete {
		if err := g.store.Del(ctx, nodeID.ChildrenKey()); err != nil {
			return g.writeError("DEL", nodeID.ChildrenKey(), err)
		}
	}

	g.logger.Debug("Node deleted",
		zap.String("nodeID", id),
		zap.Bool("childrenPurged", g.purgeChildrenOnDelete),
	)
	return nil
}

// PurgesChildren reports whether Delete also removes the children list
func (g *NodeGateway) PurgesChildren() bool {
	return g.purgeChildrenOnDelete
}

func (g *NodeGateway) writeError(op, key string, err error) error {
	g.logger.Error("Store write failed", zap.String("operation", op), zap.String("key", key), zap.Error(err))
	if isUnavailable(err) {
		return pkgerrors.NewStoreUnavailableError(op, err).WithDetails(storeDetails(op, key))
	}
	return pkgerrors.NewStoreWriteError(op, err).WithDetails(storeDetails(op, key))
}

func (g *NodeGateway) readError(op, key string, err error) error {
	g.logger.Error("Store read failed", zap.String("operation", op), zap.String("key", key), zap.Error(err))
	if isUnavailable(err) {
		return pkgerrors.NewStoreUnavailableError(op, err).WithDetails(storeDetails(op, key))
	}
	return pkgerrors.NewStoreReadError(op, err).WithDetails(storeDetails(op, key))
}

// storeDetails names the failed operation and key in the error envelope
func storeDetails(op, key string) map[string]interface{} {
	return map[string]interface{}{"operation": op, "key": key}
}

func isUnavailable(err error) bool {
	return errors.Is(err, ports.ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
