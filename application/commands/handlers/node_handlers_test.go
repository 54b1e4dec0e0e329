package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/ProfAvery/flowy-servers/application/commands"
	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/application/services"
	"github.com/ProfAvery/flowy-servers/domain/events"
	"github.com/ProfAvery/flowy-servers/infrastructure/persistence/memory"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func TestUpsertNodeHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	gateway := services.NewNodeGateway(store, zap.NewNop())
	h := NewUpsertNodeHandler(gateway, nil, zap.NewNop())

	err := h.Handle(ctx, commands.UpsertNodeCommand{
		NodeID:   "1",
		Text:     strPtr("hello"),
		Checked:  true,
		Children: []string{"2", "3"},
	})
	require.NoError(t, err)

	node, err := gateway.Fetch(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "hello", node.TextValue())
	assert.True(t, node.Checked)
	assert.False(t, node.Pinned)
	assert.Equal(t, []string{"2", "3"}, node.Children)
}

func TestUpsertNodeHandlerRejectsIncompleteCommand(t *testing.T) {
	store := memory.NewKVStore()
	h := NewUpsertNodeHandler(services.NewNodeGateway(store, zap.NewNop()), nil, zap.NewNop())

	tests := map[string]commands.UpsertNodeCommand{
		"missing id":       {Text: strPtr("a"), Children: []string{}},
		"missing text":     {NodeID: "1", Children: []string{}},
		"missing children": {NodeID: "1", Text: strPtr("a")},
	}
	for name, cmd := range tests {
		t.Run(name, func(t *testing.T) {
			err := h.Handle(context.Background(), cmd)
			assert.True(t, pkgerrors.IsMalformedInput(err))
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestDeleteNodeHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	gateway := services.NewNodeGateway(store, zap.NewNop())
	upsert := NewUpsertNodeHandler(gateway, nil, zap.NewNop())
	del := NewDeleteNodeHandler(gateway, nil, zap.NewNop())

	require.NoError(t, upsert.Handle(ctx, commands.UpsertNodeCommand{
		NodeID: "1", Text: strPtr("x"), Children: []string{"2"},
	}))
	require.NoError(t, del.Handle(ctx, commands.DeleteNodeCommand{NodeID: "1"}))

	node, err := gateway.Fetch(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, node.Text)
	assert.Equal(t, []string{"2"}, node.Children)

	err = del.Handle(ctx, commands.DeleteNodeCommand{})
	assert.True(t, pkgerrors.IsMalformedInput(err))
}

type recordingPublisher struct {
	published []events.DomainEvent
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	p.published = append(p.published, evts...)
	return p.err
}

var _ ports.EventPublisher = (*recordingPublisher)(nil)

func TestHandlersPublishEvents(t *testing.T) {
	ctx := context.Background()
	gateway := services.NewNodeGateway(memory.NewKVStore(), zap.NewNop(), services.WithChildrenPurge(true))
	publisher := &recordingPublisher{}

	upsert := NewUpsertNodeHandler(gateway, publisher, zap.NewNop())
	del := NewDeleteNodeHandler(gateway, publisher, zap.NewNop())

	require.NoError(t, upsert.Handle(ctx, commands.UpsertNodeCommand{NodeID: "1", Text: strPtr("x"), Children: []string{"2"}}))
	require.NoError(t, del.Handle(ctx, commands.DeleteNodeCommand{NodeID: "1"}))

	require.Len(t, publisher.published, 2)

	upserted, ok := publisher.published[0].(events.NodeUpserted)
	require.True(t, ok)
	assert.Equal(t, "1", upserted.NodeID)
	assert.Equal(t, []string{"2"}, upserted.Children)

	deleted, ok := publisher.published[1].(events.NodeDeleted)
	require.True(t, ok)
	assert.True(t, deleted.ChildrenPurged)
}

func TestHandlersIgnorePublishFailures(t *testing.T) {
	ctx := context.Background()
	gateway := services.NewNodeGateway(memory.NewKVStore(), zap.NewNop())
	publisher := &recordingPublisher{err: errors.New("bus unavailable")}

	upsert := NewUpsertNodeHandler(gateway, publisher, zap.NewNop())
	require.NoError(t, upsert.Handle(ctx, commands.UpsertNodeCommand{NodeID: "1", Text: strPtr("x"), Children: []string{}}))

	node, err := gateway.Fetch(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "x", node.TextValue())
}

func TestHandlersSkipEventsOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	require.NoError(t, store.Close())
	publisher := &recordingPublisher{}

	upsert := NewUpsertNodeHandler(services.NewNodeGateway(store, zap.NewNop()), publisher, zap.NewNop())
	err := upsert.Handle(ctx, commands.UpsertNodeCommand{NodeID: "1", Text: strPtr("x"), Children: []string{}})

	assert.True(t, pkgerrors.IsStoreUnavailable(err))
	assert.Empty(t, publisher.published)
}
