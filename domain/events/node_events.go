package events

import (
	"time"

	"github.com/ProfAvery/flowy-servers/domain/core/valueobjects"
)

// Event types
const (
	TypeNodeUpserted = "node.upserted"
	TypeNodeDeleted  = "node.deleted"
)

// SourceGateway is the event source reported to subscribers
const SourceGateway = "flowy.gateway"

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// NodeUpserted is raised after a node's fields and children were written
type NodeUpserted struct {
	BaseEvent
	NodeID   string   `json:"node_id"`
	Children []string `json:"children"`
}

// NewNodeUpserted creates a NodeUpserted event
func NewNodeUpserted(nodeID valueobjects.NodeID, children []string, timestamp time.Time) NodeUpserted {
	return NodeUpserted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeUpserted,
			Timestamp:   timestamp,
		},
		NodeID:   nodeID.String(),
		Children: children,
	}
}

// NodeDeleted is raised after a node's field map was removed
type NodeDeleted struct {
	BaseEvent
	NodeID         string `json:"node_id"`
	ChildrenPurged bool   `json:"children_purged"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(nodeID valueobjects.NodeID, childrenPurged bool, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeDeleted,
			Timestamp:   timestamp,
		},
		NodeID:         nodeID.String(),
		ChildrenPurged: childrenPurged,
	}
}
