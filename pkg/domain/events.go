package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventNodeError EventType = "node_error"
)

// NodeEvent describes one node visit for observability consumers.
type NodeEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Type      EventType  `json:"type"`
	ContextID string     `json:"context_id"`
	NodeID    string     `json:"node_id"`
	Outcome   string     `json:"outcome,omitempty"`
	Status    NodeStatus `json:"status,omitempty"`
	Err       string     `json:"err,omitempty"`
	Duration  time.Duration
}

// LifecycleHooks defines callbacks for engine observability.
// Any nil hook is skipped.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnNodeError func(context.Context, *NodeEvent)
}
