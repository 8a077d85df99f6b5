package domain

// NodeStatus describes the lifecycle state of a single node within a run.
type NodeStatus string

const (
	// StatusPending means the node is known but has not been visited yet.
	StatusPending NodeStatus = "pending"
	// StatusRunning means the node is currently processing.
	StatusRunning NodeStatus = "running"
	// StatusCompleted means the node finished and selected a follow-up edge.
	StatusCompleted NodeStatus = "completed"
	// StatusError means the node raised and its error was recorded.
	StatusError NodeStatus = "error"
	// StatusSkipped means the node was bypassed by routing.
	StatusSkipped NodeStatus = "skipped"
	// StatusTerminal means the run ended at this node.
	StatusTerminal NodeStatus = "terminal"
)
