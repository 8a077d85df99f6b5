package graph

import "fmt"

// RoutingError reports an edge that pointed at a node id the graph
// does not know. Validate reports these before a run; hitting one at
// run time means the graph was run unvalidated.
type RoutingError struct {
	FromNodeID string
	Outcome    string
	TargetID   string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("node %q edge %q targets unknown node %q", e.FromNodeID, e.Outcome, e.TargetID)
}

// StepLimitError reports that a run exceeded its configured safety cap.
type StepLimitError struct {
	NodeID   string
	MaxSteps int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("run exceeded the %d step safety cap at node %q", e.MaxSteps, e.NodeID)
}
