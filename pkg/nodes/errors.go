package nodes

import (
	"fmt"
	"strings"
)

// MissingInputError reports a tool argument whose configured context
// path resolved to nothing.
type MissingInputError struct {
	NodeID string
	Arg    string
	Path   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("node %q: required input %q not found at path %q", e.NodeID, e.Arg, e.Path)
}

// MissingContextError reports required context keys absent at the
// start of a node's processing.
type MissingContextError struct {
	NodeID  string
	Missing []string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("node %q requires context keys that are missing: %s", e.NodeID, strings.Join(e.Missing, ", "))
}
