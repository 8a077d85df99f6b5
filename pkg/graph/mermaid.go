package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arbor-flow/arbor/pkg/domain"
)

// Overlay carries run state to visualize on top of the static graph.
type Overlay struct {
	Visited []string
	Failed  []string
	Current string
}

// OverlayFromContext derives an overlay from a run's recorded statuses.
func OverlayFromContext(ec *domain.ExecutionContext) *Overlay {
	if ec == nil {
		return nil
	}
	o := &Overlay{}
	ids := make([]string, 0, len(ec.Status))
	for id := range ec.Status {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		switch ec.Status[id] {
		case domain.StatusCompleted, domain.StatusTerminal:
			o.Visited = append(o.Visited, id)
		case domain.StatusError:
			o.Failed = append(o.Failed, id)
		case domain.StatusRunning:
			o.Current = id
		}
	}
	return o
}

// Mermaid renders the graph as a Mermaid flowchart. Entry points draw
// as circles, nodes as rectangles, error edges as dashed arrows, and
// every other outcome as a labeled solid arrow. A non-nil overlay
// highlights visited, failed and current nodes.
func (g *Graph) Mermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	epNames := make([]string, 0, len(g.entryPoints))
	for name := range g.entryPoints {
		epNames = append(epNames, name)
	}
	sort.Strings(epNames)
	for _, name := range epNames {
		safeEP := "ep_" + sanitizeMermaidID(name)
		sb.WriteString(fmt.Sprintf("    %s((\"%s\")) --> %s\n",
			safeEP, name, sanitizeMermaidID(g.entryPoints[name])))
	}

	for _, id := range g.NodeIDs() {
		node := g.nodes[id]
		safeID := sanitizeMermaidID(id)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, id))

		outcomes := make([]string, 0, len(node.Next()))
		for key := range node.Next() {
			outcomes = append(outcomes, key)
		}
		sort.Strings(outcomes)
		for _, key := range outcomes {
			target := node.Next()[key]
			if target == "" {
				continue // terminal outcome, nothing to draw
			}
			arrow := fmt.Sprintf("-- \"%s\" -->", escapeMermaidLabel(key))
			if key == OutcomeError {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeMermaidLabel(key))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(target)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		for _, id := range overlay.Failed {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s failed;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return replacer.Replace(id)
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
