package scene

import (
	"fmt"

	"github.com/davrell/carve/pkg/geom"
)

// Severity indicates whether a finding blocks further editing of the
// node or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // geometry is unusable
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Issue is a single validation finding about a node.
type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Node     Node
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s (node %q)", i.Severity, i.Code, i.Message, i.Node.Name())
}

// checkBrushNode produces the findings for a brush node. The result is
// cached by the node and recomputed after each mutation.
func checkBrushNode(n *BrushNode) []Issue {
	var issues []Issue
	b := n.Brush()

	if !b.Closed() {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     "BRUSH_OPEN",
			Message:  "brush geometry is not a closed polyhedron",
			Node:     n,
		})
	}
	if !b.FullySpecified() {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     "BRUSH_UNDERSPECIFIED",
			Message:  "brush has faces without a complete vertex loop",
			Node:     n,
		})
	}

	// Touching the world box usually means the brush was built against
	// the wrong bounds.
	wb := n.worldBounds()
	bounds := b.Bounds()
	touch := geom.PointEpsilon * 10
	if bounds.Min.X-wb.Min.X < touch || bounds.Min.Y-wb.Min.Y < touch || bounds.Min.Z-wb.Min.Z < touch ||
		wb.Max.X-bounds.Max.X < touch || wb.Max.Y-bounds.Max.Y < touch || wb.Max.Z-bounds.Max.Z < touch {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     "BRUSH_AT_WORLD_BOUNDS",
			Message:  "brush touches the world bounds",
			Node:     n,
		})
	}

	materials := map[string]bool{}
	empty := false
	for _, f := range b.Faces() {
		if f.Material == "" {
			empty = true
			continue
		}
		materials[f.Material] = true
	}
	if empty {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     "FACE_NO_MATERIAL",
			Message:  "one or more faces have no material",
			Node:     n,
		})
	}
	if len(materials) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     "MIXED_MATERIALS",
			Message:  fmt.Sprintf("faces use %d different materials", len(materials)),
			Node:     n,
		})
	}

	return issues
}

// CheckWorld collects the findings of every brush node in the world.
func CheckWorld(w *World) []Issue {
	var issues []Issue
	for _, n := range w.BrushNodes() {
		issues = append(issues, n.Issues()...)
	}
	return issues
}
