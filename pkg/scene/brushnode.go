package scene

import (
	"fmt"

	"github.com/davrell/carve/pkg/brush"
	"github.com/davrell/carve/pkg/geom"
	"github.com/davrell/carve/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultWorldBounds is used by brush nodes that are not attached to a
// world.
var DefaultWorldBounds = sdf.Box3{
	Min: v3.Vec{X: -16384, Y: -16384, Z: -16384},
	Max: v3.Vec{X: 16384, Y: 16384, Z: 16384},
}

// BrushNode is a leaf node owning exactly one brush. All geometry
// mutations go through the node so that observers are notified and the
// render and issue caches stay fresh.
type BrushNode struct {
	base
	brush *brush.Brush

	mesh      *tessellate.Mesh
	meshValid bool

	issues      []Issue
	issuesValid bool
}

// NewBrushNode wraps a brush in a node. The node takes ownership of
// the brush.
func NewBrushNode(name string, b *brush.Brush) *BrushNode {
	return &BrushNode{base: newBase(name), brush: b}
}

func (n *BrushNode) Kind() Kind { return KindBrush }

// Brush returns the owned brush. Callers must not mutate it directly;
// use the node's mutation methods.
func (n *BrushNode) Brush() *brush.Brush { return n.brush }

// SetBrush replaces the owned brush wholesale, inside the usual
// notification bracket. The node takes ownership of b.
func (n *BrushNode) SetBrush(b *brush.Brush) error {
	return n.mutate(func(sdf.Box3) error {
		if b == nil {
			return fmt.Errorf("set brush: nil brush")
		}
		n.brush = b
		return nil
	})
}

func (n *BrushNode) worldBounds() sdf.Box3 {
	if w := ContainingWorld(n); w != nil {
		return w.Bounds()
	}
	return DefaultWorldBounds
}

func (n *BrushNode) defaultMaterial() string {
	if w := ContainingWorld(n); w != nil {
		return w.DefaultMaterial()
	}
	return ""
}

// mutate runs op inside a notification bracket. NodeWillChange fires
// before op; NodeDidChange and BoundsDidChange fire exactly once each
// on every exit path, success or failure. The spatial index is only
// touched when the bounds actually moved. The caches are invalidated
// regardless of op's outcome.
func (n *BrushNode) mutate(op func(worldBounds sdf.Box3) error) error {
	w := ContainingWorld(n)
	if w != nil {
		w.notifyWillChange(n)
	}
	before := n.brush.Bounds()
	defer func() {
		n.Invalidate()
		if w != nil {
			w.notifyDidChange(n)
			w.notifyBoundsChange(n, !sameBox(before, n.brush.Bounds()))
		}
	}()
	return op(n.worldBounds())
}

func sameBox(a, b sdf.Box3) bool {
	return geom.NearEqualVec(a.Min, b.Min) && geom.NearEqualVec(a.Max, b.Max)
}

// Invalidate marks the render mesh and issue caches dirty. Calling it
// again before the next read is a no-op.
func (n *BrushNode) Invalidate() {
	n.meshValid = false
	n.issuesValid = false
}

// RenderMesh returns the triangle mesh for the brush, rebuilding it
// only if a mutation happened since the last call.
func (n *BrushNode) RenderMesh() *tessellate.Mesh {
	if !n.meshValid {
		n.mesh = tessellate.Brush(n.brush)
		n.mesh.Name = n.Name()
		n.meshValid = true
	}
	return n.mesh
}

// Issues returns the cached validation findings for the node.
func (n *BrushNode) Issues() []Issue {
	if !n.issuesValid {
		n.issues = checkBrushNode(n)
		n.issuesValid = true
	}
	return n.issues
}

// Read-only queries delegate straight to the brush and never touch the
// caches.

func (n *BrushNode) Bounds() sdf.Box3     { return n.brush.Bounds() }
func (n *BrushNode) Faces() []*brush.Face { return n.brush.Faces() }
func (n *BrushNode) FaceCount() int       { return n.brush.FaceCount() }
func (n *BrushNode) Vertices() []v3.Vec   { return n.brush.Vertices() }
func (n *BrushNode) VertexCount() int     { return n.brush.VertexCount() }
func (n *BrushNode) EdgeCount() int       { return n.brush.EdgeCount() }
func (n *BrushNode) Closed() bool         { return n.brush.Closed() }
func (n *BrushNode) Volume() float64      { return n.brush.Volume() }

func (n *BrushNode) ContainsPoint(p v3.Vec) bool { return n.brush.ContainsPoint(p) }

func (n *BrushNode) IntersectRay(r geom.Ray) (*brush.Face, float64, bool) {
	return n.brush.IntersectRay(r)
}

func (n *BrushNode) CanMoveVertices(positions []v3.Vec, delta v3.Vec) bool {
	return n.brush.CanMoveVertices(n.worldBounds(), positions, delta)
}

// MoveVertices translates the selected vertices and returns their
// canonical positions after the move.
func (n *BrushNode) MoveVertices(positions []v3.Vec, delta v3.Vec, uvLock bool) ([]v3.Vec, error) {
	var moved []v3.Vec
	err := n.mutate(func(wb sdf.Box3) error {
		var err error
		moved, err = n.brush.MoveVertices(wb, positions, delta, uvLock)
		return err
	})
	return moved, err
}

func (n *BrushNode) CanMoveEdges(edges [][2]v3.Vec, delta v3.Vec) bool {
	return n.brush.CanMoveEdges(n.worldBounds(), edges, delta)
}

// MoveEdges translates the selected edges and returns their canonical
// endpoints after the move.
func (n *BrushNode) MoveEdges(edges [][2]v3.Vec, delta v3.Vec, uvLock bool) ([][2]v3.Vec, error) {
	var moved [][2]v3.Vec
	err := n.mutate(func(wb sdf.Box3) error {
		var err error
		moved, err = n.brush.MoveEdges(wb, edges, delta, uvLock)
		return err
	})
	return moved, err
}

func (n *BrushNode) CanMoveFaces(loops [][]v3.Vec, delta v3.Vec) bool {
	return n.brush.CanMoveFaces(n.worldBounds(), loops, delta)
}

// MoveFaces translates the selected face loops and returns the
// canonical loops after the move.
func (n *BrushNode) MoveFaces(loops [][]v3.Vec, delta v3.Vec, uvLock bool) ([][]v3.Vec, error) {
	var moved [][]v3.Vec
	err := n.mutate(func(wb sdf.Box3) error {
		var err error
		moved, err = n.brush.MoveFaces(wb, loops, delta, uvLock)
		return err
	})
	return moved, err
}

func (n *BrushNode) CanAddVertex(p v3.Vec) bool {
	return n.brush.CanAddVertex(n.worldBounds(), p)
}

// AddVertex extends the brush to the given point and returns the
// canonical position of the added vertex.
func (n *BrushNode) AddVertex(p v3.Vec) (v3.Vec, error) {
	var added v3.Vec
	err := n.mutate(func(wb sdf.Box3) error {
		var err error
		added, err = n.brush.AddVertex(wb, p)
		return err
	})
	return added, err
}

func (n *BrushNode) CanRemoveVertices(positions []v3.Vec) bool {
	return n.brush.CanRemoveVertices(n.worldBounds(), positions)
}

func (n *BrushNode) RemoveVertices(positions []v3.Vec) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.RemoveVertices(wb, positions)
	})
}

func (n *BrushNode) CanSnapVertices(grid float64) bool {
	return n.brush.CanSnapVertices(n.worldBounds(), grid)
}

func (n *BrushNode) SnapVertices(grid float64, uvLock bool) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.SnapVertices(wb, grid, uvLock)
	})
}

// FindIntegerPlanePoints rewrites every face plane onto integer plane
// points.
func (n *BrushNode) FindIntegerPlanePoints() error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.FindIntegerPlanePoints(wb)
	})
}

func (n *BrushNode) CanTransform(m sdf.M44) bool {
	return n.brush.CanTransform(n.worldBounds(), m)
}

func (n *BrushNode) Transform(m sdf.M44, lockUV bool) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.Transform(wb, m, lockUV)
	})
}

func (n *BrushNode) Translate(delta v3.Vec, lockUV bool) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.Translate(wb, delta, lockUV)
	})
}

func (n *BrushNode) SetFaces(faces []*brush.Face) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.SetFaces(wb, faces)
	})
}

func (n *BrushNode) AddFace(f *brush.Face) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.AddFace(wb, f)
	})
}

func (n *BrushNode) RemoveFace(f *brush.Face) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.RemoveFace(wb, f)
	})
}

// Subtract carves the subtrahend nodes' brushes out of this node and
// returns one fresh detached node per remaining fragment. The receiver
// and the subtrahends are left unchanged; cut faces get the world's
// default material.
func (n *BrushNode) Subtract(subtrahends ...*BrushNode) ([]*BrushNode, error) {
	brushes := make([]*brush.Brush, len(subtrahends))
	for i, s := range subtrahends {
		brushes[i] = s.Brush()
	}
	fragments, err := n.brush.Subtract(n.worldBounds(), n.defaultMaterial(), brushes...)
	if err != nil {
		return nil, err
	}
	nodes := make([]*BrushNode, len(fragments))
	for i, f := range fragments {
		nodes[i] = NewBrushNode(n.Name(), f)
	}
	return nodes, nil
}

// Intersect clips this node's brush to its overlap with other.
func (n *BrushNode) Intersect(other *BrushNode) error {
	return n.mutate(func(wb sdf.Box3) error {
		return n.brush.Intersect(wb, other.Brush())
	})
}
