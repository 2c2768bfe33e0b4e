package scene

import (
	"math"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	"github.com/dhconnelly/rtreego"
)

// SpatialIndex is an R-tree over brush node bounds. The world keeps it
// in sync from bounds-change notifications; detached trees can also use
// one directly.
type SpatialIndex struct {
	tree    *rtreego.Rtree
	entries map[*BrushNode]*indexEntry
}

// indexEntry adapts a brush node to the R-tree's Spatial interface.
// The rect is frozen at insert time so the node can be deleted again
// after its bounds moved.
type indexEntry struct {
	node *BrushNode
	rect rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.rect }

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		tree:    rtreego.NewTree(3, 25, 50),
		entries: make(map[*BrushNode]*indexEntry),
	}
}

// rectFromBox converts an AABB to an R-tree rect. Flat boxes are
// padded to satisfy the R-tree's positive-extent requirement.
func rectFromBox(box sdf.Box3) rtreego.Rect {
	size := box.Size()
	lengths := []float64{
		math.Max(size.X, geom.PointEpsilon),
		math.Max(size.Y, geom.PointEpsilon),
		math.Max(size.Z, geom.PointEpsilon),
	}
	rect, err := rtreego.NewRect(rtreego.Point{box.Min.X, box.Min.Y, box.Min.Z}, lengths)
	if err != nil {
		// Only reachable with NaN bounds.
		panic(err)
	}
	return rect
}

// Size returns the number of indexed nodes.
func (si *SpatialIndex) Size() int { return len(si.entries) }

// Insert adds a node to the index. Inserting an indexed node refreshes
// its stored bounds.
func (si *SpatialIndex) Insert(n *BrushNode) {
	if _, ok := si.entries[n]; ok {
		si.Update(n)
		return
	}
	e := &indexEntry{node: n, rect: rectFromBox(n.Bounds())}
	si.entries[n] = e
	si.tree.Insert(e)
}

// Remove drops a node from the index.
func (si *SpatialIndex) Remove(n *BrushNode) {
	e, ok := si.entries[n]
	if !ok {
		return
	}
	si.tree.Delete(e)
	delete(si.entries, n)
}

// Update re-inserts a node whose bounds moved.
func (si *SpatialIndex) Update(n *BrushNode) {
	e, ok := si.entries[n]
	if !ok {
		si.Insert(n)
		return
	}
	si.tree.Delete(e)
	e.rect = rectFromBox(n.Bounds())
	si.tree.Insert(e)
}

// SearchBox returns the indexed nodes whose bounds intersect box.
func (si *SpatialIndex) SearchBox(box sdf.Box3) []*BrushNode {
	results := si.tree.SearchIntersect(rectFromBox(box))
	nodes := make([]*BrushNode, 0, len(results))
	for _, s := range results {
		nodes = append(nodes, s.(*indexEntry).node)
	}
	return nodes
}

// SearchRay returns the indexed nodes whose bounds the ray hits within
// maxDist. Candidates come from a box query over the ray segment, then
// an exact slab test per node.
func (si *SpatialIndex) SearchRay(r geom.Ray, maxDist float64) []*BrushNode {
	end := r.PointAt(maxDist)
	span := sdf.Box3{Min: r.Origin, Max: r.Origin}
	span = span.Include(end)

	var nodes []*BrushNode
	for _, n := range si.SearchBox(span) {
		if r.IntersectsBox(n.Bounds()) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
