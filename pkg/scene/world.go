package scene

import (
	"github.com/deadsy/sdfx/sdf"
)

// Observer receives change notifications from nodes in a world.
type Observer interface {
	// NodeWillChange fires before a node mutation begins.
	NodeWillChange(Node)
	// NodeDidChange fires after a mutation finished, whether or not it
	// succeeded.
	NodeDidChange(Node)
	// BoundsDidChange fires after every mutation attempt, paired with
	// NodeDidChange; the node's bounds may or may not have moved.
	BoundsDidChange(Node)
}

// World is the root of a scene tree. It owns the editing bounds, the
// default material for cut faces, the observer list and the spatial
// index over brush node bounds.
type World struct {
	base
	bounds          sdf.Box3
	defaultMaterial string
	observers       []Observer
	index           *SpatialIndex
}

// NewWorld creates an empty world with the given editing bounds.
func NewWorld(bounds sdf.Box3, defaultMaterial string) *World {
	return &World{
		base:            newBase("world"),
		bounds:          bounds,
		defaultMaterial: defaultMaterial,
		index:           NewSpatialIndex(),
	}
}

func (w *World) Kind() Kind              { return KindWorld }
func (w *World) Bounds() sdf.Box3        { return w.bounds }
func (w *World) DefaultMaterial() string { return w.defaultMaterial }
func (w *World) Index() *SpatialIndex    { return w.index }

// Observe registers an observer. Registering the same observer twice
// is a no-op.
func (w *World) Observe(o Observer) {
	for _, existing := range w.observers {
		if existing == o {
			return
		}
	}
	w.observers = append(w.observers, o)
}

// Unobserve removes a previously registered observer.
func (w *World) Unobserve(o Observer) {
	for i, existing := range w.observers {
		if existing == o {
			w.observers = append(w.observers[:i], w.observers[i+1:]...)
			return
		}
	}
}

func (w *World) notifyWillChange(n Node) {
	for _, o := range w.observers {
		o.NodeWillChange(n)
	}
}

func (w *World) notifyDidChange(n Node) {
	for _, o := range w.observers {
		o.NodeDidChange(n)
	}
}

func (w *World) notifyBoundsChange(n Node, moved bool) {
	if bn, ok := n.(*BrushNode); ok && moved {
		w.index.Update(bn)
	}
	for _, o := range w.observers {
		o.BoundsDidChange(n)
	}
}

// indexSubtree adds every brush node under n to the spatial index.
func (w *World) indexSubtree(n Node) {
	Walk(n, func(c Node) bool {
		if bn, ok := c.(*BrushNode); ok {
			w.index.Insert(bn)
		}
		return true
	})
}

// unindexSubtree removes every brush node under n from the spatial
// index.
func (w *World) unindexSubtree(n Node) {
	Walk(n, func(c Node) bool {
		if bn, ok := c.(*BrushNode); ok {
			w.index.Remove(bn)
		}
		return true
	})
}

// BrushNodes returns every brush node in the world in tree order.
func (w *World) BrushNodes() []*BrushNode {
	var out []*BrushNode
	Walk(w, func(n Node) bool {
		if bn, ok := n.(*BrushNode); ok {
			out = append(out, bn)
		}
		return true
	})
	return out
}
