// Package scene organizes brushes into a node tree with change
// notification, lazy render caches and a spatial index. The tree has a
// single world root; layers, groups and entities are containers, brush
// nodes are the leaves that own geometry.
package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind enumerates the types of nodes in the scene tree.
type Kind int

const (
	KindWorld  Kind = iota // tree root, owns world bounds and defaults
	KindLayer              // top-level organizational container
	KindGroup              // nestable container, selected as a unit
	KindEntity             // game object owning brushes
	KindBrush              // leaf, owns one brush
)

func (k Kind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindLayer:
		return "layer"
	case KindGroup:
		return "group"
	case KindEntity:
		return "entity"
	case KindBrush:
		return "brush"
	default:
		return "unknown"
	}
}

// Node is an element of the scene tree.
type Node interface {
	ID() string
	Kind() Kind
	Name() string
	SetName(string)
	Parent() Node
	Children() []Node

	// core exposes the embedded tree state to this package.
	core() *base
}

// base carries the tree state shared by every node kind.
type base struct {
	id       string
	name     string
	parent   Node
	children []Node
}

func newBase(name string) base {
	return base{id: uuid.New().String(), name: name}
}

func (b *base) ID() string       { return b.id }
func (b *base) Name() string     { return b.name }
func (b *base) SetName(n string) { b.name = n }
func (b *base) Parent() Node     { return b.parent }
func (b *base) core() *base      { return b }

func (b *base) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

// canContain reports which child kinds a parent kind accepts.
func canContain(parent, child Kind) bool {
	switch parent {
	case KindWorld:
		return child == KindLayer || child == KindGroup || child == KindEntity || child == KindBrush
	case KindLayer, KindGroup:
		return child == KindGroup || child == KindEntity || child == KindBrush
	case KindEntity:
		return child == KindBrush
	default:
		return false
	}
}

// Attach makes child a child of parent. The child must be detached and
// the parent kind must accept the child kind.
func Attach(parent, child Node) error {
	if child.core().parent != nil {
		return fmt.Errorf("scene: node %q is already attached", child.Name())
	}
	if !canContain(parent.Kind(), child.Kind()) {
		return fmt.Errorf("scene: a %s cannot contain a %s", parent.Kind(), child.Kind())
	}
	p := parent.core()
	p.children = append(p.children, child)
	child.core().parent = parent

	if w := ContainingWorld(child); w != nil {
		w.indexSubtree(child)
	}
	return nil
}

// Detach removes child from its parent.
func Detach(child Node) error {
	parent := child.core().parent
	if parent == nil {
		return fmt.Errorf("scene: node %q is not attached", child.Name())
	}
	if w := ContainingWorld(child); w != nil {
		w.unindexSubtree(child)
	}
	p := parent.core()
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	child.core().parent = nil
	return nil
}

// Walk visits n and every descendant in depth-first order. Returning
// false from fn stops the walk.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.core().children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// ContainingGroup returns the nearest ancestor group of n, or nil.
func ContainingGroup(n Node) *GroupNode {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if g, ok := p.(*GroupNode); ok {
			return g
		}
	}
	return nil
}

// ContainingLayer returns the layer n ultimately belongs to, or nil.
func ContainingLayer(n Node) *LayerNode {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if l, ok := p.(*LayerNode); ok {
			return l
		}
	}
	return nil
}

// ContainingWorld returns the world at the root of n's tree, or nil
// when n is detached from any world.
func ContainingWorld(n Node) *World {
	for ; n != nil; n = n.Parent() {
		if w, ok := n.(*World); ok {
			return w
		}
	}
	return nil
}

// BrushOwner returns the entity a brush node belongs to, or the world
// when the brush sits outside any entity.
func BrushOwner(n Node) Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*EntityNode); ok {
			return p
		}
	}
	if w := ContainingWorld(n); w != nil {
		return w
	}
	return nil
}

// LayerNode is a top-level container directly below the world.
type LayerNode struct {
	base
}

func NewLayer(name string) *LayerNode {
	return &LayerNode{base: newBase(name)}
}

func (n *LayerNode) Kind() Kind { return KindLayer }

// GroupNode is a nestable container edited as a unit.
type GroupNode struct {
	base
}

func NewGroup(name string) *GroupNode {
	return &GroupNode{base: newBase(name)}
}

func (n *GroupNode) Kind() Kind { return KindGroup }

// EntityNode owns brushes and key/value properties.
type EntityNode struct {
	base
	classname  string
	properties map[string]string
}

func NewEntity(classname string) *EntityNode {
	return &EntityNode{
		base:       newBase(classname),
		classname:  classname,
		properties: make(map[string]string),
	}
}

func (n *EntityNode) Kind() Kind        { return KindEntity }
func (n *EntityNode) Classname() string { return n.classname }

func (n *EntityNode) Property(key string) (string, bool) {
	v, ok := n.properties[key]
	return v, ok
}

func (n *EntityNode) SetProperty(key, value string) {
	n.properties[key] = value
}
