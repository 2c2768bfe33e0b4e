package brush

import (
	"errors"
	"math"
	"testing"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// testBounds is the world box used throughout the brush tests.
var testBounds = sdf.Box3{
	Min: v3.Vec{X: -16, Y: -16, Z: -16},
	Max: v3.Vec{X: 16, Y: 16, Z: 16},
}

// mustCube builds a cube brush centered at the origin or fails the test.
func mustCube(t *testing.T, edge float64) *Brush {
	t.Helper()
	b, err := NewCube(testBounds, v3.Vec{}, edge, "base")
	if err != nil {
		t.Fatalf("NewCube(%g) error = %v", edge, err)
	}
	return b
}

// sameVertexSet reports whether two brushes have identical vertex sets
// within epsilon, ignoring order.
func sameVertexSet(a, b *Brush) bool {
	av, bv := a.Vertices(), b.Vertices()
	if len(av) != len(bv) {
		return false
	}
	for _, p := range av {
		if !b.HasVertex(p, 1e-6) {
			return false
		}
	}
	return true
}

func TestNewCube(t *testing.T) {
	b := mustCube(t, 2)

	if got := b.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d, want 6", got)
	}
	if got := b.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	if got := b.EdgeCount(); got != 12 {
		t.Errorf("EdgeCount() = %d, want 12", got)
	}
	if !b.Closed() {
		t.Error("Closed() = false, want true")
	}
	if !b.FullySpecified() {
		t.Error("FullySpecified() = false, want true")
	}
	if got := b.Volume(); !geom.NearEqual(got, 8, 1e-9) {
		t.Errorf("Volume() = %f, want 8", got)
	}
	bounds := b.Bounds()
	if !bounds.Min.Equals(v3.Vec{X: -1, Y: -1, Z: -1}, 1e-9) ||
		!bounds.Max.Equals(v3.Vec{X: 1, Y: 1, Z: 1}, 1e-9) {
		t.Errorf("Bounds() = %v, want unit box around origin", bounds)
	}
}

func TestEveryEdgeHasTwoFaces(t *testing.T) {
	b := mustCube(t, 2)
	for _, e := range b.Edges() {
		if e.F1 < 0 || e.F2 < 0 {
			t.Errorf("edge %v..%v has an open side", e.V1, e.V2)
		}
	}
}

func TestRebuildDropsCollapsedSliverFace(t *testing.T) {
	// A bevel plane grazing the x=1,z=1 edge of a unit cube produces a
	// long sliver whose width is below the vertex merge distance but
	// whose area is not. Its loop collapses to two vertices during the
	// merge, so the face must be discarded rather than fed to the edge
	// derivation.
	const d = 4e-6
	mk := func(a, b, c v3.Vec) *Face {
		t.Helper()
		f, err := NewFace(a, b, c, "base")
		if err != nil {
			t.Fatalf("NewFace error = %v", err)
		}
		return f
	}
	faces := []*Face{
		mk(v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1}, v3.Vec{X: 1, Z: 1}),
		mk(v3.Vec{}, v3.Vec{Z: 1}, v3.Vec{Y: 1}),
		mk(v3.Vec{Y: 1}, v3.Vec{Y: 1, Z: 1}, v3.Vec{X: 1, Y: 1}),
		mk(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Z: 1}),
		mk(v3.Vec{Z: 1}, v3.Vec{X: 1, Z: 1}, v3.Vec{Y: 1, Z: 1}),
		mk(v3.Vec{}, v3.Vec{Y: 1}, v3.Vec{X: 1}),
		mk(v3.Vec{X: 1, Z: 1 - d}, v3.Vec{X: 1, Y: 1, Z: 1 - d}, v3.Vec{X: 1 - d, Y: 1, Z: 1}),
	}

	b, err := New(testBounds, faces)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := b.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d, want 6 after dropping the sliver", got)
	}
	if got := b.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	if !b.Closed() {
		t.Error("Closed() = false, want true")
	}
	if !geom.NearEqual(b.Volume(), 1, 1e-6) {
		t.Errorf("Volume() = %f, want 1", b.Volume())
	}
}

func TestRebuildIdempotent(t *testing.T) {
	b := mustCube(t, 2)
	before := b.Clone()

	// Rebuilding from the exact same face set must not change anything.
	if err := b.SetFaces(testBounds, before.Clone().Faces()); err != nil {
		t.Fatalf("SetFaces() error = %v", err)
	}
	if !sameVertexSet(b, before) {
		t.Error("second rebuild changed the vertex set")
	}
	if b.FaceCount() != before.FaceCount() || b.EdgeCount() != before.EdgeCount() {
		t.Error("second rebuild changed face or edge counts")
	}
	if !geom.NearEqual(b.Volume(), before.Volume(), 1e-9) {
		t.Error("second rebuild changed the volume")
	}
}

func TestContainsPoint(t *testing.T) {
	b := mustCube(t, 2)

	tests := []struct {
		name  string
		point v3.Vec
		want  bool
	}{
		{"center", v3.Vec{}, true},
		{"inside corner region", v3.Vec{X: 0.9, Y: 0.9, Z: 0.9}, true},
		{"on face", v3.Vec{X: 1}, true},
		{"on corner", v3.Vec{X: 1, Y: 1, Z: 1}, true},
		{"outside", v3.Vec{X: 1.01}, false},
		{"far away", v3.Vec{X: 10, Y: -4, Z: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestRedundantFaceDropped(t *testing.T) {
	b := mustCube(t, 2)
	// A half-space that already contains the cube adds nothing.
	far := NewFaceFromPlane(geom.PlaneFromPointNormal(v3.Vec{X: 5}, v3.Vec{X: 1}), "extra")
	if err := b.AddFace(testBounds, far); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if got := b.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d after redundant face, want 6", got)
	}
	if b.FindFaceByMaterial("extra") != nil {
		t.Error("redundant face was retained")
	}
}

func TestAddFaceCutsCorner(t *testing.T) {
	b := mustCube(t, 2)
	cut := NewFaceFromPlane(
		geom.PlaneFromPointNormal(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, v3.Vec{X: 1, Y: 1, Z: 1}),
		"cut")
	if err := b.AddFace(testBounds, cut); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if got := b.FaceCount(); got != 7 {
		t.Errorf("FaceCount() = %d, want 7", got)
	}
	if b.Volume() >= 8 {
		t.Errorf("Volume() = %f, want less than 8 after corner cut", b.Volume())
	}
	if !b.Closed() {
		t.Error("Closed() = false after corner cut")
	}
}

func TestNewInvalidGeometry(t *testing.T) {
	t.Run("empty intersection", func(t *testing.T) {
		// Two opposing half-spaces with no overlap.
		faces := []*Face{
			NewFaceFromPlane(geom.PlaneFromPointNormal(v3.Vec{X: -1}, v3.Vec{X: 1}), ""),
			NewFaceFromPlane(geom.PlaneFromPointNormal(v3.Vec{X: 1}, v3.Vec{X: -1}), ""),
		}
		if _, err := New(testBounds, faces); !errors.Is(err, ErrInvalidBrush) {
			t.Errorf("error = %v, want ErrInvalidBrush", err)
		}
	})

	t.Run("unbounded open box", func(t *testing.T) {
		// Five of a cube's six half-spaces leave one direction open; the
		// geometry escapes the world bounds.
		cube := mustCube(t, 2)
		var faces []*Face
		for _, f := range cube.Faces() {
			if f.Plane().Normal.Equals(v3.Vec{Z: 1}, 1e-9) {
				continue
			}
			faces = append(faces, f.Clone())
		}
		if _, err := New(testBounds, faces); !errors.Is(err, ErrInvalidBrush) {
			t.Errorf("error = %v, want ErrInvalidBrush", err)
		}
	})

	t.Run("exceeds world bounds", func(t *testing.T) {
		_, err := NewCube(testBounds, v3.Vec{}, 64, "")
		if !errors.Is(err, ErrInvalidBrush) {
			t.Errorf("error = %v, want ErrInvalidBrush", err)
		}
	})
}

func TestFindFace(t *testing.T) {
	b := mustCube(t, 2)
	top := b.FindFaceByNormal(v3.Vec{Z: 1})
	if top == nil {
		t.Fatal("FindFaceByNormal(+Z) = nil")
	}
	top.Material = "roof"

	t.Run("by material", func(t *testing.T) {
		if f := b.FindFaceByMaterial("roof"); f != top {
			t.Error("FindFaceByMaterial did not return the exact face")
		}
		if f := b.FindFaceByMaterial("missing"); f != nil {
			t.Error("FindFaceByMaterial(missing) should be nil")
		}
	})

	t.Run("by plane", func(t *testing.T) {
		p := geom.PlaneFromPointNormal(v3.Vec{Z: 1}, v3.Vec{Z: 1})
		if f := b.FindFaceByPlane(p); f != top {
			t.Error("FindFaceByPlane did not return the top face")
		}
	})

	t.Run("by vertex loop", func(t *testing.T) {
		if f := b.FindFaceByVertices(top.Vertices(), 1e-6); f != top {
			t.Error("FindFaceByVertices did not return the top face")
		}
		// Same loop rotated and reversed still matches.
		loop := top.Vertices()
		reversed := make([]v3.Vec, len(loop))
		for i, p := range loop {
			reversed[len(loop)-1-i] = p
		}
		if f := b.FindFaceByVertices(reversed, 1e-6); f != top {
			t.Error("FindFaceByVertices failed on the reversed loop")
		}
	})
}

func TestIntersectRay(t *testing.T) {
	b := mustCube(t, 2)

	t.Run("hit", func(t *testing.T) {
		f, dist, ok := b.IntersectRay(geom.NewRay(v3.Vec{X: -5}, v3.Vec{X: 1}))
		if !ok {
			t.Fatal("expected a hit")
		}
		if !geom.NearEqual(dist, 4, 1e-9) {
			t.Errorf("distance = %f, want 4", dist)
		}
		if !f.Plane().Normal.Equals(v3.Vec{X: -1}, 1e-9) {
			t.Errorf("hit face normal = %v, want -X", f.Plane().Normal)
		}
	})

	t.Run("miss", func(t *testing.T) {
		if _, _, ok := b.IntersectRay(geom.NewRay(v3.Vec{X: -5, Y: 4}, v3.Vec{X: 1})); ok {
			t.Error("expected a miss")
		}
	})
}

func TestContainsAndIntersects(t *testing.T) {
	big := mustCube(t, 4)
	small := mustCube(t, 2)
	offset, err := NewCube(testBounds, v3.Vec{X: 3}, 2, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}
	apart, err := NewCube(testBounds, v3.Vec{X: 10}, 2, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}

	if !big.Contains(small) {
		t.Error("big cube should contain small cube")
	}
	if small.Contains(big) {
		t.Error("small cube cannot contain big cube")
	}
	if !big.Intersects(offset) {
		t.Error("overlapping cubes should intersect")
	}
	if big.Intersects(apart) {
		t.Error("distant cubes should not intersect")
	}
}

func TestRemoveFace(t *testing.T) {
	b := mustCube(t, 2)
	before := b.Clone()
	top := b.FindFaceByNormal(v3.Vec{Z: 1})

	// Removing a cube face opens the polyhedron.
	if err := b.RemoveFace(testBounds, top); !errors.Is(err, ErrInvalidBrush) {
		t.Errorf("error = %v, want ErrInvalidBrush", err)
	}
	if !sameVertexSet(b, before) {
		t.Error("failed RemoveFace modified the brush")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := mustCube(t, 2)
	c := b.Clone()
	c.Faces()[0].Material = "changed"
	if b.Faces()[0].Material == "changed" {
		t.Error("clone shares face storage with the original")
	}
	if _, err := c.MoveVertices(testBounds, []v3.Vec{{X: 1, Y: 1, Z: 1}}, v3.Vec{X: 0.5}, false); err != nil {
		t.Fatalf("MoveVertices on clone error = %v", err)
	}
	if b.VertexCount() != 8 {
		t.Error("moving the clone changed the original")
	}
}

func TestVolumeOffCenter(t *testing.T) {
	b, err := NewCuboid(testBounds, sdf.Box3{
		Min: v3.Vec{X: 1, Y: 2, Z: 3},
		Max: v3.Vec{X: 4, Y: 4, Z: 7},
	}, "")
	if err != nil {
		t.Fatalf("NewCuboid error = %v", err)
	}
	want := 3.0 * 2.0 * 4.0
	if got := b.Volume(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume() = %f, want %f", got, want)
	}
}
