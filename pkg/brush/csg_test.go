package brush

import (
	"errors"
	"math"
	"testing"

	"github.com/davrell/carve/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// totalVolume sums the volumes of a fragment set.
func totalVolume(brushes []*Brush) float64 {
	var sum float64
	for _, b := range brushes {
		sum += b.Volume()
	}
	return sum
}

func TestSubtractCenteredCube(t *testing.T) {
	minuend := mustCube(t, 2)
	subtrahend := mustCube(t, 1)

	fragments, err := minuend.Subtract(testBounds, "cut", subtrahend)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if len(fragments) == 0 {
		t.Fatal("no fragments returned")
	}
	for i, f := range fragments {
		if !f.Closed() || !f.FullySpecified() {
			t.Errorf("fragment %d is invalid", i)
		}
		if f.Volume() <= 0 {
			t.Errorf("fragment %d has non-positive volume", i)
		}
	}
	// 2^3 - 1^3 = 7.
	if got := totalVolume(fragments); math.Abs(got-7) > 1e-9 {
		t.Errorf("total fragment volume = %f, want 7", got)
	}
	// No fragment may reach into the subtracted region.
	for i, f := range fragments {
		if f.ContainsPoint(v3.Vec{}) {
			t.Errorf("fragment %d contains the subtrahend center", i)
		}
	}
	// Cut faces carry the default material; outer faces keep theirs.
	foundCut := false
	for _, f := range fragments {
		if f.FindFaceByMaterial("cut") != nil {
			foundCut = true
		}
	}
	if !foundCut {
		t.Error("no fragment carries the cut material")
	}
	// The original brush is untouched.
	if minuend.FaceCount() != 6 || !geom.NearEqual(minuend.Volume(), 8, 1e-9) {
		t.Error("Subtract modified the minuend")
	}
}

func TestSubtractDisjoint(t *testing.T) {
	minuend := mustCube(t, 2)
	subtrahend, err := NewCube(testBounds, v3.Vec{X: 10}, 2, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}
	fragments, err := minuend.Subtract(testBounds, "cut", subtrahend)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("len(fragments) = %d, want 1", len(fragments))
	}
	if !geom.NearEqual(fragments[0].Volume(), 8, 1e-9) {
		t.Errorf("fragment volume = %f, want 8", fragments[0].Volume())
	}
}

func TestSubtractCovered(t *testing.T) {
	minuend := mustCube(t, 2)
	subtrahend := mustCube(t, 4)
	fragments, err := minuend.Subtract(testBounds, "cut", subtrahend)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("len(fragments) = %d, want 0 for a covered minuend", len(fragments))
	}
}

func TestSubtractMultiple(t *testing.T) {
	minuend := mustCube(t, 4)
	s1, err := NewCube(testBounds, v3.Vec{X: -1}, 2, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}
	s2, err := NewCube(testBounds, v3.Vec{X: 1}, 2, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}
	fragments, err := minuend.Subtract(testBounds, "cut", s1, s2)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	// 4^3 minus two disjoint 2^3 cubes.
	want := 64.0 - 16.0
	if got := totalVolume(fragments); math.Abs(got-want) > 1e-9 {
		t.Errorf("total fragment volume = %f, want %f", got, want)
	}
}

func TestIntersect(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		a := mustCube(t, 2)
		b, err := NewCube(testBounds, v3.Vec{X: 1, Y: 1, Z: 1}, 2, "other")
		if err != nil {
			t.Fatalf("NewCube error = %v", err)
		}
		if err := a.Intersect(testBounds, b); err != nil {
			t.Fatalf("Intersect() error = %v", err)
		}
		// Overlap is the unit cube [0,1]^3.
		if !geom.NearEqual(a.Volume(), 1, 1e-9) {
			t.Errorf("Volume() = %f, want 1", a.Volume())
		}
		if !a.Closed() {
			t.Error("intersection is not closed")
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		a := mustCube(t, 2)
		before := a.Clone()
		b, err := NewCube(testBounds, v3.Vec{X: 10}, 2, "")
		if err != nil {
			t.Fatalf("NewCube error = %v", err)
		}
		if err := a.Intersect(testBounds, b); !errors.Is(err, ErrInvalidBrush) {
			t.Errorf("error = %v, want ErrInvalidBrush", err)
		}
		if !sameVertexSet(a, before) {
			t.Error("failed intersect modified the brush")
		}
	})
}

func TestSubtractIntersectDuality(t *testing.T) {
	// The fragments plus the clipped subtrahend partition the minuend:
	// vol(A) == vol(A \ B) + vol(A ∩ B).
	a := mustCube(t, 2)
	b, err := NewCube(testBounds, v3.Vec{X: 0.75, Y: 0.25, Z: -0.5}, 1.5, "")
	if err != nil {
		t.Fatalf("NewCube error = %v", err)
	}

	fragments, err := a.Subtract(testBounds, "cut", b)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	overlap := a.Clone()
	if err := overlap.Intersect(testBounds, b); err != nil {
		t.Fatalf("Intersect() error = %v", err)
	}

	if got := totalVolume(fragments) + overlap.Volume(); math.Abs(got-a.Volume()) > 1e-9 {
		t.Errorf("vol(A\\B) + vol(A∩B) = %f, want vol(A) = %f", got, a.Volume())
	}

	// Fragments stay outside the subtrahend.
	for i, f := range fragments {
		if b.ContainsPoint(geom.Centroid(f.Vertices())) && f.ContainsPoint(geom.Centroid(f.Vertices())) {
			// The centroid of a convex fragment is interior to it; if it
			// is also inside B the subtraction leaked.
			t.Errorf("fragment %d centroid lies inside the subtrahend", i)
		}
	}
}
