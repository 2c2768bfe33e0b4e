package brush

import (
	"math"
	"testing"

	"github.com/davrell/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// unitCube builds the cube [0,1]^3, which keeps expected coordinates
// simple in vertex-edit tests.
func unitCube(t *testing.T) *Brush {
	t.Helper()
	b, err := NewCuboid(testBounds, boxFromTo(0, 1), "base")
	if err != nil {
		t.Fatalf("NewCuboid error = %v", err)
	}
	return b
}

func boxFromTo(lo, hi float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: lo, Y: lo, Z: lo},
		Max: v3.Vec{X: hi, Y: hi, Z: hi},
	}
}

func TestMoveVerticesOutOfBounds(t *testing.T) {
	b := unitCube(t)
	before := b.Clone()
	target := []v3.Vec{{X: 1, Y: 1, Z: 1}}
	delta := v3.Vec{X: 100}

	if b.CanMoveVertices(testBounds, target, delta) {
		t.Error("CanMoveVertices() = true for an out-of-bounds move")
	}
	if _, err := b.MoveVertices(testBounds, target, delta, false); err == nil {
		t.Error("MoveVertices() succeeded for an out-of-bounds move")
	}
	if !sameVertexSet(b, before) {
		t.Error("failed move modified the brush")
	}
}

func TestMoveSingleVertex(t *testing.T) {
	b := unitCube(t)
	target := []v3.Vec{{X: 1, Y: 1, Z: 1}}
	delta := v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

	if !b.CanMoveVertices(testBounds, target, delta) {
		t.Fatal("CanMoveVertices() = false for a valid corner pull")
	}
	moved, err := b.MoveVertices(testBounds, target, delta, false)
	if err != nil {
		t.Fatalf("MoveVertices() error = %v", err)
	}
	if len(moved) != 1 || !moved[0].Equals(v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, 1e-6) {
		t.Errorf("moved = %v, want [(1.5 1.5 1.5)]", moved)
	}
	// The pulled corner breaks the planarity of its three quads, so the
	// rebuilt brush has additional faces.
	if b.FaceCount() <= 6 {
		t.Errorf("FaceCount() = %d, want more than 6", b.FaceCount())
	}
	if !b.Closed() || !b.FullySpecified() {
		t.Error("brush invalid after corner pull")
	}
	if b.Volume() <= 1 {
		t.Errorf("Volume() = %f, want more than 1", b.Volume())
	}
}

func TestMoveFaceVertices(t *testing.T) {
	b := unitCube(t)
	// The four top vertices, moved up together, stretch the cube.
	targets := []v3.Vec{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	delta := v3.Vec{Z: 2}

	moved, err := b.MoveVertices(testBounds, targets, delta, false)
	if err != nil {
		t.Fatalf("MoveVertices() error = %v", err)
	}
	if len(moved) != 4 {
		t.Fatalf("len(moved) = %d, want 4", len(moved))
	}
	if b.FaceCount() != 6 {
		t.Errorf("FaceCount() = %d, want 6", b.FaceCount())
	}
	if !geom.NearEqual(b.Volume(), 3, 1e-9) {
		t.Errorf("Volume() = %f, want 3", b.Volume())
	}
	// Materials survive the rebuild through the matcher.
	for _, f := range b.Faces() {
		if f.Material != "base" {
			t.Errorf("face material = %q, want base", f.Material)
		}
	}
}

func TestMoveVertexMerge(t *testing.T) {
	b := unitCube(t)
	// Pushing the top corner straight down onto the corner below is a
	// legal vertex move; the two vertices merge.
	target := []v3.Vec{{X: 1, Y: 1, Z: 1}}
	delta := v3.Vec{Z: -1}

	if !b.CanMoveVertices(testBounds, target, delta) {
		t.Fatal("CanMoveVertices() = false for a merging vertex move")
	}
	moved, err := b.MoveVertices(testBounds, target, delta, false)
	if err != nil {
		t.Fatalf("MoveVertices() error = %v", err)
	}
	if len(moved) != 1 || !moved[0].Equals(v3.Vec{X: 1, Y: 1, Z: 0}, 1e-6) {
		t.Errorf("moved = %v, want the merged corner (1 1 0)", moved)
	}
	if got := b.VertexCount(); got != 7 {
		t.Errorf("VertexCount() = %d, want 7 after merge", got)
	}
	// The cube lost a corner tetrahedron.
	if want := 1 - 1.0/6; !geom.NearEqual(b.Volume(), want, 1e-9) {
		t.Errorf("Volume() = %f, want %f", b.Volume(), want)
	}
}

func TestMoveVertexVanishes(t *testing.T) {
	b := unitCube(t)
	before := b.Clone()
	// Moving the corner to the center of the solid would delete it.
	target := []v3.Vec{{X: 1, Y: 1, Z: 1}}
	delta := v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}

	if b.CanMoveVertices(testBounds, target, delta) {
		t.Error("CanMoveVertices() = true for a move that deletes the vertex")
	}
	if _, err := b.MoveVertices(testBounds, target, delta, false); err == nil {
		t.Error("MoveVertices() succeeded for a move that deletes the vertex")
	}
	if !sameVertexSet(b, before) {
		t.Error("failed move modified the brush")
	}
}

func TestMoveVerticesUnknownPosition(t *testing.T) {
	b := unitCube(t)
	if b.CanMoveVertices(testBounds, []v3.Vec{{X: 5, Y: 5, Z: 5}}, v3.Vec{X: 1}) {
		t.Error("CanMoveVertices() = true for a position that is not a vertex")
	}
}

func TestMoveEdges(t *testing.T) {
	t.Run("valid move", func(t *testing.T) {
		b := unitCube(t)
		seg := [2]v3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}}
		delta := v3.Vec{Z: 0.5}
		if !b.CanMoveEdges(testBounds, [][2]v3.Vec{seg}, delta) {
			t.Fatal("CanMoveEdges() = false for a valid edge lift")
		}
		moved, err := b.MoveEdges(testBounds, [][2]v3.Vec{seg}, delta, false)
		if err != nil {
			t.Fatalf("MoveEdges() error = %v", err)
		}
		want := [2]v3.Vec{{X: 0, Y: 0, Z: 1.5}, {X: 1, Y: 0, Z: 1.5}}
		if !moved[0][0].Equals(want[0], 1e-6) || !moved[0][1].Equals(want[1], 1e-6) {
			t.Errorf("moved = %v, want %v", moved[0], want)
		}
		if !b.HasEdge(want[0], want[1], 1e-6) {
			t.Error("moved edge missing from the rebuilt brush")
		}
	})

	t.Run("edge sinks into the interior", func(t *testing.T) {
		b := unitCube(t)
		before := b.Clone()
		seg := [2]v3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}}
		delta := v3.Vec{Y: 0.5, Z: -0.5}
		if b.CanMoveEdges(testBounds, [][2]v3.Vec{seg}, delta) {
			t.Error("CanMoveEdges() = true for a move that destroys the edge")
		}
		if _, err := b.MoveEdges(testBounds, [][2]v3.Vec{seg}, delta, false); err == nil {
			t.Error("MoveEdges() succeeded for a move that destroys the edge")
		}
		if !sameVertexSet(b, before) {
			t.Error("failed edge move modified the brush")
		}
	})

	t.Run("not an edge", func(t *testing.T) {
		b := unitCube(t)
		// Diagonal of the top face: both endpoints are vertices, but no
		// edge connects them.
		seg := [2]v3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}}
		if b.CanMoveEdges(testBounds, [][2]v3.Vec{seg}, v3.Vec{Z: 1}) {
			t.Error("CanMoveEdges() = true for a non-edge selection")
		}
	})
}

func TestMoveFaces(t *testing.T) {
	topLoop := []v3.Vec{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}

	t.Run("valid move", func(t *testing.T) {
		b := unitCube(t)
		delta := v3.Vec{Z: 1}
		if !b.CanMoveFaces(testBounds, [][]v3.Vec{topLoop}, delta) {
			t.Fatal("CanMoveFaces() = false for a valid face lift")
		}
		moved, err := b.MoveFaces(testBounds, [][]v3.Vec{topLoop}, delta, false)
		if err != nil {
			t.Fatalf("MoveFaces() error = %v", err)
		}
		if len(moved) != 1 || len(moved[0]) != 4 {
			t.Fatalf("moved loops = %v, want one quad", moved)
		}
		if !geom.NearEqual(b.Volume(), 2, 1e-9) {
			t.Errorf("Volume() = %f, want 2", b.Volume())
		}
	})

	t.Run("face collapses onto the opposite face", func(t *testing.T) {
		b := unitCube(t)
		delta := v3.Vec{Z: -1}
		if b.CanMoveFaces(testBounds, [][]v3.Vec{topLoop}, delta) {
			t.Error("CanMoveFaces() = true for a flattening move")
		}
	})
}

func TestAddVertex(t *testing.T) {
	t.Run("apex above the cube", func(t *testing.T) {
		b := unitCube(t)
		apex := v3.Vec{X: 0.5, Y: 0.5, Z: 2}
		if !b.CanAddVertex(testBounds, apex) {
			t.Fatal("CanAddVertex() = false for an apex above the cube")
		}
		pos, err := b.AddVertex(testBounds, apex)
		if err != nil {
			t.Fatalf("AddVertex() error = %v", err)
		}
		if !pos.Equals(apex, 1e-6) {
			t.Errorf("realized position = %v, want %v", pos, apex)
		}
		if b.VertexCount() != 9 {
			t.Errorf("VertexCount() = %d, want 9", b.VertexCount())
		}
		if b.Volume() <= 1 {
			t.Errorf("Volume() = %f, want more than 1", b.Volume())
		}
	})

	t.Run("point inside the brush", func(t *testing.T) {
		b := unitCube(t)
		if b.CanAddVertex(testBounds, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}) {
			t.Error("CanAddVertex() = true for an interior point")
		}
	})
}

func TestRemoveVertices(t *testing.T) {
	t.Run("chop a corner", func(t *testing.T) {
		b := unitCube(t)
		corner := []v3.Vec{{X: 1, Y: 1, Z: 1}}
		if !b.CanRemoveVertices(testBounds, corner) {
			t.Fatal("CanRemoveVertices() = false for one cube corner")
		}
		if err := b.RemoveVertices(testBounds, corner); err != nil {
			t.Fatalf("RemoveVertices() error = %v", err)
		}
		if b.VertexCount() != 7 {
			t.Errorf("VertexCount() = %d, want 7", b.VertexCount())
		}
		if want := 1 - 1.0/6; !geom.NearEqual(b.Volume(), want, 1e-9) {
			t.Errorf("Volume() = %f, want %f", b.Volume(), want)
		}
	})

	t.Run("too few vertices remain", func(t *testing.T) {
		b := unitCube(t)
		var sel []v3.Vec
		for _, v := range b.Vertices()[:5] {
			sel = append(sel, v)
		}
		if b.CanRemoveVertices(testBounds, sel) {
			t.Error("CanRemoveVertices() = true when the remainder is flat")
		}
	})
}

func TestMoveVerticesUVLock(t *testing.T) {
	b := unitCube(t)
	top := b.FindFaceByNormal(v3.Vec{Z: 1})
	if top == nil {
		t.Fatal("no top face")
	}
	wantU, wantV := top.TexCoords(top.Center())

	// Translate the whole brush one unit along X with UV lock.
	var all []v3.Vec
	all = append(all, b.Vertices()...)
	if _, err := b.MoveVertices(testBounds, all, v3.Vec{X: 1}, true); err != nil {
		t.Fatalf("MoveVertices() error = %v", err)
	}
	top = b.FindFaceByNormal(v3.Vec{Z: 1})
	gotU, gotV := top.TexCoords(top.Center())
	if math.Abs(gotU-wantU) > 1e-6 || math.Abs(gotV-wantV) > 1e-6 {
		t.Errorf("center UV = (%f, %f), want (%f, %f)", gotU, gotV, wantU, wantV)
	}
}
