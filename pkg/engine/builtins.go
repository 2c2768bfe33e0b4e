package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/davrell/carve/pkg/brush"
	"github.com/davrell/carve/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms console source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: brush-cube -> brush_cube
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a position or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps a brush face definition before it is bound to a brush.
type sexpFace struct {
	face *brush.Face
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	p := f.face.Plane()
	return fmt.Sprintf("(face normal (%g %g %g) %q)", p.Normal.X, p.Normal.Y, p.Normal.Z, f.face.Material)
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

// sexpBrushRef names a brush node living in the world under
// construction.
type sexpBrushRef struct {
	name string
	node *scene.BrushNode
}

func (r *sexpBrushRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(brush %q)", r.name)
}
func (r *sexpBrushRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toBrushRef extracts a brush node from a sexpBrushRef.
func toBrushRef(s zygo.Sexp) (*sexpBrushRef, error) {
	if r, ok := s.(*sexpBrushRef); ok {
		return r, nil
	}
	return nil, fmt.Errorf("expected brush reference, got %T (%s)", s, s.SexpString(nil))
}

// toBool interprets a Sexp as a flag value. A bare keyword with no
// value parses as SexpNull, which counts as true.
func toBool(s zygo.Sexp) bool {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val
	}
	return s == zygo.SexpNull
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toVec3Slice converts a list of vec3 expressions to positions.
func toVec3Slice(s zygo.Sexp) ([]v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]v3.Vec, 0, len(items))
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Brush registry
// ---------------------------------------------------------------------------

// registry names the brush nodes of the world being built so that
// script expressions can refer back to them.
type registry struct {
	world *scene.World
	nodes map[string]*scene.BrushNode
}

func newRegistry(w *scene.World) *registry {
	return &registry{world: w, nodes: make(map[string]*scene.BrushNode)}
}

// add attaches a node to the world under a unique name.
func (r *registry) add(name string, n *scene.BrushNode) (*sexpBrushRef, error) {
	if name == "" {
		return nil, fmt.Errorf("brush name must not be empty")
	}
	if _, exists := r.nodes[name]; exists {
		return nil, fmt.Errorf("brush %q already defined", name)
	}
	if err := scene.Attach(r.world, n); err != nil {
		return nil, err
	}
	r.nodes[name] = n
	return &sexpBrushRef{name: name, node: n}, nil
}

// remove detaches a node from the world and forgets its name.
func (r *registry) remove(ref *sexpBrushRef) error {
	if err := scene.Detach(ref.node); err != nil {
		return err
	}
	delete(r.nodes, ref.name)
	return nil
}

func (r *registry) lookup(name string) *scene.BrushNode {
	return r.nodes[name]
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the console builtins into a zygomys
// environment. The builtins operate on the registry's world, populating
// it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens become recognizable string
// literals and kebab-case names match the registered underscore forms.
func registerBuiltins(env *zygo.Zlisp, reg *registry) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var coords [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: argument %d: %w", i+1, err)
			}
			coords[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (face (vec3 a) (vec3 b) (vec3 c) :material "stone")
	//
	// The three points span the boundary plane; the face's outward side
	// follows their counter-clockwise order.
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("face requires 3 points, got %d", len(pa.positional))
		}
		var pts [3]v3.Vec
		for i, a := range pa.positional {
			v, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: point %d: %w", i+1, err)
			}
			pts[i] = v
		}
		material := ""
		if v, ok := pa.kw["material"]; ok {
			m, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: material: %w", err)
			}
			material = m
		}
		f, err := brush.NewFace(pts[0], pts[1], pts[2], material)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		return &sexpFace{face: f}, nil
	})

	// -----------------------------------------------------------------------
	// (brush-cube "name" :center (vec3 0 0 0) :size 64 :material "stone")
	// -----------------------------------------------------------------------
	env.AddFunction("brush_cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush-cube requires a name argument")
		}
		brushName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cube: name: %w", err)
		}

		center := v3.Vec{}
		if v, ok := pa.kw["center"]; ok {
			if center, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cube: center: %w", err)
			}
		}
		size := 64.0
		if v, ok := pa.kw["size"]; ok {
			if size, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cube: size: %w", err)
			}
		}
		material := reg.world.DefaultMaterial()
		if v, ok := pa.kw["material"]; ok {
			if material, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cube: material: %w", err)
			}
		}

		b, err := brush.NewCube(reg.world.Bounds(), center, size, material)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cube %q: %w", brushName, err)
		}
		ref, err := reg.add(brushName, scene.NewBrushNode(brushName, b))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cube: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (brush-cuboid "name" :min (vec3 0 0 0) :max (vec3 64 32 16)
	//               :material "stone")
	// -----------------------------------------------------------------------
	env.AddFunction("brush_cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush-cuboid requires a name argument")
		}
		brushName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cuboid: name: %w", err)
		}

		box := sdf.Box3{}
		if v, ok := pa.kw["min"]; ok {
			if box.Min, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cuboid: min: %w", err)
			}
		}
		if v, ok := pa.kw["max"]; ok {
			if box.Max, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cuboid: max: %w", err)
			}
		}
		material := reg.world.DefaultMaterial()
		if v, ok := pa.kw["material"]; ok {
			if material, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush-cuboid: material: %w", err)
			}
		}

		b, err := brush.NewCuboid(reg.world.Bounds(), box, material)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cuboid %q: %w", brushName, err)
		}
		ref, err := reg.add(brushName, scene.NewBrushNode(brushName, b))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-cuboid: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (brush-from-planes "name" (face ...) (face ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("brush_from_planes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush-from-planes requires a name argument")
		}
		brushName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-from-planes: name: %w", err)
		}

		var faces []*brush.Face
		for i := 1; i < len(args); i++ {
			sf, ok := args[i].(*sexpFace)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("brush-from-planes: argument %d: expected face, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			faces = append(faces, sf.face)
		}

		b, err := brush.New(reg.world.Bounds(), faces)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-from-planes %q: %w", brushName, err)
		}
		ref, err := reg.add(brushName, scene.NewBrushNode(brushName, b))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush-from-planes: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (brush "name")
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush requires a name argument")
		}
		brushName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: name: %w", err)
		}
		n := reg.lookup(brushName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("brush: no brush named %q", brushName)
		}
		return &sexpBrushRef{name: brushName, node: n}, nil
	})

	// -----------------------------------------------------------------------
	// (translate (brush "wall") (vec3 16 0 0) :uv-lock true)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a brush and a delta")
		}
		ref, err := toBrushRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		delta, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: delta: %w", err)
		}
		uvLock := false
		if v, ok := pa.kw["uv-lock"]; ok {
			uvLock = toBool(v)
		}
		if err := ref.node.Translate(delta, uvLock); err != nil {
			return zygo.SexpNull, fmt.Errorf("translate %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (rotate (brush "wall") :axis :z :angle 90 :about (vec3 0 0 0))
	//
	// The angle is in degrees. Without :about the brush rotates around
	// the center of its bounds.
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a brush argument")
		}
		ref, err := toBrushRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}

		axis := "z"
		if v, ok := pa.kw["axis"]; ok {
			if axis, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
			}
		}
		angle := 0.0
		if v, ok := pa.kw["angle"]; ok {
			if angle, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
			}
		}
		about := ref.node.Bounds().Center()
		if v, ok := pa.kw["about"]; ok {
			if about, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: about: %w", err)
			}
		}
		uvLock := false
		if v, ok := pa.kw["uv-lock"]; ok {
			uvLock = toBool(v)
		}

		rad := angle * math.Pi / 180
		var rot sdf.M44
		switch axis {
		case "x":
			rot = sdf.RotateX(rad)
		case "y":
			rot = sdf.RotateY(rad)
		case "z":
			rot = sdf.RotateZ(rad)
		default:
			return zygo.SexpNull, fmt.Errorf("rotate: invalid axis %q, expected x, y, or z", axis)
		}
		m := sdf.Translate3d(about).Mul(rot).Mul(sdf.Translate3d(about.Neg()))

		if err := ref.node.Transform(m, uvLock); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (move-vertices (brush "wall") (list (vec3 ...) ...) (vec3 0 0 16))
	// -----------------------------------------------------------------------
	env.AddFunction("move_vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("move-vertices requires a brush, a vertex list and a delta")
		}
		ref, err := toBrushRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertices: %w", err)
		}
		positions, err := toVec3Slice(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertices: vertices: %w", err)
		}
		delta, err := toVec3(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertices: delta: %w", err)
		}
		uvLock := false
		if v, ok := pa.kw["uv-lock"]; ok {
			uvLock = toBool(v)
		}
		if _, err := ref.node.MoveVertices(positions, delta, uvLock); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertices %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (snap-to-grid (brush "wall") 8)
	// -----------------------------------------------------------------------
	env.AddFunction("snap_to_grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("snap-to-grid requires a brush and a grid size")
		}
		ref, err := toBrushRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-to-grid: %w", err)
		}
		grid, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-to-grid: grid: %w", err)
		}
		uvLock := false
		if v, ok := pa.kw["uv-lock"]; ok {
			uvLock = toBool(v)
		}
		if err := ref.node.SnapVertices(grid, uvLock); err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-to-grid %q: %w", ref.name, err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (subtract (brush "room") (brush "door") ...)
	//
	// Replaces the minuend with its fragments, registered as
	// "name:1", "name:2", ... Returns the number of fragments.
	// -----------------------------------------------------------------------
	env.AddFunction("subtract", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("subtract requires a minuend and at least one subtrahend")
		}
		minuend, err := toBrushRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subtract: minuend: %w", err)
		}
		subtrahends := make([]*scene.BrushNode, 0, len(args)-1)
		for i := 1; i < len(args); i++ {
			ref, err := toBrushRef(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subtract: subtrahend %d: %w", i, err)
			}
			subtrahends = append(subtrahends, ref.node)
		}

		fragments, err := minuend.node.Subtract(subtrahends...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subtract %q: %w", minuend.name, err)
		}
		if err := reg.remove(minuend); err != nil {
			return zygo.SexpNull, fmt.Errorf("subtract: %w", err)
		}
		for i, frag := range fragments {
			fragName := fmt.Sprintf("%s:%d", minuend.name, i+1)
			frag.SetName(fragName)
			if _, err := reg.add(fragName, frag); err != nil {
				return zygo.SexpNull, fmt.Errorf("subtract: %w", err)
			}
		}
		return &zygo.SexpInt{Val: int64(len(fragments))}, nil
	})

	// -----------------------------------------------------------------------
	// (intersect (brush "a") (brush "b"))
	//
	// Clips the first brush to its overlap with the second.
	// -----------------------------------------------------------------------
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("intersect requires exactly 2 brushes")
		}
		a, err := toBrushRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		b, err := toBrushRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		if err := a.node.Intersect(b.node); err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect %q %q: %w", a.name, b.name, err)
		}
		return a, nil
	})

	// -----------------------------------------------------------------------
	// (volume (brush "wall"))
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("volume requires a brush argument")
		}
		ref, err := toBrushRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		return &zygo.SexpFloat{Val: ref.node.Volume()}, nil
	})
}
