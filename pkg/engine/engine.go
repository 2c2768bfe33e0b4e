// Package engine provides the Lisp console for building brush scenes.
// It wraps zygomys in a sandboxed environment; evaluating a script
// produces a scene world populated with brush nodes.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/davrell/carve/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment and a
// fresh world for determinism.
type Engine struct {
	worldBounds     sdf.Box3
	defaultMaterial string

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an engine whose evaluations build worlds with the
// given bounds and default material.
func NewEngine(worldBounds sdf.Box3, defaultMaterial string) *Engine {
	return &Engine{worldBounds: worldBounds, defaultMaterial: defaultMaterial}
}

// Evaluate takes Lisp source code and produces a new world.
//
// Return semantics:
//   - On success: returns world + nil errors + nil error
//   - On parse/eval failure: returns nil world + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.World, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		w, evalErrs, err := e.evaluate(source)
		ch <- evalResult{world: w, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*scene.World, []EvalError, error) {
	world := scene.NewWorld(e.worldBounds, e.defaultMaterial)

	// Empty source is a valid program that produces an empty world.
	if strings.TrimSpace(source) == "" {
		return world, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	reg := newRegistry(world)
	registerBuiltins(env, reg)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return world, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers where the message carries them.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	// No line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
