// Package query compiles extraction requests, written as YAML documents or
// as simple JSONPath expressions, into a pull.Extraction with one result slot
// per requested value.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jacoelho/pulljson/internal/arena"
	"github.com/jacoelho/pulljson/internal/pull"
	"github.com/jacoelho/pulljson/internal/tree"
)

var (
	// ErrQuery is returned for queries that are malformed.
	ErrQuery = errors.New("query error")
	// ErrNotSupported is returned for valid queries the extractor cannot run.
	ErrNotSupported = errors.New("query not supported")
)

// Result binds a requested path to the element receiving its value.
type Result struct {
	Path string
	Slot *tree.Element
}

// Plan is a compiled query. Slots are reused across documents.
type Plan struct {
	Extraction pull.Extraction
	Results    []Result
}

// Reset makes every slot Undefined.
func (p *Plan) Reset() {
	p.Extraction.Reset()
}

// Extract resets the slots and runs the plan against the value r is on.
func (p *Plan) Extract(r *pull.Reader, a *arena.Arena) error {
	p.Reset()
	return r.Extract(a, &p.Extraction)
}

// step is one node of the merged selection tree. All children of a step
// select either by name or by index.
type step struct {
	name     string
	index    int
	byIndex  bool
	children []*step

	leaf  bool
	label string
	order int
}

func (s *step) child(key step) (*step, error) {
	if s.leaf {
		return nil, fmt.Errorf("%w: %s selects inside a value that is already selected", ErrNotSupported, key.label)
	}
	if len(s.children) > 0 && s.children[0].byIndex != key.byIndex {
		return nil, fmt.Errorf("%w: %s mixes field and index selection on one value", ErrNotSupported, key.label)
	}
	for _, c := range s.children {
		if c.byIndex == key.byIndex && c.name == key.name && c.index == key.index {
			return c, nil
		}
	}

	c := &step{name: key.name, index: key.index, byIndex: key.byIndex}
	s.children = append(s.children, c)
	return c, nil
}

// markLeaf makes s a result. A step cannot be both a result and a parent.
func (s *step) markLeaf(label string, order int) error {
	if s.leaf {
		return fmt.Errorf("%w: %s is selected twice", ErrQuery, label)
	}
	if len(s.children) > 0 {
		return fmt.Errorf("%w: %s selects a value whose children are also selected", ErrNotSupported, label)
	}
	s.leaf = true
	s.label = label
	s.order = order
	return nil
}

type leafRef struct {
	order  int
	result Result
}

func build(root *step) *Plan {
	var leaves []leafRef
	var compile func(s *step) pull.Extraction
	compile = func(s *step) pull.Extraction {
		if s.leaf {
			slot := &tree.Element{}
			leaves = append(leaves, leafRef{order: s.order, result: Result{Path: s.label, Slot: slot}})
			return pull.Leaf(slot)
		}

		children := make([]pull.Extraction, len(s.children))
		for i, c := range s.children {
			children[i] = compile(c)
		}
		if s.children[0].byIndex {
			indices := make([]int, len(s.children))
			for i, c := range s.children {
				indices[i] = c.index
			}
			return pull.SelectIndices(indices, children...)
		}
		names := make([]string, len(s.children))
		for i, c := range s.children {
			names[i] = c.name
		}
		return pull.SelectFields(names, children...)
	}

	plan := &Plan{Extraction: compile(root)}
	slices.SortStableFunc(leaves, func(a, b leafRef) int {
		return a.order - b.order
	})
	for _, l := range leaves {
		plan.Results = append(plan.Results, l.result)
	}
	return plan
}

// appendName extends a normalized path with a member name.
func appendName(path, name string) string {
	if isIdentifier(name) {
		return path + "." + name
	}
	return path + "[" + quote(name) + "]"
}

func appendIndex(path string, index int) string {
	return path + "[" + strconv.Itoa(index) + "]"
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func quote(name string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range name {
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('\'')
	return b.String()
}
