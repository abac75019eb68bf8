package query

import (
	"fmt"

	"github.com/theory/jsonpath"
	"github.com/theory/jsonpath/spec"
)

// CompilePaths merges JSONPath expressions into one plan. Only singular
// paths made of child segments with one name or one non-negative index are
// supported; each result is labelled with its expression.
func CompilePaths(exprs ...string) (*Plan, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("%w: no paths given", ErrQuery)
	}

	root := &step{}
	for order, expr := range exprs {
		if err := addPath(root, expr, order); err != nil {
			return nil, err
		}
	}
	return build(root), nil
}

func addPath(root *step, expr string, order int) error {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return fmt.Errorf("%w: invalid JSONPath %s: %v", ErrQuery, expr, err)
	}

	current := root
	for _, seg := range path.Query().Segments() {
		if seg.IsDescendant() {
			return fmt.Errorf("%w: %s: descendant segments", ErrNotSupported, expr)
		}
		selectors := seg.Selectors()
		if len(selectors) != 1 {
			return fmt.Errorf("%w: %s: segments must have exactly one selector", ErrNotSupported, expr)
		}

		var key step
		switch sel := selectors[0].(type) {
		case spec.Name:
			key = step{name: string(sel)}
		case spec.Index:
			if sel < 0 {
				return fmt.Errorf("%w: %s: negative index %d", ErrNotSupported, expr, int(sel))
			}
			key = step{index: int(sel), byIndex: true}
		default:
			return fmt.Errorf("%w: %s: selector %v", ErrNotSupported, expr, sel)
		}

		key.label = expr
		if current, err = current.child(key); err != nil {
			return err
		}
	}

	return current.markLeaf(expr, order)
}
