package query

import (
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
)

// Document is the YAML form of a query:
//
//	select:
//	  - field: created_by
//	    select:
//	      - index: 1
//	        select:
//	          - field: name
//	  - field: title
//
// An entry without select is a result.
type Document struct {
	Select []Selector `yaml:"select"`
}

// Selector picks one member of an object (Field) or one item of an array
// (Index).
type Selector struct {
	Field  *string    `yaml:"field,omitempty"`
	Index  *int       `yaml:"index,omitempty"`
	Select []Selector `yaml:"select,omitempty"`
}

// ParseYAML decodes a query document.
func ParseYAML(r io.Reader) (*Plan, error) {
	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty query document", ErrQuery)
		}
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrQuery, err)
	}

	return Compile(doc)
}

// Compile turns a decoded document into a plan.
func Compile(doc Document) (*Plan, error) {
	if len(doc.Select) == 0 {
		return nil, fmt.Errorf("%w: nothing selected", ErrQuery)
	}

	root := &step{}
	order := 0
	if err := addSelectors(root, doc.Select, "$", &order); err != nil {
		return nil, err
	}
	return build(root), nil
}

func addSelectors(parent *step, selectors []Selector, path string, order *int) error {
	for i, sel := range selectors {
		key, label, err := selectorKey(sel, path, i)
		if err != nil {
			return err
		}
		if i > 0 && (sel.Index != nil) != (selectors[0].Index != nil) {
			return fmt.Errorf("%w: %s mixes field and index entries", ErrQuery, path)
		}
		for _, prev := range selectors[:i] {
			if sameKey(prev, sel) {
				return fmt.Errorf("%w: %s is selected twice", ErrQuery, label)
			}
		}

		key.label = label
		c, err := parent.child(key)
		if err != nil {
			return err
		}
		if len(sel.Select) == 0 {
			if err := c.markLeaf(label, *order); err != nil {
				return err
			}
			*order++
			continue
		}
		if err := addSelectors(c, sel.Select, label, order); err != nil {
			return err
		}
	}
	return nil
}

func selectorKey(sel Selector, path string, pos int) (step, string, error) {
	switch {
	case sel.Field != nil && sel.Index != nil:
		return step{}, "", fmt.Errorf("%w: %s entry %d has both field and index", ErrQuery, path, pos)
	case sel.Field != nil:
		if *sel.Field == "" {
			return step{}, "", fmt.Errorf("%w: %s entry %d has an empty field", ErrQuery, path, pos)
		}
		return step{name: *sel.Field}, appendName(path, *sel.Field), nil
	case sel.Index != nil:
		if *sel.Index < 0 {
			return step{}, "", fmt.Errorf("%w: %s entry %d has negative index %d", ErrQuery, path, pos, *sel.Index)
		}
		return step{index: *sel.Index, byIndex: true}, appendIndex(path, *sel.Index), nil
	}
	return step{}, "", fmt.Errorf("%w: %s entry %d needs a field or an index", ErrQuery, path, pos)
}

func sameKey(a, b Selector) bool {
	if a.Field != nil && b.Field != nil {
		return *a.Field == *b.Field
	}
	if a.Index != nil && b.Index != nil {
		return *a.Index == *b.Index
	}
	return false
}
