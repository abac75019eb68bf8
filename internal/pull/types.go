package pull

// NodeType is the token the reader is positioned on.
type NodeType uint8

const (
	Initial NodeType = iota
	Value
	Field
	Array
	EndArray
	Object
	EndObject
	EndDocument
	Error
)

var nodeTypeNames = [...]string{
	Initial:     "Initial",
	Value:       "Value",
	Field:       "Field",
	Array:       "Array",
	EndArray:    "EndArray",
	Object:      "Object",
	EndObject:   "EndObject",
	EndDocument: "EndDocument",
	Error:       "Error",
}

func (n NodeType) String() string {
	if int(n) < len(nodeTypeNames) {
		return nodeTypeNames[n]
	}
	return "Unknown"
}

// ValueType classifies a Value token. Integer and Real are told apart
// lexically.
type ValueType uint8

const (
	Undefined ValueType = iota
	Null
	String
	Real
	Integer
	Boolean
)

var valueTypeNames = [...]string{
	Undefined: "Undefined",
	Null:      "Null",
	String:    "String",
	Real:      "Real",
	Integer:   "Integer",
	Boolean:   "Boolean",
}

func (v ValueType) String() string {
	if int(v) < len(valueTypeNames) {
		return valueTypeNames[v]
	}
	return "Unknown"
}

// Axis selects where SkipToField looks for a field.
type Axis uint8

const (
	// Forward scans the rest of the document.
	Forward Axis = iota
	// Siblings looks only at the members of the current object.
	Siblings
	// Descendants scans the current container and everything nested in it.
	Descendants
)

func (a Axis) String() string {
	switch a {
	case Forward:
		return "forward"
	case Siblings:
		return "siblings"
	case Descendants:
		return "descendants"
	}
	return "unknown"
}

type containerKind uint8

const (
	inObject containerKind = iota + 1
	inArray
)
