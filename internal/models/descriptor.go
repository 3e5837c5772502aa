package models

import (
	"fmt"
	"strings"
)

// Direction selects which relationships of a node a traversal follows.
type Direction int

// Traversal directions.
const (
	Outgoing Direction = iota
	Incoming
	Both
)

// String returns the canonical lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool {
	return d == Outgoing || d == Incoming || d == Both
}

// ParseDirection parses "out", "outgoing", "in", "incoming" or "both".
// An empty string yields Outgoing.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "out", "outgoing":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	case "both":
		return Both, nil
	default:
		return Outgoing, InvalidArgument("unknown direction %q", s)
	}
}

// Descriptor declares one relationship role: which relationship type to
// follow, in which direction, and which related nodes qualify.
//
// Fields are unexported so a Descriptor cannot change after NewDescriptor
// returns; copies share nothing mutable and may be used from any goroutine.
type Descriptor struct {
	relType  string
	dir      Direction
	nodeType string
}

// DescriptorOption customises a Descriptor at construction time.
type DescriptorOption func(*Descriptor)

// WithNodeType restricts the traversal to related nodes of the given type.
func WithNodeType(nodeType string) DescriptorOption {
	return func(d *Descriptor) { d.nodeType = nodeType }
}

// NewDescriptor builds a validated Descriptor.
func NewDescriptor(relType string, dir Direction, opts ...DescriptorOption) (Descriptor, error) {
	d := Descriptor{relType: relType, dir: dir}
	for _, o := range opts {
		o(&d)
	}

	if d.relType == "" {
		return Descriptor{}, ErrMissingRelation
	}

	if len(d.relType) > 255 {
		return Descriptor{}, ErrFieldTooLong("relation", 255)
	}

	if !d.dir.Valid() {
		return Descriptor{}, InvalidArgument("unknown direction %d", int(d.dir))
	}

	if len(d.nodeType) > 100 {
		return Descriptor{}, ErrFieldTooLong("node_type", 100)
	}

	return d, nil
}

// Type returns the relationship type.
func (d Descriptor) Type() string { return d.relType }

// Direction returns the traversal direction.
func (d Descriptor) Direction() Direction { return d.dir }

// NodeType returns the related-node type filter; empty means any type.
func (d Descriptor) NodeType() string { return d.nodeType }

// Key returns a string uniquely identifying the descriptor, for cache keys.
func (d Descriptor) Key() string {
	return d.dir.String() + ":" + d.relType + ":" + d.nodeType
}

// String returns a human-readable description.
func (d Descriptor) String() string {
	if d.nodeType == "" {
		return fmt.Sprintf("%s %s", d.dir, d.relType)
	}

	return fmt.Sprintf("%s %s to %s", d.dir, d.relType, d.nodeType)
}
