// Package condition evaluates boolean condition trees against a flat business
// profile.
//
// A tree is a closed set of node types: Leaf compares one profile field, All
// and Any combine children, Always is the empty catch-all tree and Invalid
// stands in for malformed input that was loaded leniently. Evaluation never
// panics and fails closed: missing fields, type mismatches and invalid nodes
// all evaluate to false.
package condition

// Profile is a flat mapping of field name to scalar value. Evaluation never
// mutates it.
type Profile map[string]any

// Op is a leaf comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpIn  Op = "in"
)

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn:
		return true
	}
	return false
}

func (op Op) numeric() bool {
	return op == OpLt || op == OpLte || op == OpGt || op == OpGte
}

// Node is a condition tree node.
type Node interface {
	evaluate(p Profile) bool
	node()
}

// Leaf compares the profile field Field against Value with Op.
type Leaf struct {
	Field string
	Op    Op
	Value any
}

// All is true when every child is true; an empty All is true.
type All struct {
	Children []Node
}

// Any is true when at least one child is true; an empty Any is false.
type Any struct {
	Children []Node
}

// Always is the empty tree and matches every profile.
type Always struct{}

// Invalid replaces a malformed subtree and never matches. Raw keeps the
// original shape so it survives a storage round trip.
type Invalid struct {
	Reason string
	Raw    any
}

func (Leaf) node()    {}
func (All) node()     {}
func (Any) node()     {}
func (Always) node()  {}
func (Invalid) node() {}

// Evaluate reports whether profile satisfies n. A nil node is treated as the
// empty tree.
func Evaluate(n Node, profile Profile) bool {
	if n == nil {
		return true
	}
	return n.evaluate(profile)
}

func (l Leaf) evaluate(p Profile) bool {
	fv, ok := p[l.Field]
	if !ok || fv == nil {
		return false
	}
	switch l.Op {
	case OpEq:
		eq, ok := equal(fv, l.Value)
		return ok && eq
	case OpNeq:
		eq, ok := equal(fv, l.Value)
		return ok && !eq
	case OpLt, OpLte, OpGt, OpGte:
		return compareNumeric(l.Op, fv, l.Value)
	case OpIn:
		return member(fv, l.Value)
	default:
		return false
	}
}

func (a All) evaluate(p Profile) bool {
	for _, c := range a.Children {
		if !Evaluate(c, p) {
			return false
		}
	}
	return true
}

func (a Any) evaluate(p Profile) bool {
	for _, c := range a.Children {
		if Evaluate(c, p) {
			return true
		}
	}
	return false
}

func (Always) evaluate(Profile) bool { return true }

func (Invalid) evaluate(Profile) bool { return false }

// Fields lists the profile fields referenced by n in first-seen order.
func Fields(n Node) []string {
	seen := map[string]struct{}{}
	var out []string
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Leaf:
			if _, ok := seen[v.Field]; !ok {
				seen[v.Field] = struct{}{}
				out = append(out, v.Field)
			}
		case All:
			for _, c := range v.Children {
				walk(c)
			}
		case Any:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
