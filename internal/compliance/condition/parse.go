package condition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "taxsafe/pkg/domain-errors"
)

// Parse decodes a JSON condition tree and rejects any malformed node.
func Parse(raw []byte) (Node, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "condition is not valid JSON")
	}
	return FromValue(v)
}

// ParseLenient decodes a JSON condition tree, replacing malformed subtrees
// with Invalid nodes. It is meant for trees read back from storage.
func ParseLenient(raw []byte) Node {
	v, err := decodeJSON(raw)
	if err != nil {
		return Invalid{Reason: "condition is not valid JSON", Raw: string(raw)}
	}
	return FromValueLenient(v)
}

// FromValue builds a tree from a decoded JSON or YAML value, rejecting any
// malformed node.
func FromValue(v any) (Node, error) {
	b := builder{}
	n := b.build(v, "$")
	if b.err != nil {
		return nil, b.err
	}
	return n, nil
}

// FromValueLenient builds a tree from a decoded value, replacing malformed
// subtrees with Invalid nodes.
func FromValueLenient(v any) Node {
	b := builder{lenient: true}
	return b.build(v, "$")
}

func decodeJSON(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after condition")
	}
	return v, nil
}

type builder struct {
	lenient bool
	err     error
}

func (b *builder) fail(raw any, path, format string, args ...any) Node {
	reason := path + ": " + fmt.Sprintf(format, args...)
	if !b.lenient && b.err == nil {
		b.err = dErrors.New(dErrors.CodeValidation, "invalid condition at "+reason)
	}
	return Invalid{Reason: reason, Raw: raw}
}

func (b *builder) build(v any, path string) Node {
	obj, ok := asObject(v)
	if !ok {
		return b.fail(v, path, "expected an object")
	}
	if len(obj) == 0 {
		return Always{}
	}

	if children, ok := obj["and"]; ok {
		if len(obj) != 1 {
			return b.fail(v, path, "\"and\" cannot be combined with other keys")
		}
		nodes, ok := b.children(children, path+".and")
		if !ok {
			return b.fail(v, path, "\"and\" must be an array")
		}
		return All{Children: nodes}
	}
	if children, ok := obj["or"]; ok {
		if len(obj) != 1 {
			return b.fail(v, path, "\"or\" cannot be combined with other keys")
		}
		nodes, ok := b.children(children, path+".or")
		if !ok {
			return b.fail(v, path, "\"or\" must be an array")
		}
		return Any{Children: nodes}
	}
	return b.leaf(v, obj, path)
}

func (b *builder) children(v any, path string) ([]Node, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		nodes = append(nodes, b.build(item, fmt.Sprintf("%s[%d]", path, i)))
	}
	return nodes, true
}

func (b *builder) leaf(raw any, obj map[string]any, path string) Node {
	var unknown []string
	for k := range obj {
		if k != "field" && k != "op" && k != "value" {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return b.fail(raw, path, "unknown keys %s", strings.Join(unknown, ", "))
	}

	field, _ := obj["field"].(string)
	field = strings.TrimSpace(field)
	if field == "" {
		return b.fail(raw, path, "field is required")
	}
	opName, _ := obj["op"].(string)
	op := Op(strings.TrimSpace(opName))
	if !op.Valid() {
		return b.fail(raw, path, "unknown operator %q", opName)
	}
	value, ok := obj["value"]
	if !ok || value == nil {
		return b.fail(raw, path, "value is required")
	}

	switch {
	case op == OpIn:
		items, ok := value.([]any)
		if !ok {
			return b.fail(raw, path, "operator in requires an array value")
		}
		for i, item := range items {
			if !isScalar(item) {
				return b.fail(raw, path, "in value[%d] must be a scalar", i)
			}
		}
	case op.numeric():
		if _, ok := toDecimal(value, true); !ok {
			return b.fail(raw, path, "operator %s requires a numeric value", op)
		}
	default:
		if !isScalar(value) {
			return b.fail(raw, path, "operator %s requires a scalar value", op)
		}
	}
	return Leaf{Field: field, Op: op, Value: value}
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case map[any]any:
		out := make(map[string]any, len(o))
		for k, val := range o {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	return isNumeric(v)
}

// ToValue converts a tree back to its JSON-compatible shape.
func ToValue(n Node) any {
	switch v := n.(type) {
	case nil, Always:
		return map[string]any{}
	case Leaf:
		return map[string]any{"field": v.Field, "op": string(v.Op), "value": v.Value}
	case All:
		return map[string]any{"and": childValues(v.Children)}
	case Any:
		return map[string]any{"or": childValues(v.Children)}
	case Invalid:
		if v.Raw != nil {
			return v.Raw
		}
		return map[string]any{"invalid": v.Reason}
	}
	return map[string]any{}
}

func childValues(nodes []Node) []any {
	out := make([]any, 0, len(nodes))
	for _, c := range nodes {
		out = append(out, ToValue(c))
	}
	return out
}

// Marshal encodes a tree as JSON.
func Marshal(n Node) ([]byte, error) {
	return json.Marshal(ToValue(n))
}

// Tree wraps a Node for JSON and YAML transport. Decoding is strict.
type Tree struct {
	Node Node
}

func (t Tree) MarshalJSON() ([]byte, error) {
	return Marshal(t.Node)
}

func (t *Tree) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		t.Node = nil
		return nil
	}
	n, err := Parse(raw)
	if err != nil {
		return err
	}
	t.Node = n
	return nil
}

func (t *Tree) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "condition is not valid YAML")
	}
	if raw == nil {
		t.Node = Always{}
		return nil
	}
	n, err := FromValue(raw)
	if err != nil {
		return err
	}
	t.Node = n
	return nil
}

// Root returns the wrapped node. A nil tree yields nil.
func (t *Tree) Root() Node {
	if t == nil {
		return nil
	}
	return t.Node
}
