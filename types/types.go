// Package types holds the value model shared by the reader, the evaluator and
// the printer, plus the environment frames closures capture.
package types

import "fmt"

// Value is any piece of data the interpreter can read, evaluate or print.
// The set of implementations is closed.
type Value interface {
	isValue()
}

type NilType struct{}

type Boolean bool

type Number float64

type String string

// Keyword holds the bare keyword name, without any colon.
type Keyword string

type Symbol string

type List struct {
	Items []Value
	Meta  Value
}

type Vector struct {
	Items []Value
	Meta  Value
}

// Native is the Go side of a callable.
type Native func(args ...Value) (Value, error)

// Closure is the body, defining environment and parameters of a user-defined
// function. The evaluator uses it to apply the function without a native call.
type Closure struct {
	Body   Value
	Env    *Env
	Params []Symbol
}

type Function struct {
	Fn      Native
	Closure *Closure
	IsMacro bool
	Meta    Value
}

// Atom is the only mutable value: a single replaceable slot.
type Atom struct {
	Ref Value
}

// Node is a node literal, <tag {attrs} children...>.
type Node struct {
	Tag      Symbol
	Attrs    *HashMap
	Children []Value
	Meta     Value
}

func (NilType) isValue()   {}
func (Boolean) isValue()   {}
func (Number) isValue()    {}
func (String) isValue()    {}
func (Keyword) isValue()   {}
func (Symbol) isValue()    {}
func (*List) isValue()     {}
func (*Vector) isValue()   {}
func (*HashMap) isValue()  {}
func (*Function) isValue() {}
func (*Atom) isValue()     {}
func (*Error) isValue()    {}
func (*Node) isValue()     {}

var (
	Nil   Value = NilType{}
	True  Value = Boolean(true)
	False Value = Boolean(false)
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func NewList(items ...Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{Items: items, Meta: Nil}
}

func NewVector(items ...Value) *Vector {
	if items == nil {
		items = []Value{}
	}
	return &Vector{Items: items, Meta: Nil}
}

func NewNative(fn Native) *Function {
	return &Function{Fn: fn, Meta: Nil}
}

func NewAtom(v Value) *Atom {
	return &Atom{Ref: v}
}

func NewNode(tag Symbol, attrs *HashMap, children []Value) *Node {
	if attrs == nil {
		attrs = NewHashMap()
	}
	if children == nil {
		children = []Value{}
	}
	return &Node{Tag: tag, Attrs: attrs, Children: children, Meta: Nil}
}

// Apply calls the function's native callable.
func (f *Function) Apply(args ...Value) (Value, error) {
	return f.Fn(args...)
}

// Truthy reports whether v counts as true in a condition. Only false and nil
// are false; an atom is true whatever it holds.
func Truthy(v Value) bool {
	switch d := v.(type) {
	case NilType:
		return false
	case Boolean:
		return bool(d)
	case nil:
		return false
	}
	return true
}

func IsNil(v Value) bool {
	_, ok := v.(NilType)
	return ok || v == nil
}

func IsSequential(v Value) bool {
	switch v.(type) {
	case *List, *Vector:
		return true
	}
	return false
}

// Items returns the elements of a List or Vector.
func Items(v Value) ([]Value, bool) {
	switch d := v.(type) {
	case *List:
		return d.Items, true
	case *Vector:
		return d.Items, true
	}
	return nil, false
}

// StartsWith reports whether v is a non-empty List headed by the symbol sym.
func StartsWith(v Value, sym Symbol) bool {
	l, ok := v.(*List)
	if !ok || len(l.Items) == 0 {
		return false
	}
	head, ok := l.Items[0].(Symbol)
	return ok && head == sym
}

func TypeName(v Value) string {
	switch d := v.(type) {
	case NilType:
		return "nil"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case *List:
		return "list"
	case *Vector:
		return "vector"
	case *HashMap:
		return "map"
	case *Function:
		if d.IsMacro {
			return "macro"
		}
		return "function"
	case *Atom:
		return "atom"
	case *Error:
		return "error"
	case *Node:
		return "node"
	}
	return fmt.Sprintf("%T", v)
}

// Equal compares two values structurally. A List never equals a Vector, even
// with the same elements.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *List:
		y, ok := b.(*List)
		return ok && equalItems(x.Items, y.Items)
	case *Vector:
		y, ok := b.(*Vector)
		return ok && equalItems(x.Items, y.Items)
	case *HashMap:
		y, ok := b.(*HashMap)
		return ok && equalMaps(x, y)
	case *Node:
		y, ok := b.(*Node)
		return ok && x.Tag == y.Tag && equalMaps(x.Attrs, y.Attrs) && equalItems(x.Children, y.Children)
	case *Error:
		y, ok := b.(*Error)
		return ok && (x == y || (x.Name == y.Name && Equal(x.Payload, y.Payload)))
	case *Function, *Atom:
		return a == b
	case nil:
		return b == nil
	}
	// Atomic leaves are comparable Go values of distinct named types.
	return a == b
}

func equalItems(xs, ys []Value) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

func equalMaps(x, y *HashMap) bool {
	if x.Len() != y.Len() {
		return false
	}
	for _, k := range x.keys {
		yv, ok := y.vals[k]
		if !ok || !Equal(x.vals[k], yv) {
			return false
		}
	}
	return true
}

// Copy deep-copies the structure of v. Closure environments are shared, never
// copied.
func Copy(v Value) Value {
	switch d := v.(type) {
	case *List:
		return &List{Items: copyItems(d.Items), Meta: d.Meta}
	case *Vector:
		return &Vector{Items: copyItems(d.Items), Meta: d.Meta}
	case *HashMap:
		return d.Copy()
	case *Node:
		return &Node{Tag: d.Tag, Attrs: d.Attrs.Copy(), Children: copyItems(d.Children), Meta: d.Meta}
	case *Function:
		f := *d
		if d.Closure != nil {
			params := make([]Symbol, len(d.Closure.Params))
			copy(params, d.Closure.Params)
			f.Closure = &Closure{Body: Copy(d.Closure.Body), Env: d.Closure.Env, Params: params}
		}
		return &f
	case *Atom:
		return &Atom{Ref: Copy(d.Ref)}
	case *Error:
		return &Error{Payload: Copy(d.Payload), Name: d.Name, Cause: d.Cause}
	}
	return v
}

func copyItems(items []Value) []Value {
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = Copy(it)
	}
	return out
}

// Meta returns the metadata attached to v, nil when none was set.
func Meta(v Value) (Value, error) {
	var m Value
	switch d := v.(type) {
	case *List:
		m = d.Meta
	case *Vector:
		m = d.Meta
	case *HashMap:
		m = d.Meta
	case *Function:
		m = d.Meta
	case *Node:
		m = d.Meta
	default:
		return nil, TypeErrorf("%s does not carry metadata", TypeName(v))
	}
	if m == nil {
		return Nil, nil
	}
	return m, nil
}

// WithMeta returns a copy of v carrying meta. v itself is left untouched.
func WithMeta(v Value, meta Value) (Value, error) {
	switch v.(type) {
	case *List, *Vector, *HashMap, *Function, *Node:
	default:
		return nil, TypeErrorf("%s does not carry metadata", TypeName(v))
	}
	c := Copy(v)
	switch d := c.(type) {
	case *List:
		d.Meta = meta
	case *Vector:
		d.Meta = meta
	case *HashMap:
		d.Meta = meta
	case *Function:
		d.Meta = meta
	case *Node:
		d.Meta = meta
	}
	return c, nil
}
