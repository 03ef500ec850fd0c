package core

import (
	. "github.com/dustinboston/ensemble-sub006/types"
)

// seqArg accepts a List, a Vector or nil (an empty sequence).
func seqArg(name string, v Value) ([]Value, error) {
	if IsNil(v) {
		return nil, nil
	}
	items, ok := Items(v)
	if !ok {
		return nil, TypeErrorf("%s expects a list or vector, got %s", name, TypeName(v))
	}
	return items, nil
}

func fnArg(name string, v Value) (*Function, error) {
	f, ok := v.(*Function)
	if !ok {
		return nil, TypeErrorf("%s expects a function, got %s", name, TypeName(v))
	}
	return f, nil
}

func mkList(args ...Value) (Value, error) {
	return NewList(append([]Value{}, args...)...), nil
}

func mkVector(args ...Value) (Value, error) {
	return NewVector(append([]Value{}, args...)...), nil
}

func vec(args ...Value) (Value, error) {
	if err := arity("vec", args, 1); err != nil {
		return nil, err
	}
	items, err := seqArg("vec", args[0])
	if err != nil {
		return nil, err
	}
	return NewVector(append([]Value{}, items...)...), nil
}

func emptyQ(args ...Value) (Value, error) {
	if err := arity("empty?", args, 1); err != nil {
		return nil, err
	}
	items, err := seqArg("empty?", args[0])
	if err != nil {
		return nil, err
	}
	return Bool(len(items) == 0), nil
}

func count(args ...Value) (Value, error) {
	if err := arity("count", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case String:
		return Number(len([]rune(string(a)))), nil
	case *HashMap:
		return Number(a.Len()), nil
	}
	items, err := seqArg("count", args[0])
	if err != nil {
		return nil, err
	}
	return Number(len(items)), nil
}

// cons always produces a List, whatever the sequence kind.
func cons(args ...Value) (Value, error) {
	if len(args) != 2 {
		return nil, TypeErrorf("cons expects two arguments")
	}
	items, err := seqArg("cons", args[1])
	if err != nil {
		return nil, err
	}

	list := make([]Value, 0, len(items)+1)
	list = append(list, args[0])
	list = append(list, items...)
	return NewList(list...), nil
}

func concat(args ...Value) (Value, error) {
	out := []Value{}
	for _, a := range args {
		items, err := seqArg("concat", a)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return NewList(out...), nil
}

// conj prepends to lists, in reverse argument order, and appends to vectors.
func conj(args ...Value) (Value, error) {
	if len(args) < 2 {
		return nil, TypeErrorf("conj expects a sequence and at least one value")
	}
	switch s := args[0].(type) {
	case *List:
		out := make([]Value, 0, len(s.Items)+len(args)-1)
		for i := len(args) - 1; i >= 1; i-- {
			out = append(out, args[i])
		}
		return NewList(append(out, s.Items...)...), nil
	case *Vector:
		out := append(append([]Value{}, s.Items...), args[1:]...)
		return NewVector(out...), nil
	}
	return nil, TypeErrorf("conj expects a list or vector, got %s", TypeName(args[0]))
}

func nth(args ...Value) (Value, error) {
	if len(args) != 2 {
		return nil, TypeErrorf("nth expects a list and number")
	}
	items, ok := Items(args[0])
	idx, isNum := args[1].(Number)
	if !ok || !isNum {
		return nil, TypeErrorf("nth expects a list and number")
	}
	i := int(idx)
	if i < 0 || i >= len(items) {
		return nil, TypeErrorf("nth: index out of bounds")
	}
	return items[i], nil
}

func first(args ...Value) (Value, error) {
	if err := arity("first", args, 1); err != nil {
		return nil, err
	}
	items, err := seqArg("first", args[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return Nil, nil
	}
	return items[0], nil
}

func rest(args ...Value) (Value, error) {
	if err := arity("rest", args, 1); err != nil {
		return nil, err
	}
	items, err := seqArg("rest", args[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return NewList(), nil
	}
	return NewList(append([]Value{}, items[1:]...)...), nil
}

func last(args ...Value) (Value, error) {
	if err := arity("last", args, 1); err != nil {
		return nil, err
	}
	items, err := seqArg("last", args[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return Nil, nil
	}
	return items[len(items)-1], nil
}

// seq turns lists, vectors and strings into a list; empty input gives nil.
func seq(args ...Value) (Value, error) {
	if err := arity("seq", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *List:
		if len(a.Items) > 0 {
			return a, nil
		}
	case *Vector:
		if len(a.Items) > 0 {
			return NewList(append([]Value{}, a.Items...)...), nil
		}
	case String:
		if len(a) > 0 {
			out := []Value{}
			for _, r := range string(a) {
				out = append(out, String(r))
			}
			return NewList(out...), nil
		}
	case NilType:
	default:
		return nil, TypeErrorf("seq expects a list, vector, string or nil")
	}
	return Nil, nil
}

// apply calls f with the leading arguments followed by the final sequence.
func apply(args ...Value) (Value, error) {
	if len(args) < 2 {
		return nil, TypeErrorf("apply expects a function and a sequence")
	}
	f, err := fnArg("apply", args[0])
	if err != nil {
		return nil, err
	}
	tail, err := seqArg("apply", args[len(args)-1])
	if err != nil {
		return nil, err
	}
	callArgs := append(append([]Value{}, args[1:len(args)-1]...), tail...)
	return f.Apply(callArgs...)
}

func mapFn(args ...Value) (Value, error) {
	if err := arity("map", args, 2); err != nil {
		return nil, err
	}
	f, err := fnArg("map", args[0])
	if err != nil {
		return nil, err
	}
	items, err := seqArg("map", args[1])
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, len(items))
	for _, it := range items {
		v, err := f.Apply(it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return NewList(out...), nil
}
