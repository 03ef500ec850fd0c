package core

import (
	. "github.com/dustinboston/ensemble-sub006/types"
)

func mapArg(name string, v Value) (*HashMap, error) {
	m, ok := v.(*HashMap)
	if !ok {
		return nil, TypeErrorf("%s expects a map, got %s", name, TypeName(v))
	}
	return m, nil
}

func hashMap(args ...Value) (Value, error) {
	return NewHashMapFromPairs(args)
}

func assoc(args ...Value) (Value, error) {
	if len(args) < 1 || len(args)%2 != 1 {
		return nil, TypeErrorf("assoc expects a map and key/value pairs")
	}
	m, err := mapArg("assoc", args[0])
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	for i := 1; i < len(args); i += 2 {
		if err := out.Set(args[i], args[i+1]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dissoc(args ...Value) (Value, error) {
	if len(args) < 1 {
		return nil, TypeErrorf("dissoc expects a map")
	}
	m, err := mapArg("dissoc", args[0])
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	for _, k := range args[1:] {
		if err := out.Delete(k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func get(args ...Value) (Value, error) {
	if err := arity("get", args, 2); err != nil {
		return nil, err
	}
	if IsNil(args[0]) {
		return Nil, nil
	}
	m, err := mapArg("get", args[0])
	if err != nil {
		return nil, err
	}
	v, ok, err := m.Get(args[1])
	if err != nil {
		return nil, err
	}
	if !ok {
		return Nil, nil
	}
	return v, nil
}

func contains(args ...Value) (Value, error) {
	if err := arity("contains?", args, 2); err != nil {
		return nil, err
	}
	m, err := mapArg("contains?", args[0])
	if err != nil {
		return nil, err
	}
	return Bool(m.Has(args[1])), nil
}

func keys(args ...Value) (Value, error) {
	if err := arity("keys", args, 1); err != nil {
		return nil, err
	}
	m, err := mapArg("keys", args[0])
	if err != nil {
		return nil, err
	}
	out := []Value{}
	for _, k := range m.Keys() {
		out = append(out, KeyValue(k))
	}
	return NewList(out...), nil
}

func vals(args ...Value) (Value, error) {
	if err := arity("vals", args, 1); err != nil {
		return nil, err
	}
	m, err := mapArg("vals", args[0])
	if err != nil {
		return nil, err
	}
	out := []Value{}
	for _, k := range m.Keys() {
		v, _ := m.GetKey(k)
		out = append(out, v)
	}
	return NewList(out...), nil
}

func meta(args ...Value) (Value, error) {
	if err := arity("meta", args, 1); err != nil {
		return nil, err
	}
	return Meta(args[0])
}

func withMeta(args ...Value) (Value, error) {
	if err := arity("with-meta", args, 2); err != nil {
		return nil, err
	}
	return WithMeta(args[0], args[1])
}

// Atoms
func atom(args ...Value) (Value, error) {
	if len(args) != 1 {
		return nil, TypeErrorf("atom expects a single value")
	}
	return NewAtom(args[0]), nil
}

func atomArg(name string, v Value) (*Atom, error) {
	a, ok := v.(*Atom)
	if !ok {
		return nil, TypeErrorf("%s expects an atom, got %s", name, TypeName(v))
	}
	return a, nil
}

func deref(args ...Value) (Value, error) {
	if len(args) != 1 {
		return nil, TypeErrorf("deref expects a single value")
	}
	a, err := atomArg("deref", args[0])
	if err != nil {
		return nil, err
	}
	return a.Ref, nil
}

func atomReset(args ...Value) (Value, error) {
	if len(args) != 2 {
		return nil, TypeErrorf("reset! requires two values")
	}
	a, err := atomArg("reset!", args[0])
	if err != nil {
		return nil, err
	}
	a.Ref = args[1]
	return args[1], nil
}

// swap! replaces the atom's value with (f current extra...).
func atomSwap(args ...Value) (Value, error) {
	if len(args) < 2 {
		return nil, TypeErrorf("swap! requires at least two values")
	}
	a, err := atomArg("swap!", args[0])
	if err != nil {
		return nil, err
	}
	f, err := fnArg("swap!", args[1])
	if err != nil {
		return nil, err
	}

	callArgs := append([]Value{a.Ref}, args[2:]...)
	val, err := f.Apply(callArgs...)
	if err != nil {
		return nil, err
	}
	a.Ref = val
	return val, nil
}
