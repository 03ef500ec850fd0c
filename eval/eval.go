// Package eval evaluates forms read by the reader against an environment.
package eval

import (
	"log/slog"

	"github.com/dustinboston/ensemble-sub006/printer"
	"github.com/dustinboston/ensemble-sub006/reader"
	. "github.com/dustinboston/ensemble-sub006/types"
)

// step is what a special form hands back to the loop: either a finished value,
// or an expression and environment to keep evaluating in tail position.
type step struct {
	value Value
	ast   Value
	env   *Env
}

func done(v Value) (step, error) {
	return step{value: v}, nil
}

func next(ast Value, env *Env) (step, error) {
	return step{ast: ast, env: env}, nil
}

func Read(raw string) (Value, error) {
	return reader.ReadStr(raw)
}

func Print(form Value) string {
	return printer.PrintStr(form, true)
}

// Rep reads, evaluates and prints one form.
func Rep(input string, env *Env) (string, error) {
	form, err := Read(input)
	if err != nil {
		return "", err
	}
	evald, err := Eval(form, env)
	if err != nil {
		return "", err
	}
	return Print(evald), nil
}

// Eval evaluates ast in env. Tail positions of the special forms and of
// closure application loop here instead of recursing, so tail calls run in
// constant Go stack.
func Eval(ast Value, env *Env) (Value, error) {
	for {
		list, ok := ast.(*List)
		if !ok {
			return evalAst(ast, env)
		}
		if len(list.Items) == 0 {
			return ast, nil
		}

		expanded, err := Macroexpand(ast, env)
		if err != nil {
			return nil, err
		}
		ast = expanded
		list, ok = ast.(*List)
		if !ok {
			return evalAst(ast, env)
		}
		if len(list.Items) == 0 {
			return ast, nil
		}

		var s step
		sym, _ := list.Items[0].(Symbol)
		switch sym {
		case "def!", "var":
			s, err = evalDef(list, env)
		case "let", "const", "let*":
			s, err = evalLet(list, env)
		case "quote":
			s, err = evalQuote(list)
		case "quasiquoteexpand":
			s, err = evalQuasiquoteExpand(list)
		case "quasiquote":
			s, err = evalQuasiquote(list, env)
		case "defmacro!":
			s, err = evalDefmacro(list, env)
		case "macroexpand":
			s, err = evalMacroexpand(list, env)
		case "try", "try*":
			s, err = evalTry(list, env)
		case "do":
			s, err = evalDo(list, env)
		case "if":
			s, err = evalIf(list, env)
		case "fn*", "function", "=>":
			s, err = evalFn(list, env)
		default:
			s, err = evalApply(list, env)
		}
		if err != nil {
			return nil, err
		}
		if s.ast == nil {
			return s.value, nil
		}
		ast, env = s.ast, s.env
	}
}

func evalAst(ast Value, env *Env) (Value, error) {
	switch d := ast.(type) {
	case Symbol:
		return env.Get(d)

	case *List:
		evald, err := evalList(d.Items, env)
		if err != nil {
			return nil, err
		}
		return NewList(evald...), nil

	case *Vector:
		evald, err := evalList(d.Items, env)
		if err != nil {
			return nil, err
		}
		return NewVector(evald...), nil

	case *HashMap:
		return evalMap(d, env)

	case *Node:
		attrs, err := evalMap(d.Attrs, env)
		if err != nil {
			return nil, err
		}
		children, err := evalList(d.Children, env)
		if err != nil {
			return nil, err
		}
		return NewNode(d.Tag, attrs, children), nil
	}

	return ast, nil
}

func evalList(list []Value, env *Env) ([]Value, error) {
	ret := make([]Value, 0, len(list))
	for _, expr := range list {
		evald, err := Eval(expr, env)
		if err != nil {
			return nil, err
		}

		ret = append(ret, evald)
	}
	return ret, nil
}

// Keys are left as they are; only values are evaluated.
func evalMap(m *HashMap, env *Env) (*HashMap, error) {
	out := NewHashMap()
	for _, k := range m.Keys() {
		v, _ := m.GetKey(k)
		evald, err := Eval(v, env)
		if err != nil {
			return nil, err
		}
		out.SetKey(k, evald)
	}
	return out, nil
}

// IsMacroCall reports whether ast is a list headed by a symbol bound to a
// macro.
func IsMacroCall(ast Value, env *Env) bool {
	list, ok := ast.(*List)
	if !ok || len(list.Items) == 0 {
		return false
	}
	sym, ok := list.Items[0].(Symbol)
	if !ok {
		return false
	}

	found := env.Find(sym)
	if found == nil {
		return false
	}
	m, err := found.Get(sym)
	if err != nil {
		return false
	}
	f, ok := m.(*Function)
	return ok && f.IsMacro
}

// Macroexpand rewrites ast until its head is no longer a macro.
func Macroexpand(ast Value, env *Env) (Value, error) {
	for IsMacroCall(ast, env) {
		slc := ast.(*List).Items
		mac, err := env.Get(slc[0])
		if err != nil {
			return nil, err
		}

		slog.Debug("expanding macro", slog.String("name", string(slc[0].(Symbol))))
		ast, err = mac.(*Function).Apply(slc[1:]...)
		if err != nil {
			return nil, err
		}
	}
	return ast, nil
}

// Quasiquote turns a quasiquoted form into the cons/concat/vec calls that
// build it.
func Quasiquote(ast Value) Value {
	switch d := ast.(type) {
	case *HashMap, Symbol:
		return NewList(Symbol("quote"), ast)
	case *List:
		if StartsWith(d, "unquote") && len(d.Items) > 1 {
			return d.Items[1]
		}
		return qqFold(d.Items)
	case *Vector:
		return NewList(Symbol("vec"), qqFold(d.Items))
	}
	return ast
}

func qqFold(items []Value) Value {
	var acc Value = NewList()
	for i := len(items) - 1; i >= 0; i-- {
		elt := items[i]
		if l, ok := elt.(*List); ok && StartsWith(l, "splice-unquote") && len(l.Items) > 1 {
			acc = NewList(Symbol("concat"), l.Items[1], acc)
		} else {
			acc = NewList(Symbol("cons"), Quasiquote(elt), acc)
		}
	}
	return acc
}
