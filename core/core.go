// Package core is the builtin registry: named native functions merged into the
// root environment at startup.
package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dustinboston/ensemble-sub006/printer"
	"github.com/dustinboston/ensemble-sub006/reader"
	. "github.com/dustinboston/ensemble-sub006/types"
)

var ns = map[string]Native{
	"+": plus,
	"-": minus,
	"*": times,
	"/": div,

	// Comparisons
	"=":  equal,
	"<":  lt,
	"<=": lte,
	">":  gt,
	">=": gte,

	"throw": throw,

	// Predicates
	"nil?":        isNil,
	"true?":       isTrue,
	"false?":      isFalse,
	"symbol?":     is(func(v Value) bool { _, ok := v.(Symbol); return ok }),
	"keyword?":    is(func(v Value) bool { _, ok := v.(Keyword); return ok }),
	"number?":     is(func(v Value) bool { _, ok := v.(Number); return ok }),
	"string?":     is(func(v Value) bool { _, ok := v.(String); return ok }),
	"list?":       is(func(v Value) bool { _, ok := v.(*List); return ok }),
	"vector?":     is(func(v Value) bool { _, ok := v.(*Vector); return ok }),
	"map?":        is(func(v Value) bool { _, ok := v.(*HashMap); return ok }),
	"atom?":       is(func(v Value) bool { _, ok := v.(*Atom); return ok }),
	"sequential?": is(IsSequential),
	"fn?":         is(func(v Value) bool { f, ok := v.(*Function); return ok && !f.IsMacro }),
	"macro?":      is(func(v Value) bool { f, ok := v.(*Function); return ok && f.IsMacro }),

	"symbol":  symbol,
	"keyword": keyword,

	// Input
	"read-string": readString,
	"slurp":       slurp,

	// Output without side effects
	"pr-str": prStr,
	"str":    fStr,

	// Lists
	"list":   mkList,
	"vector": mkVector,
	"vec":    vec,
	"empty?": emptyQ,
	"count":  count,
	"cons":   cons,
	"concat": concat,
	"conj":   conj,
	"nth":    nth,
	"first":  first,
	"rest":   rest,
	"last":   last,
	"seq":    seq,
	"apply":  apply,
	"map":    mapFn,

	// Maps
	"hash-map":  hashMap,
	"assoc":     assoc,
	"dissoc":    dissoc,
	"get":       get,
	"contains?": contains,
	"keys":      keys,
	"vals":      vals,

	// Metadata
	"meta":      meta,
	"with-meta": withMeta,

	// Atoms
	"atom":   atom,
	"deref":  deref,
	"reset!": atomReset,
	"swap!":  atomSwap,

	"time-ms": timeMs,
	"gensym":  gensym,
}

// Namespace builds the registry once. prn and println write to out.
func Namespace(out io.Writer) map[string]*Function {
	if out == nil {
		out = os.Stdout
	}
	fns := make(map[string]*Function, len(ns)+2)
	for name, fn := range ns {
		fns[name] = NewNative(fn)
	}
	fns["prn"] = NewNative(func(args ...Value) (Value, error) {
		fmt.Fprintln(out, printer.PrintList(args, true, " "))
		return Nil, nil
	})
	fns["println"] = NewNative(func(args ...Value) (Value, error) {
		fmt.Fprintln(out, printer.PrintList(args, false, " "))
		return Nil, nil
	})
	return fns
}

func arity(name string, args []Value, n int) error {
	if len(args) != n {
		return TypeErrorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func numbers(name string, args []Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(Number)
		if !ok {
			return nil, TypeErrorf("arguments to %s must be numbers, got %s", name, TypeName(a))
		}
		out[i] = float64(n)
	}
	return out, nil
}

// Arithmetic
func plus(args ...Value) (Value, error) {
	xs, err := numbers("+", args)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, n := range xs {
		sum += n
	}
	return Number(sum), nil
}

func times(args ...Value) (Value, error) {
	xs, err := numbers("*", args)
	if err != nil {
		return nil, err
	}
	prod := 1.0
	for _, n := range xs {
		prod *= n
	}
	return Number(prod), nil
}

func minus(args ...Value) (Value, error) {
	xs, err := numbers("-", args)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, TypeErrorf("- expects at least 1 argument")
	}
	if len(xs) == 1 {
		return Number(-xs[0]), nil
	}
	acc := xs[0]
	for _, n := range xs[1:] {
		acc -= n
	}
	return Number(acc), nil
}

func div(args ...Value) (Value, error) {
	xs, err := numbers("/", args)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, TypeErrorf("/ expects at least 1 argument")
	}
	if len(xs) == 1 {
		return Number(1 / xs[0]), nil
	}
	acc := xs[0]
	for _, n := range xs[1:] {
		acc /= n
	}
	return Number(acc), nil
}

// Comparisons
func equal(args ...Value) (Value, error) {
	if err := arity("=", args, 2); err != nil {
		return nil, err
	}
	return Bool(Equal(args[0], args[1])), nil
}

// Expects two Number arguments; fails otherwise.
func prepNumbers(args []Value, op string) (float64, float64, error) {
	if err := arity(op, args, 2); err != nil {
		return 0, 0, err
	}
	xs, err := numbers(op, args)
	if err != nil {
		return 0, 0, err
	}
	return xs[0], xs[1], nil
}

func lt(args ...Value) (Value, error) {
	x, y, err := prepNumbers(args, "<")
	if err != nil {
		return nil, err
	}
	return Bool(x < y), nil
}

func lte(args ...Value) (Value, error) {
	x, y, err := prepNumbers(args, "<=")
	if err != nil {
		return nil, err
	}
	return Bool(x <= y), nil
}

func gt(args ...Value) (Value, error) {
	x, y, err := prepNumbers(args, ">")
	if err != nil {
		return nil, err
	}
	return Bool(x > y), nil
}

func gte(args ...Value) (Value, error) {
	x, y, err := prepNumbers(args, ">=")
	if err != nil {
		return nil, err
	}
	return Bool(x >= y), nil
}

func throw(args ...Value) (Value, error) {
	if err := arity("throw", args, 1); err != nil {
		return nil, err
	}
	return nil, Throw(args[0])
}

func is(pred func(Value) bool) Native {
	return func(args ...Value) (Value, error) {
		if len(args) != 1 {
			return nil, TypeErrorf("predicate expects 1 argument, got %d", len(args))
		}
		return Bool(pred(args[0])), nil
	}
}

func isNil(args ...Value) (Value, error) {
	if err := arity("nil?", args, 1); err != nil {
		return nil, err
	}
	return Bool(IsNil(args[0])), nil
}

func isTrue(args ...Value) (Value, error) {
	if err := arity("true?", args, 1); err != nil {
		return nil, err
	}
	return Bool(args[0] == True), nil
}

func isFalse(args ...Value) (Value, error) {
	if err := arity("false?", args, 1); err != nil {
		return nil, err
	}
	return Bool(args[0] == False), nil
}

func symbol(args ...Value) (Value, error) {
	if err := arity("symbol", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case String:
		return Symbol(a), nil
	case Symbol:
		return a, nil
	}
	return nil, TypeErrorf("symbol expects a string")
}

func keyword(args ...Value) (Value, error) {
	if err := arity("keyword", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case Keyword:
		return a, nil
	case String:
		return Keyword(strings.Trim(string(a), ":")), nil
	case Symbol:
		return Keyword(strings.Trim(string(a), ":")), nil
	}
	return nil, TypeErrorf("keyword expects a string, symbol or keyword")
}

func readString(args ...Value) (Value, error) {
	if len(args) != 1 {
		return nil, TypeErrorf("read-string expects a single string arg")
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, TypeErrorf("read-string expects a single string arg")
	}
	return reader.ReadStr(string(s))
}

func slurp(args ...Value) (Value, error) {
	if len(args) != 1 {
		return nil, TypeErrorf("slurp expects a single filename as a string")
	}
	filename, ok := args[0].(String)
	if !ok {
		return nil, TypeErrorf("slurp expects a single filename as a string")
	}
	contents, err := os.ReadFile(string(filename))
	if err != nil {
		return nil, fmt.Errorf("slurp failed to read the file: %w", err)
	}
	return String(contents), nil
}

func prStr(args ...Value) (Value, error) {
	return String(printer.PrintList(args, true, " ")), nil
}

func fStr(args ...Value) (Value, error) {
	return String(printer.PrintList(args, false, "")), nil
}

func timeMs(args ...Value) (Value, error) {
	return Number(time.Now().UnixMilli()), nil
}

// gensym returns a fresh symbol for macro hygiene, optionally with a prefix.
func gensym(args ...Value) (Value, error) {
	prefix := "G__"
	if len(args) > 0 {
		s, ok := args[0].(String)
		if !ok {
			return nil, TypeErrorf("gensym prefix must be a string")
		}
		prefix = string(s)
	}
	return Symbol(prefix + strings.ReplaceAll(uuid.New().String(), "-", "")), nil
}
