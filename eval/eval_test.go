package eval

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/dustinboston/ensemble-sub006/types"
)

func newTestEnv(t *testing.T, opts ...Option) (*Env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	env, err := NewRootEnv(append([]Option{WithOutput(&out)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRootEnv: %v", err)
	}
	return env, &out
}

func mustRep(t *testing.T, env *Env, src string) string {
	t.Helper()
	got, err := Rep(src, env)
	if err != nil {
		t.Fatalf("Rep(%q): %v", src, err)
	}
	return got
}

func mustEval(t *testing.T, env *Env, src string) Value {
	t.Helper()
	form, err := Read(src)
	if err != nil {
		t.Fatalf("Read(%q): %v", src, err)
	}
	v, err := Eval(form, env)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

// Each case runs its inputs in order in a fresh environment; want is the
// printed result of the last one.
func TestRep(t *testing.T) {
	tests := []struct {
		name string
		srcs []string
		want string
	}{
		{"def", []string{"(def! y (+ 1 7))", "y"}, "8"},
		{"def returns value", []string{"(def! y (+ 1 7))"}, "8"},
		{"var alias", []string{"(var z 3)", "z"}, "3"},
		{"let vector body", []string{"(let* (a 5 b 6) [3 4 a [b 7] 8])"}, "[3 4 5 [6 7] 8]"},
		{"let sequential", []string{"(let (a 1 b (+ a 1)) b)"}, "2"},
		{"const with vector bindings", []string{"(const [a 2] (* a a))"}, "4"},
		{"quasiquote unquote", []string{"`(1 ~(+ 1 2) 3)"}, "(1 3 3)"},
		{"quasiquote splice", []string{"(def! xs (list 2 3))", "`[1 ~@xs 4]"}, "[1 2 3 4]"},
		{"quasiquote symbol", []string{"`a"}, "a"},
		{"quasiquoteexpand", []string{"(quasiquoteexpand a)"}, "(quote a)"},
		{"cons onto vector", []string{"(cons 1 [2 3])"}, "(1 2 3)"},
		{"try throw", []string{`(try* (throw "boom") (catch* e (str "caught:" e)))`}, `"caught:boom"`},
		{"try alias", []string{`(try (throw "x") (catch e e))`}, `"x"`},
		{"try no error", []string{"(try* 7 (catch* e 0))"}, "7"},
		{"try name error", []string{"(try* nope (catch* e (str e)))"}, `"'nope' not found"`},
		{"try map payload", []string{"(try* (throw {:a 1}) (catch* e e))"}, "{:a 1}"},
		{"macro", []string{"(defmacro! one (fn* () 1))", "(one)"}, "1"},
		{"quote", []string{"(quote (a b))"}, "(a b)"},
		{"quote reader macro", []string{"'(1 b)"}, "(1 b)"},
		{"if true", []string{"(if 0 1 2)"}, "1"},
		{"if empty string", []string{`(if "" 1 2)`}, "1"},
		{"if nil", []string{"(if nil 1 2)"}, "2"},
		{"if false no else", []string{"(if false 1)"}, "nil"},
		{"if atom holding false", []string{"(if (atom false) 1 2)"}, "1"},
		{"if deref atom holding false", []string{"(if @(atom false) 1 2)"}, "2"},
		{"do", []string{"(do 1 2 3)"}, "3"},
		{"empty do", []string{"(do)"}, "nil"},
		{"fn", []string{"((fn* (a b) (+ a b)) 2 3)"}, "5"},
		{"function alias", []string{"((function (a) a) 4)"}, "4"},
		{"arrow alias", []string{"((=> [a] (* a 2)) 4)"}, "8"},
		{"rest params", []string{"((fn* (a & more) more) 1 2 3)"}, "(2 3)"},
		{"empty rest", []string{"((fn* (a & more) more) 1)"}, "()"},
		{"missing param is nil", []string{"((fn* (a b) b) 1)"}, "nil"},
		{"closure", []string{"(def! adder (fn* (n) (fn* (x) (+ x n))))", "((adder 3) 4)"}, "7"},
		{"non-callable head", []string{"(1 2 3)"}, "1"},
		{"non-callable string head", []string{`("a" 1)`}, `"a"`},
		{"empty list", []string{"()"}, "()"},
		{"map values evaluated", []string{"{:a (+ 1 1)}"}, "{:a 2}"},
		{"vector evaluated", []string{"[(+ 1 1) (list)]"}, "[2 ()]"},
		{"node evaluated", []string{`<div {:id (+ 1 2)} "x" (+ 1 1)>`}, `<div {:id 3} "x" 2 >`},
		{"comparison not a node", []string{"(< 1 2)"}, "true"},
		{"not", []string{"(not nil)"}, "true"},
		{"cond", []string{"(cond false 1 nil 2 true 3)"}, "3"},
		{"cond fallthrough", []string{"(cond false 1)"}, "nil"},
		{"or", []string{"(or false nil 3)"}, "3"},
		{"or empty", []string{"(or)"}, "nil"},
		{"host language", []string{"*host-language*"}, `"go"`},
		{"eval builtin", []string{"(eval (list + 1 2))"}, "3"},
		{"eval uses root frame", []string{"(def! r 1)", "(let* (r 2) (eval 'r))"}, "1"},
		{"atoms", []string{"(def! a (atom 1))", "(swap! a + 2)", "@a"}, "3"},
		{"metadata", []string{"(meta (with-meta [1] {:a 1}))"}, "{:a 1}"},
		{"reader metadata", []string{"(meta ^{:a 1} [1])"}, "{:a 1}"},
		{"macroexpand", []string{"(defmacro! unless (fn* (c a b) (list 'if c b a)))", "(macroexpand (unless x 1 2))"}, "(if x 2 1)"},
		{"macroexpand non macro", []string{"(macroexpand (+ 1 2))"}, "(+ 1 2)"},
		{"string keys", []string{`(get {"a" 1} "a")`}, "1"},
		{"node symbol child", []string{"(let* (x 1) <p x>)"}, "<p 1 >"},
		{"node number child", []string{"<p 2>"}, "<p 2 >"},
		{"node attrs and symbol child", []string{"(def! name \"n\")", "<p {:id (+ 1 1)} name>"}, `<p {:id 2} "n" >`},
	}
	for _, tt := range tests {
		env, _ := newTestEnv(t)
		var got string
		for _, src := range tt.srcs {
			got = mustRep(t, env, src)
		}
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDefmacroCopiesFunction(t *testing.T) {
	env, _ := newTestEnv(t)
	mustRep(t, env, "(def! f (fn* () 1))")
	mustRep(t, env, "(defmacro! one f)")

	if got := mustRep(t, env, "(one)"); got != "1" {
		t.Fatalf("(one) = %s", got)
	}
	f, _ := env.Get(Symbol("f"))
	one, _ := env.Get(Symbol("one"))
	if f.(*Function).IsMacro {
		t.Errorf("original function was flagged as a macro")
	}
	if !one.(*Function).IsMacro {
		t.Errorf("defmacro! binding is not a macro")
	}
	if f == one {
		t.Errorf("defmacro! bound the original function")
	}
}

func TestTailCalls(t *testing.T) {
	env, _ := newTestEnv(t)
	mustRep(t, env, "(def! count-down (fn* (n acc) (if (= n 0) acc (count-down (- n 1) (+ acc 1)))))")
	if got := mustRep(t, env, "(count-down 20000 0)"); got != "20000" {
		t.Errorf("if tail position: got %s", got)
	}

	mustRep(t, env, "(def! spin (fn* (n) (do 1 (if (> n 0) (spin (- n 1)) :done))))")
	if got := mustRep(t, env, "(spin 20000)"); got != ":done" {
		t.Errorf("do tail position: got %s", got)
	}

	mustRep(t, env, "(def! lp (fn* (n) (let* (m (- n 1)) (if (> m 0) (lp m) m))))")
	if got := mustRep(t, env, "(lp 20000)"); got != "0" {
		t.Errorf("let* tail position: got %s", got)
	}
}

func TestLetShadowing(t *testing.T) {
	env, _ := newTestEnv(t)
	mustRep(t, env, "(def! x 1)")
	if got := mustRep(t, env, "(let* (x 2) x)"); got != "2" {
		t.Fatalf("inner x = %s", got)
	}
	if got := mustRep(t, env, "x"); got != "1" {
		t.Fatalf("outer x = %s after let*", got)
	}
	if got := mustRep(t, env, "(let* (x 3) (def! x 4))"); got != "4" {
		t.Fatalf("def! inside let* = %s", got)
	}
	if got := mustRep(t, env, "x"); got != "1" {
		t.Fatalf("def! inside let* leaked: x = %s", got)
	}
}

func TestQuasiquoteLaws(t *testing.T) {
	x := Number(1)
	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"symbol", Symbol("s"), NewList(Symbol("quote"), Symbol("s"))},
		{"map", NewHashMap(), NewList(Symbol("quote"), NewHashMap())},
		{"unquote", NewList(Symbol("unquote"), x), x},
		{"number", x, x},
		{"nil", Nil, Nil},
		{"vector", NewVector(x), NewList(Symbol("vec"), NewList(Symbol("cons"), x, NewList()))},
		{"empty list", NewList(), NewList()},
		{"splice", NewList(NewList(Symbol("splice-unquote"), Symbol("xs"))),
			NewList(Symbol("concat"), Symbol("xs"), NewList())},
	}
	for _, tt := range tests {
		if got := Quasiquote(tt.in); !Equal(got, tt.want) {
			t.Errorf("%s: Quasiquote = %s, want %s", tt.name, Print(got), Print(tt.want))
		}
	}
}

func TestMacroexpandConfluent(t *testing.T) {
	env, _ := newTestEnv(t)
	mustRep(t, env, "(defmacro! inner (fn* () 42))")
	mustRep(t, env, "(defmacro! outer (fn* () '(inner)))")

	form, _ := Read("(outer)")
	if !IsMacroCall(form, env) {
		t.Fatalf("(outer) is not a macro call")
	}
	got, err := Macroexpand(form, env)
	if err != nil {
		t.Fatal(err)
	}
	if IsMacroCall(got, env) {
		t.Fatalf("expansion stopped at a macro call: %s", Print(got))
	}
	if !Equal(got, Number(42)) {
		t.Fatalf("Macroexpand = %s", Print(got))
	}
	if v := mustEval(t, env, "(outer)"); !Equal(v, Number(42)) {
		t.Fatalf("(outer) = %s", Print(v))
	}
}

func TestTryNormalizesRaises(t *testing.T) {
	env, _ := newTestEnv(t)
	env.Define("host-fail", NewNative(func(args ...Value) (Value, error) {
		return nil, errors.New("host failure")
	}))
	env.Define("panic-value", NewNative(func(args ...Value) (Value, error) {
		panic(map[string]int{"code": 7})
	}))
	env.Define("panic-error", NewNative(func(args ...Value) (Value, error) {
		panic(errors.New("bad state"))
	}))
	env.Define("panic-raise", NewNative(func(args ...Value) (Value, error) {
		panic(TypeErrorf("raised"))
	}))

	tests := []struct {
		src     string
		name    string
		payload Value
	}{
		{"(try* (throw 5) (catch* e e))", ErrorName, Number(5)},
		{"(try* (host-fail) (catch* e e))", ErrorName, String("host failure")},
		{"(try* (panic-value) (catch* e e))", ErrorName, String(`{"code":7}`)},
		{"(try* (panic-error) (catch* e e))", ErrorName, String("bad state")},
		{"(try* (panic-raise) (catch* e e))", TypeError, String("raised")},
		{"(try* (nth [] 3) (catch* e e))", TypeError, String("nth: index out of bounds")},
		{"(try* missing (catch* e e))", NameError, String("'missing' not found")},
	}
	for _, tt := range tests {
		v := mustEval(t, env, tt.src)
		e, ok := v.(*Error)
		if !ok {
			t.Errorf("%s: caught %s, want an error value", tt.src, TypeName(v))
			continue
		}
		if e.Name != tt.name || !Equal(e.Payload, tt.payload) {
			t.Errorf("%s: caught %s %s, want %s %s", tt.src, e.Name, Print(e.Payload), tt.name, Print(tt.payload))
		}
	}
}

func TestTryWithoutCatchReraises(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := Rep("(try* (throw 1))", env)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("got %v, want a raised error", err)
	}
	if !Equal(e.Payload, Number(1)) {
		t.Fatalf("payload = %s", Print(e.Payload))
	}
}

func TestCatchBindingIsScoped(t *testing.T) {
	env, _ := newTestEnv(t)
	mustRep(t, env, `(try* (throw "x") (catch* caught caught))`)
	if _, err := Rep("caught", env); !errors.Is(err, &Error{Name: NameError}) {
		t.Fatalf("catch binding leaked: %v", err)
	}
}

func TestShapeErrors(t *testing.T) {
	srcs := []string{
		"(def! a)",
		"(def! 1 2)",
		"(let* (a) a)",
		"(let* a 1)",
		"(let* (1 2) 3)",
		"(quote)",
		"(quasiquote a b)",
		"(defmacro! m 1)",
		"(macroexpand)",
		"(if 1)",
		"(if 1 2 3 4)",
		"(fn* a 1)",
		"(fn* (a &) a)",
		"(fn* (& a b) a)",
		"(fn* (1) 1)",
		"(try* 1 2)",
		"(try* 1 (catch* 1 2))",
		"(try* 1 (finally e 2))",
		"(+ 1 :a)",
	}
	env, _ := newTestEnv(t)
	for _, src := range srcs {
		_, err := Rep(src, env)
		if !errors.Is(err, &Error{Name: TypeError}) {
			t.Errorf("%s: got %v, want a TypeError", src, err)
		}
	}
}

func TestUnboundSymbol(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := Rep("(undefined-fn 1)", env)
	if !errors.Is(err, &Error{Name: NameError}) {
		t.Fatalf("got %v, want a NameError", err)
	}
	if err.Error() != "'undefined-fn' not found" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestOutput(t *testing.T) {
	env, out := newTestEnv(t)
	mustRep(t, env, `(prn "a" 1)`)
	mustRep(t, env, `(println "a" 1)`)
	if got, want := out.String(), "\"a\" 1\na 1\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestArgv(t *testing.T) {
	env, _ := newTestEnv(t, WithArgs([]string{"a", "b"}))
	if got := mustRep(t, env, "*ARGV*"); got != `("a" "b")` {
		t.Fatalf("*ARGV* = %s", got)
	}

	env, _ = newTestEnv(t)
	if got := mustRep(t, env, "*ARGV*"); got != "()" {
		t.Fatalf("default *ARGV* = %s", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.ens")
	src := "; helpers\n(def! loaded 7)\n(def! twice (fn* (x) (* 2 x)))\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	env, _ := newTestEnv(t)
	if got := mustRep(t, env, `(load-file "`+path+`")`); got != "nil" {
		t.Fatalf("load-file = %s", got)
	}
	if got := mustRep(t, env, "(twice loaded)"); got != "14" {
		t.Fatalf("(twice loaded) = %s", got)
	}
}

func TestShapeErrorsNameTheFormUsed(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"(var a)", "var: wrong number of forms (1)"},
		{"(def! a)", "def!: wrong number of forms (1)"},
		{"(let (a) a)", "let: bindings must come in pairs; found 1"},
		{"(const a 1)", "const: bindings must be a list or vector"},
		{"(function a 1)", "function: parameters must be a list or vector"},
		{"(=> (1) 1)", "=>: parameter must be a symbol, got number"},
		{"(try 1 2)", "try: expected (catch* sym expr)"},
	}
	env, _ := newTestEnv(t)
	for _, tt := range tests {
		_, err := Rep(tt.src, env)
		if err == nil || err.Error() != tt.msg {
			t.Errorf("%s: got %v, want %q", tt.src, err, tt.msg)
		}
	}
}
