package eval

import (
	"fmt"
	"io"
	"os"

	"github.com/dustinboston/ensemble-sub006/core"
	. "github.com/dustinboston/ensemble-sub006/types"
)

// Functions defined in the language itself, evaluated into every root frame.
var prelude = []string{
	`(def! *host-language* "go")`,
	"(def! not (fn* (a) (if a false true)))",
	"(def! load-file (fn* (f) (eval (read-string (str \"(do \" (slurp f) \"\\nnil)\")))))",
	"(defmacro! cond (fn* (& xs) (if (> (count xs) 0) (list 'if (first xs) (if (> (count xs) 1) (nth xs 1) (throw \"odd number of forms to cond\")) (cons 'cond (rest (rest xs)))))))",
	"(defmacro! or (fn* (& xs) (if (empty? xs) nil (if (= 1 (count xs)) (first xs) (let* (v (gensym)) `(let* (~v ~(first xs)) (if ~v ~v (or ~@(rest xs)))))))))",
}

type options struct {
	out  io.Writer
	argv []string
}

type Option func(*options)

// WithOutput sends prn and println output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithArgs binds *ARGV* to args.
func WithArgs(args []string) Option {
	return func(o *options) {
		o.argv = args
	}
}

// NewRootEnv builds the global frame: the builtin registry, eval, *ARGV* and
// the prelude.
func NewRootEnv(opts ...Option) (*Env, error) {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	root := NewEnv(nil, nil, nil)
	for name, fn := range core.Namespace(o.out) {
		root.Define(name, fn)
	}

	root.Define("eval", NewNative(func(args ...Value) (Value, error) {
		if len(args) != 1 {
			return nil, TypeErrorf("eval expects 1 argument, got %d", len(args))
		}
		return Eval(args[0], root)
	}))

	argv := make([]Value, 0, len(o.argv))
	for _, a := range o.argv {
		argv = append(argv, String(a))
	}
	root.Define("*ARGV*", NewList(argv...))

	for _, src := range prelude {
		if _, err := Rep(src, root); err != nil {
			return nil, fmt.Errorf("prelude: %w", err)
		}
	}
	return root, nil
}
