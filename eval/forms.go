package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	. "github.com/dustinboston/ensemble-sub006/types"
)

func assertCount(list *List, form string, min, max int) error {
	n := len(list.Items)
	if n < min || (max >= 0 && n > max) {
		return TypeErrorf("%s: wrong number of forms (%d)", form, n-1)
	}
	return nil
}

// formName is the head symbol as written, so messages name the alias used.
func formName(list *List) string {
	sym, _ := list.Items[0].(Symbol)
	return string(sym)
}

func assertKey(v Value, form string) error {
	if !IsMapKey(v) {
		return TypeErrorf("%s: %s cannot be bound", form, TypeName(v))
	}
	return nil
}

func evalDef(list *List, env *Env) (step, error) {
	form := formName(list)
	if err := assertCount(list, form, 3, 3); err != nil {
		return step{}, err
	}
	if err := assertKey(list.Items[1], form); err != nil {
		return step{}, err
	}

	evald, err := Eval(list.Items[2], env)
	if err != nil {
		return step{}, err
	}
	slog.Debug("define", slog.String("name", Print(list.Items[1])))
	v, err := env.Set(list.Items[1], evald)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

func evalLet(list *List, env *Env) (step, error) {
	form := formName(list)
	if err := assertCount(list, form, 3, 3); err != nil {
		return step{}, err
	}
	bindings, ok := Items(list.Items[1])
	if !ok {
		return step{}, TypeErrorf("%s: bindings must be a list or vector", form)
	}
	if len(bindings)%2 != 0 {
		return step{}, TypeErrorf("%s: bindings must come in pairs; found %d", form, len(bindings))
	}
	for i := 0; i < len(bindings); i += 2 {
		if err := assertKey(bindings[i], form); err != nil {
			return step{}, err
		}
	}

	letEnv := NewEnv(env, nil, nil)
	for i := 0; i < len(bindings); i += 2 {
		evald, err := Eval(bindings[i+1], letEnv)
		if err != nil {
			return step{}, err
		}
		if _, err := letEnv.Set(bindings[i], evald); err != nil {
			return step{}, err
		}
	}
	return next(list.Items[2], letEnv)
}

func evalQuote(list *List) (step, error) {
	if err := assertCount(list, "quote", 2, 2); err != nil {
		return step{}, err
	}
	return done(list.Items[1])
}

func evalQuasiquoteExpand(list *List) (step, error) {
	if err := assertCount(list, "quasiquoteexpand", 2, 2); err != nil {
		return step{}, err
	}
	return done(Quasiquote(list.Items[1]))
}

func evalQuasiquote(list *List, env *Env) (step, error) {
	if err := assertCount(list, "quasiquote", 2, 2); err != nil {
		return step{}, err
	}
	return next(Quasiquote(list.Items[1]), env)
}

// The macro is a flagged copy, so the function value it was built from stays
// an ordinary function.
func evalDefmacro(list *List, env *Env) (step, error) {
	if err := assertCount(list, "defmacro!", 3, 3); err != nil {
		return step{}, err
	}
	if err := assertKey(list.Items[1], "defmacro!"); err != nil {
		return step{}, err
	}

	evald, err := Eval(list.Items[2], env)
	if err != nil {
		return step{}, err
	}
	f, ok := evald.(*Function)
	if !ok {
		return step{}, TypeErrorf("defmacro!: expected a function, got %s", TypeName(evald))
	}

	mac := Copy(f).(*Function)
	mac.IsMacro = true
	slog.Debug("define macro", slog.String("name", Print(list.Items[1])))
	v, err := env.Set(list.Items[1], mac)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

func evalMacroexpand(list *List, env *Env) (step, error) {
	if err := assertCount(list, "macroexpand", 2, 2); err != nil {
		return step{}, err
	}
	v, err := Macroexpand(list.Items[1], env)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

func evalDo(list *List, env *Env) (step, error) {
	if err := assertCount(list, "do", 1, -1); err != nil {
		return step{}, err
	}
	if len(list.Items) == 1 {
		return done(Nil)
	}

	last := len(list.Items) - 1
	if _, err := evalList(list.Items[1:last], env); err != nil {
		return step{}, err
	}
	return next(list.Items[last], env)
}

func evalIf(list *List, env *Env) (step, error) {
	if err := assertCount(list, "if", 3, 4); err != nil {
		return step{}, err
	}

	cond, err := Eval(list.Items[1], env)
	if err != nil {
		return step{}, err
	}
	if Truthy(cond) {
		return next(list.Items[2], env)
	}
	if len(list.Items) == 4 {
		return next(list.Items[3], env)
	}
	return done(Nil)
}

func evalFn(list *List, env *Env) (step, error) {
	form := formName(list)
	if err := assertCount(list, form, 3, 3); err != nil {
		return step{}, err
	}
	raw, ok := Items(list.Items[1])
	if !ok {
		return step{}, TypeErrorf("%s: parameters must be a list or vector", form)
	}

	params := make([]Symbol, 0, len(raw))
	for i, p := range raw {
		sym, ok := p.(Symbol)
		if !ok {
			return step{}, TypeErrorf("%s: parameter must be a symbol, got %s", form, TypeName(p))
		}
		if sym == "&" {
			if i != len(raw)-2 {
				return step{}, TypeErrorf("%s: exactly 1 symbol must follow &; found %d", form, len(raw)-i-1)
			}
			if _, ok := raw[i+1].(Symbol); !ok {
				return step{}, TypeErrorf("%s: rest parameter must be a symbol", form)
			}
		}
		params = append(params, sym)
	}

	c := &Closure{Body: list.Items[2], Env: env, Params: params}
	f := &Function{Closure: c, Meta: Nil}
	f.Fn = func(args ...Value) (Value, error) {
		return Eval(c.Body, NewEnv(c.Env, c.Params, args))
	}
	return done(f)
}

// Applying a value that is not a function yields the value itself.
func evalApply(list *List, env *Env) (step, error) {
	evald, err := evalAst(list, env)
	if err != nil {
		return step{}, err
	}
	items := evald.(*List).Items
	f, ok := items[0].(*Function)
	if !ok {
		return done(items[0])
	}

	args := items[1:]
	if f.Closure != nil {
		return next(f.Closure.Body, NewEnv(f.Closure.Env, f.Closure.Params, args))
	}
	v, err := f.Apply(args...)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

func evalTry(list *List, env *Env) (step, error) {
	form := formName(list)
	if err := assertCount(list, form, 2, 3); err != nil {
		return step{}, err
	}
	var (
		sym     Value
		handler Value
	)
	if len(list.Items) == 3 {
		clause, ok := list.Items[2].(*List)
		if !ok || len(clause.Items) != 3 || !(StartsWith(clause, "catch*") || StartsWith(clause, "catch")) {
			return step{}, TypeErrorf("%s: expected (catch* sym expr)", form)
		}
		if _, ok := clause.Items[1].(Symbol); !ok {
			return step{}, TypeErrorf("%s: catch binding must be a symbol", form)
		}
		sym, handler = clause.Items[1], clause.Items[2]
	}

	v, err := protect(list.Items[1], env)
	if err == nil {
		return done(v)
	}
	if handler == nil {
		return step{}, err
	}

	caught := normalize(err)
	slog.Debug("caught error", slog.String("name", caught.Name), slog.String("message", caught.Error()))
	catchEnv := NewEnv(env, []Symbol{sym.(Symbol)}, []Value{caught})
	v, err = Eval(handler, catchEnv)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

// panicked carries a value recovered while evaluating a try* body.
type panicked struct {
	value interface{}
}

func (p *panicked) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func protect(ast Value, env *Env) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &panicked{value: r}
		}
	}()
	return Eval(ast, env)
}

// normalize folds everything a try* body can raise into an *Error.
func normalize(err error) *Error {
	var p *panicked
	if errors.As(err, &p) {
		switch r := p.value.(type) {
		case *Error:
			return r
		case error:
			return NewError(String(r.Error()))
		}
		if b, jerr := json.Marshal(p.value); jerr == nil {
			return NewError(String(b))
		}
		return NewError(String(fmt.Sprintf("%v", p.value)))
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(String(err.Error()))
}
