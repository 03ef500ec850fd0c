package types

// Env is one lexical scope frame. The root frame has no outer frame.
type Env struct {
	data  map[string]Value
	outer *Env
}

// NewEnv binds binds[i] to exprs[i]. A bind named "&" hands the following
// symbol a List of every remaining expression and ends binding. Binds with no
// matching expression are bound to nil.
func NewEnv(outer *Env, binds []Symbol, exprs []Value) *Env {
	env := &Env{map[string]Value{}, outer}
	for i, bind := range binds {
		if bind == "&" {
			if i+1 < len(binds) {
				rest := []Value{}
				if i < len(exprs) {
					rest = append(rest, exprs[i:]...)
				}
				env.data[string(binds[i+1])] = NewList(rest...)
			}
			break
		}

		if i < len(exprs) && exprs[i] != nil {
			env.data[string(bind)] = exprs[i]
		} else {
			env.data[string(bind)] = Nil
		}
	}

	return env
}

func (e *Env) Outer() *Env {
	return e.outer
}

// Set binds key in this frame only and returns value.
func (e *Env) Set(key Value, value Value) (Value, error) {
	k, err := MapKey(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = Nil
	}
	e.data[k] = value
	return value, nil
}

// Define binds a symbol name in this frame.
func (e *Env) Define(name string, value Value) {
	e.data[name] = value
}

// Find returns the nearest frame that binds key, or nil.
func (e *Env) Find(key Value) *Env {
	k, err := MapKey(key)
	if err != nil {
		return nil
	}
	for env := e; env != nil; env = env.outer {
		if _, ok := env.data[k]; ok {
			return env
		}
	}

	return nil
}

func (e *Env) Get(key Value) (Value, error) {
	env := e.Find(key)
	if env == nil {
		k, err := MapKey(key)
		if err != nil {
			return nil, err
		}
		return nil, NameErrorFor(k)
	}
	k, _ := MapKey(key)
	return env.data[k], nil
}
