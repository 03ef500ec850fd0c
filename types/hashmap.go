package types

import "strings"

// HashMap is an insertion-ordered map. Keys are Strings, Symbols or Keywords,
// stored under their canonical text (see MapKey).
type HashMap struct {
	keys []string
	vals map[string]Value
	Meta Value
}

func NewHashMap() *HashMap {
	return &HashMap{vals: map[string]Value{}, Meta: Nil}
}

// NewHashMapFromPairs builds a map from alternating keys and values.
func NewHashMapFromPairs(items []Value) (*HashMap, error) {
	if len(items)%2 != 0 {
		return nil, TypeErrorf("map literal has an odd number of forms")
	}
	m := NewHashMap()
	for i := 0; i < len(items); i += 2 {
		if err := m.Set(items[i], items[i+1]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MapKey returns the canonical text for a map or environment key. Keywords
// become ":name", Strings are wrapped in double quotes and Symbols are left
// as they are. A Symbol whose text looks like another kind's canonical form
// collides with it.
func MapKey(v Value) (string, error) {
	switch k := v.(type) {
	case Keyword:
		return ":" + string(k), nil
	case String:
		return `"` + string(k) + `"`, nil
	case Symbol:
		return string(k), nil
	}
	return "", TypeErrorf("invalid map key type: %s", TypeName(v))
}

// KeyValue turns canonical key text back into the key value.
func KeyValue(key string) Value {
	if strings.HasPrefix(key, ":") {
		return Keyword(key[1:])
	}
	if len(key) >= 2 && strings.HasPrefix(key, `"`) && strings.HasSuffix(key, `"`) {
		return String(key[1 : len(key)-1])
	}
	return Symbol(key)
}

func IsMapKey(v Value) bool {
	switch v.(type) {
	case Keyword, String, Symbol:
		return true
	}
	return false
}

func (m *HashMap) Len() int {
	return len(m.keys)
}

// Keys returns canonical keys in insertion order.
func (m *HashMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *HashMap) Set(key Value, v Value) error {
	k, err := MapKey(key)
	if err != nil {
		return err
	}
	m.SetKey(k, v)
	return nil
}

// SetKey stores v under an already canonical key.
func (m *HashMap) SetKey(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *HashMap) Get(key Value) (Value, bool, error) {
	k, err := MapKey(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := m.GetKey(k)
	return v, ok, nil
}

func (m *HashMap) GetKey(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *HashMap) Has(key Value) bool {
	k, err := MapKey(key)
	if err != nil {
		return false
	}
	_, ok := m.vals[k]
	return ok
}

func (m *HashMap) Delete(key Value) error {
	k, err := MapKey(key)
	if err != nil {
		return err
	}
	if _, ok := m.vals[k]; !ok {
		return nil
	}
	delete(m.vals, k)
	for i, existing := range m.keys {
		if existing == k {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Clone copies the key table but shares the values.
func (m *HashMap) Clone() *HashMap {
	c := &HashMap{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Value, len(m.vals)),
		Meta: m.Meta,
	}
	copy(c.keys, m.keys)
	for k, v := range m.vals {
		c.vals[k] = v
	}
	return c
}

// Copy deep-copies the entries. Metadata is carried over.
func (m *HashMap) Copy() *HashMap {
	c := &HashMap{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Value, len(m.vals)),
		Meta: m.Meta,
	}
	copy(c.keys, m.keys)
	for k, v := range m.vals {
		c.vals[k] = Copy(v)
	}
	return c
}
