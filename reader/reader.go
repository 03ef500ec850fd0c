package reader

import (
	"regexp"
	"strconv"
	"strings"

	. "github.com/dustinboston/ensemble-sub006/types"
)

var (
	tokenRe = regexp.MustCompile(
		`[\s,]*(~@|[\[\]{}()'` + "`" + `~^@]|<[A-Za-z][^\s\[\]{}()<>'"` + "`" + `,;]*|"(?:\\.|[^\\"])*"?|;.*|//.*|[^\s\[\]{}('"` + "`" + `,;)]*)`)
	numberRe   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	stringRe   = regexp.MustCompile(`^"(?:\\.|[^\\"])*"$`)
	nodeOpenRe = regexp.MustCompile(`^<[A-Za-z]`)
	escapeRe   = regexp.MustCompile(`\\(.)`)
)

type MalReader struct {
	tokens []string
	index  int
}

func NewReader(tokens []string) *MalReader {
	return &MalReader{tokens, 0}
}

func (r *MalReader) Next() (string, bool) {
	t, ok := r.Peek()
	if !ok {
		return t, false
	}

	r.index++
	return t, true
}

func (r *MalReader) Peek() (string, bool) {
	if r.index >= len(r.tokens) {
		return "EOF", false
	}
	return r.tokens[r.index], true
}

// splitTail breaks the current token in two before its last n bytes.
func (r *MalReader) splitTail(n int) {
	t := r.tokens[r.index]
	cut := len(t) - n
	tokens := make([]string, 0, len(r.tokens)+1)
	tokens = append(tokens, r.tokens[:r.index]...)
	tokens = append(tokens, t[:cut], t[cut:])
	r.tokens = append(tokens, r.tokens[r.index+1:]...)
}

// Tokenize splits source text into tokens. Whitespace, commas and comments are
// dropped. A node literal opens with a single "<tag" token.
func Tokenize(input string) []string {
	t := make([]string, 0, 16)
	for _, m := range tokenRe.FindAllStringSubmatch(input, -1) {
		tok := m[1]
		if tok == "" || strings.HasPrefix(tok, ";") || strings.HasPrefix(tok, "//") {
			continue
		}
		t = append(t, tok)
	}
	return t
}

// ReadStr reads the first form in input. Empty input reads as nil.
func ReadStr(input string) (Value, error) {
	tokens := Tokenize(input)
	if len(tokens) == 0 {
		return Nil, nil
	}
	return ReadForm(NewReader(tokens))
}

func ReadForm(r *MalReader) (Value, error) {
	t, ok := r.Peek()
	if !ok {
		return nil, ReadErrorf("expected form, got EOF")
	}

	switch t {
	case "'":
		return nextWrapped(r, "quote")
	case "`":
		return nextWrapped(r, "quasiquote")
	case "~":
		return nextWrapped(r, "unquote")
	case "~@":
		return nextWrapped(r, "splice-unquote")
	case "@":
		return nextWrapped(r, "deref")
	case "^":
		return readWithMeta(r)
	case "(":
		return readSequence(r, ")")
	case "[":
		return readSequence(r, "]")
	case "{":
		return readSequence(r, "}")
	case ")", "]", "}":
		return nil, ReadErrorf("unexpected '%s'", t)
	}

	if nodeOpenRe.MatchString(t) {
		return readSequence(r, ">")
	}
	return readAtom(r)
}

func nextWrapped(r *MalReader, wrapper Symbol) (Value, error) {
	r.Next()
	next, err := ReadForm(r)
	if err != nil {
		return nil, err
	}

	return NewList(wrapper, next), nil
}

// ^meta target reads as (with-meta target meta).
func readWithMeta(r *MalReader) (Value, error) {
	r.Next()
	meta, err := ReadForm(r)
	if err != nil {
		return nil, err
	}
	target, err := ReadForm(r)
	if err != nil {
		return nil, err
	}
	return NewList(Symbol("with-meta"), target, meta), nil
}

func readSequence(r *MalReader, end string) (Value, error) {
	open, _ := r.Next() // Skip the opening token.
	ret := []Value{}
	for {
		t, ok := r.Peek()
		if !ok {
			return nil, ReadErrorf("expected '%s', got EOF", end)
		}
		if t == end {
			break
		}
		if end == ">" && len(t) > 1 && strings.HasSuffix(t, ">") && t[0] != '"' {
			// A bare run swallows the node closer: "x>" is x followed by >.
			r.splitTail(1)
			continue
		}
		f, err := ReadForm(r)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	r.Next() // Skip over the closer.

	switch end {
	case "]":
		return NewVector(ret...), nil
	case "}":
		return readMap(ret)
	case ">":
		return readNode(Symbol(open[1:]), ret), nil
	}
	return NewList(ret...), nil
}

func readMap(forms []Value) (Value, error) {
	if len(forms)%2 != 0 {
		return nil, ReadErrorf("map literal has an odd number of forms")
	}
	m := NewHashMap()
	for i := 0; i < len(forms); i += 2 {
		if !IsMapKey(forms[i]) {
			return nil, ReadErrorf("invalid map key type: %s", TypeName(forms[i]))
		}
		_ = m.Set(forms[i], forms[i+1])
	}
	return m, nil
}

// An optional map right after the tag holds the attributes; everything else is
// a child.
func readNode(tag Symbol, forms []Value) Value {
	if len(forms) > 0 {
		if attrs, ok := forms[0].(*HashMap); ok {
			return NewNode(tag, attrs, forms[1:])
		}
	}
	return NewNode(tag, nil, forms)
}

func readAtom(r *MalReader) (Value, error) {
	t, ok := r.Next()
	if !ok {
		return nil, ReadErrorf("expected atom, got EOF")
	}

	switch {
	case t == "nil" || t == "null":
		return Nil, nil
	case t == "true":
		return True, nil
	case t == "false":
		return False, nil
	case numberRe.MatchString(t):
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, ReadErrorf("badly formatted number: %s", t)
		}
		return Number(n), nil
	case stringRe.MatchString(t):
		return String(unescape(t)), nil
	case t[0] == '"':
		return nil, ReadErrorf("expected '\"', got EOF")
	case strings.HasPrefix(t, ":") || strings.HasSuffix(t, ":"):
		return Keyword(strings.Trim(t, ":")), nil
	}
	return Symbol(t), nil
}

func unescape(token string) string {
	return escapeRe.ReplaceAllStringFunc(token[1:len(token)-1], func(s string) string {
		if s[1] == 'n' {
			return "\n"
		}
		return s[1:]
	})
}
