package printer

import (
	"strconv"
	"strings"

	"github.com/dustinboston/ensemble-sub006/types"
)

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// PrintStr renders a value as text. With readable set, strings are quoted and
// escaped so the result reads back as the same value.
func PrintStr(di types.Value, readable bool) string {
	switch d := di.(type) {
	case types.NilType:
		return "nil"

	case types.Boolean:
		return strconv.FormatBool(bool(d))

	case types.Number:
		return strconv.FormatFloat(float64(d), 'f', -1, 64)

	case types.String:
		if readable {
			return `"` + escaper.Replace(string(d)) + `"`
		}
		return string(d)

	case types.Keyword:
		return ":" + string(d)

	case types.Symbol:
		return string(d)

	case *types.List:
		return "(" + PrintList(d.Items, readable, " ") + ")"

	case *types.Vector:
		return "[" + PrintList(d.Items, readable, " ") + "]"

	case *types.HashMap:
		return "{" + printEntries(d, readable) + "}"

	case *types.Node:
		parts := []string{"<" + string(d.Tag)}
		if d.Attrs.Len() > 0 {
			parts = append(parts, "{"+printEntries(d.Attrs, readable)+"}")
		}
		if len(d.Children) > 0 {
			parts = append(parts, PrintList(d.Children, readable, " "))
		}
		return strings.Join(parts, " ") + " >"

	case *types.Function:
		if d.IsMacro {
			return "#<macro>"
		}
		return "#<fn>"

	case *types.Atom:
		return "(atom " + PrintStr(d.Ref, readable) + ")"

	case *types.Error:
		return PrintStr(d.Payload, readable)

	default:
		panic(types.TypeErrorf("unmatched value %T", di))
	}
}

// PrintList renders each value and joins them with sep.
func PrintList(values []types.Value, readable bool, sep string) string {
	outs := make([]string, 0, len(values))
	for _, v := range values {
		outs = append(outs, PrintStr(v, readable))
	}
	return strings.Join(outs, sep)
}

func printEntries(m *types.HashMap, readable bool) string {
	outs := make([]string, 0, 2*m.Len())
	for _, k := range m.Keys() {
		v, _ := m.GetKey(k)
		outs = append(outs, PrintStr(types.KeyValue(k), readable), PrintStr(v, readable))
	}
	return strings.Join(outs, " ")
}
