package media

import (
	"strings"
)

// Arg is one filter option. An empty Key makes it positional.
type Arg struct {
	Key   string
	Value string
}

// Filter is a single ffmpeg filter with its options.
type Filter struct {
	Name string
	Args []Arg
}

// NewFilter creates a filter with positional options.
func NewFilter(name string, positional ...string) Filter {
	f := Filter{Name: name}
	for _, v := range positional {
		f.Args = append(f.Args, Arg{Value: v})
	}
	return f
}

// With appends a key=value option.
func (f Filter) With(key, value string) Filter {
	f.Args = append(append([]Arg(nil), f.Args...), Arg{Key: key, Value: value})
	return f
}

// String renders name=opt1:opt2:key=value.
func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		v := quote(a.Value)
		if a.Key != "" {
			v = a.Key + "=" + v
		}
		parts[i] = v
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain is a linear run of filters between labeled pads.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// String renders [in]f1,f2[out].
func (c Chain) String() string {
	var b strings.Builder
	for _, in := range c.Inputs {
		b.WriteString("[" + in + "]")
	}
	for i, f := range c.Filters {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(f.String())
	}
	for _, out := range c.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// Graph is a filter graph made of chains.
type Graph struct {
	Chains []Chain
}

// Add appends a chain and returns the graph for chaining calls.
func (g *Graph) Add(inputs, outputs []string, filters ...Filter) *Graph {
	g.Chains = append(g.Chains, Chain{Inputs: inputs, Filters: filters, Outputs: outputs})
	return g
}

// String renders chains separated by ';'.
func (g *Graph) String() string {
	parts := make([]string, len(g.Chains))
	for i, c := range g.Chains {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

// Pads is shorthand for a list of pad labels.
func Pads(labels ...string) []string { return labels }

// quote leaves option values made of safe characters alone and wraps
// anything else in single quotes, escaping quotes and backslashes.
func quote(v string) string {
	safe := true
	for _, r := range v {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("._-+/()*", r)) {
			safe = false
			break
		}
	}
	if safe {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `'\''`)
	return "'" + r.Replace(v) + "'"
}
