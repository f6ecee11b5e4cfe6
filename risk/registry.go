package risk

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a rule from its configured parameters.
type Factory func(p Params) (Rule, error)

var registry = make(map[string]Factory)

// Register makes a rule constructor available under name. The built-in
// rules register themselves at package init; callers may add their own
// before the engine is constructed.
func Register(name string, fn Factory) {
	registry[name] = fn
}

// New builds a single rule by registry name.
func New(name string, p Params) (Rule, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown risk rule %q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	return fn(p)
}

// Names lists the registered rule names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
