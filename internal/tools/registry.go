package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the single source of truth for what a valid call to each named
// operation looks like. It is built once at process start and read-only after
// that; lookups are by name.
type Registry struct {
	contracts map[string]Contract
}

// NewRegistry builds the closed contract table for all supported operations.
func NewRegistry() *Registry {
	r := &Registry{contracts: make(map[string]Contract, 32)}
	add := func(contracts ...Contract) {
		for _, c := range contracts {
			c.Name = strings.TrimSpace(c.Name)
			r.contracts[c.Name] = c
		}
	}
	add(fileContracts()...)
	add(shellContracts()...)
	add(browserContracts()...)
	add(computerContract())
	add(signalContracts()...)
	return r
}

// Lookup returns the contract for name, if declared.
func (r *Registry) Lookup(name string) (Contract, bool) {
	if r == nil {
		return Contract{}, false
	}
	c, ok := r.contracts[strings.TrimSpace(name)]
	return c, ok
}

// Validate applies the named contract. Unknown names report a single
// violation; callers that want the silent-drop policy should use Lookup
// first. It never panics and never returns an error.
func (r *Registry) Validate(name string, args map[string]any) (map[string]any, []string) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, []string{fmt.Sprintf("unknown tool %q", strings.TrimSpace(name))}
	}
	return c.Validate(args)
}

// Snapshot returns all contracts sorted by name, for advertising the tool
// surface to the oracle.
func (r *Registry) Snapshot() []Contract {
	if r == nil {
		return nil
	}
	out := make([]Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the number of declared operations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.contracts)
}
