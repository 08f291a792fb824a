// Package rules holds the device-type rule registry: which cable functions
// a device type needs and which consumables each installed unit brings.
// A Registry is built once at startup and never mutated afterwards.
package rules

import (
	"slices"

	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// Material is a consumable required per installed device.
type Material struct {
	Name    string
	Unit    string
	PerUnit float64
}

// Requirements describe what one device type needs.
type Requirements struct {
	Name                 string
	CableFunctions       []domain.CableFunction
	Materials            []Material
	IsCamera             bool
	RequiresAccessory    bool
	RequiresViewingDepth bool
}

// Rule binds a set of type-name aliases to their requirements.
type Rule struct {
	Aliases []string
	Requirements
}

// Registry resolves device-type names to requirements by normalized alias.
type Registry struct {
	byAlias map[string]Requirements
}

// NewRegistry indexes rules by every normalized alias. Later rules do not
// override earlier ones for a shared alias.
func NewRegistry(rules []Rule) *Registry {
	r := &Registry{byAlias: make(map[string]Requirements)}
	for _, rule := range rules {
		req := rule.Requirements
		req.CableFunctions = slices.Clone(req.CableFunctions)
		req.Materials = slices.Clone(req.Materials)
		for _, alias := range append([]string{rule.Name}, rule.Aliases...) {
			key := textkey.Key(alias)
			if key == "" {
				continue
			}
			if _, taken := r.byAlias[key]; !taken {
				r.byAlias[key] = req
			}
		}
	}
	return r
}

// Default returns a registry holding the built-in rule table.
func Default() *Registry {
	return NewRegistry(DefaultRules)
}

// Lookup returns the requirements for a device-type name. The returned
// value is a copy.
func (r *Registry) Lookup(typeName string) (Requirements, bool) {
	if r == nil {
		return Requirements{}, false
	}
	req, ok := r.byAlias[textkey.Key(typeName)]
	if !ok {
		return Requirements{}, false
	}
	req.CableFunctions = slices.Clone(req.CableFunctions)
	req.Materials = slices.Clone(req.Materials)
	return req, true
}

// CableFunctions returns the cable functions a type requires. Unknown types
// require both signal and low-voltage selections to be made explicitly.
func (r *Registry) CableFunctions(typeName string) []domain.CableFunction {
	if req, ok := r.Lookup(typeName); ok {
		return req.CableFunctions
	}
	return []domain.CableFunction{domain.CableSignal, domain.CableLowVoltage}
}

// Len reports the number of indexed aliases.
func (r *Registry) Len() int { return len(r.byAlias) }
