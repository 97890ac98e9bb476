package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/typespec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Validate performs a strict parity check over everything registered: base
// types and child types exist, key grammars compile and only name known
// value types, and defaults match their own grammar. All problems are
// collected into a single error.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.typeOrder {
		t := r.ValueTypes[name]
		if base := t.Base(); base != "" {
			if _, ok := r.ValueTypes[base]; !ok {
				errs = append(errs, fmt.Sprintf("value type '%s': base type '%s' is not registered", name, base))
			}
		}
	}

	for _, name := range r.structOrder {
		def := r.Structs[name]

		if def.Base != "" {
			if _, ok := r.Structs[def.Base]; !ok {
				errs = append(errs, fmt.Sprintf("struct '%s': base type '%s' is not registered", name, def.Base))
			} else if r.baseCycle(name) {
				errs = append(errs, fmt.Sprintf("struct '%s': base types form a cycle", name))
			}
		}

		for _, child := range def.Children {
			if _, ok := r.Structs[child]; !ok {
				errs = append(errs, fmt.Sprintf("struct '%s': child type '%s' is not registered", name, child))
			}
		}

		seen := map[string]bool{}
		for _, k := range def.Keys {
			if seen[k.Name] {
				errs = append(errs, fmt.Sprintf("struct '%s': key '%s' declared twice", name, k.Name))
			}
			seen[k.Name] = true
			errs = append(errs, r.validateKey(name, k)...)
		}

		if def.Basic != "" && !def.AnyKey && !def.Static {
			if _, ok := r.Key(name, def.Basic); !ok {
				errs = append(errs, fmt.Sprintf("struct '%s': basic key '%s' is not declared", name, def.Basic))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "struct_types", len(r.Structs), "value_types", len(r.ValueTypes))
	return nil
}

func (r *Registry) validateKey(structName string, k *KeyDef) []string {
	spec, err := k.Spec()
	if err != nil {
		return []string{fmt.Sprintf("struct '%s': %v", structName, err)}
	}

	var errs []string
	for _, typeName := range spec.TypeNames() {
		if typeName == value.TypeAll || typeName == value.TypeReference {
			continue
		}
		if _, ok := r.ValueTypes[typeName]; !ok {
			errs = append(errs, fmt.Sprintf("struct '%s', key '%s': type '%s' is not registered", structName, k.Name, typeName))
		}
	}
	if len(errs) > 0 || k.Default == nil {
		return errs
	}

	if _, ok := typespec.Verify(spec, k.Default, r); !ok {
		errs = append(errs, fmt.Sprintf("struct '%s', key '%s': default %s does not match type '%s'", structName, k.Name, k.Default.String(), k.Type))
	}
	return errs
}

func (r *Registry) baseCycle(name string) bool {
	seen := map[string]bool{}
	for name != "" {
		if seen[name] {
			return true
		}
		seen[name] = true
		def, ok := r.Structs[name]
		if !ok {
			return false
		}
		name = def.Base
	}
	return false
}
