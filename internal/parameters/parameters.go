// Package parameters holds the named input variables of a calculation.
package parameters

import (
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Set maps an input variable name to its value. Values are numbers, strings or fixed-size numeric tuples
// (slices). Names are case-sensitive.
type Set map[string]interface{}

// Merge returns a new Set holding every entry of base overlaid with every entry of overlay.
// Overlay wins on collisions. Neither argument is modified; values are copied shallowly.
func Merge(base Set, overlay Set) Set {
	merged := make(Set, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of s. Cloning a nil Set returns nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	return Merge(s, nil)
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the variable names in lexical order.
func (s Set) Names() []string {
	names := maps.Keys(s)
	slices.Sort(names)
	return names
}

// Float returns the named variable as a float64, or def if it is not set.
// It is an error for the variable to be set to something that is not a number.
func (s Set) Float(name string, def float64) (float64, error) {
	v, ok := s[name]
	if !ok {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def, errors.Errorf("%s must be a number, got %v", name, v)
	}
	return f, nil
}

// Int returns the named variable as an int, or def if it is not set.
// Floating point values with no fractional part (e.g. 2.0, as produced by JSON decoding) are accepted.
func (s Set) Int(name string, def int) (int, error) {
	f, err := s.Float(name, float64(def))
	if err != nil {
		return def, errors.Errorf("%s must be an integer, got %v", name, s[name])
	}
	i := int(f)
	if float64(i) != f {
		return def, errors.Errorf("%s must be an integer, got %v", name, s[name])
	}
	return i, nil
}

// Present returns those of names that are set in s, keeping the order of names.
func (s Set) Present(names ...string) []string {
	var present []string
	for _, name := range names {
		if s.Has(name) {
			present = append(present, name)
		}
	}
	return present
}

// Missing returns those of names that are not set in s, keeping the order of names.
func (s Set) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
