package evaluator

import "github.com/shivasurya/pathfinder-pytype/internal/types"

// TypedDictKeyError is one missing-or-unknown key found while validating
// a dict literal against a TypedDict's declared Fields, per §4.5
// "TypedDict key validation: missing required keys = error".
type TypedDictKeyError struct {
	Key     string
	Missing bool // true: required key absent; false: key not declared on the TypedDict at all
}

// ValidateTypedDictLiteral checks keys (as evaluated from a dict
// literal's string-literal key positions) against td's declared Fields,
// returning every discrepancy. Extra keys not present on td are reported
// alongside missing required ones, since typeshed's TypedDict is a closed
// shape unless declared `total=False` per-field.
func ValidateTypedDictLiteral(td *types.Class, keys []string) []TypedDictKeyError {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	declared := make(map[string]types.Field, len(td.Fields))
	for _, f := range td.Fields {
		declared[f.Name] = f
	}

	var errs []TypedDictKeyError
	for _, f := range td.Fields {
		if f.Required && !present[f.Name] {
			errs = append(errs, TypedDictKeyError{Key: f.Name, Missing: true})
		}
	}
	for k := range present {
		if _, ok := declared[k]; !ok {
			errs = append(errs, TypedDictKeyError{Key: k, Missing: false})
		}
	}
	return errs
}

// GetResultType widens a TypedDict's `.get(key)` result to Optional,
// matching typeshed's own `TypedDict.get` overload shape (§4.5 "`.get`
// widens to Optional").
func GetResultType(td *types.Class, key string, none *types.Type) *types.Type {
	for _, f := range td.Fields {
		if f.Name == key {
			return types.NewUnion(f.Type, none)
		}
	}
	return types.NewUnion(types.Unknown(), none)
}
