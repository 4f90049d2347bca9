// Package compare holds loose structural equality for free-form documents
// such as alert expressions, where one side was decoded from YAML or HCL
// and the other from JSON.
package compare

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/olusolaa/miq-converge/pkg/reflectutil"
)

// Equal reports whether desired and actual describe the same value. Maps
// and slices are compared element-wise, numbers by value regardless of
// their Go type, and booleans accept their string spelling.
func Equal(desired, actual any) bool {
	ok, err := equal(desired, actual)
	return err == nil && ok
}

func equal(expected, actual any) (bool, error) {
	if expected == nil && actual == nil {
		return true, nil
	}
	if expected == nil || actual == nil {
		return false, nil
	}

	expVal := reflectutil.DerefValue(reflect.ValueOf(expected))
	actVal := reflectutil.DerefValue(reflect.ValueOf(actual))
	if !expVal.IsValid() || !actVal.IsValid() {
		return expVal.IsValid() == actVal.IsValid(), nil
	}

	if expVal.Kind() == reflect.Map && actVal.Kind() == reflect.Map {
		return mapsEqual(expVal, actVal)
	}
	if isList(expVal) && isList(actVal) {
		return slicesEqual(expVal, actVal)
	}

	if expVal.Kind() == reflect.Bool || actVal.Kind() == reflect.Bool {
		expBool, expOk := toBool(expVal)
		actBool, actOk := toBool(actVal)
		if expOk && actOk {
			return expBool == actBool, nil
		}
		return false, nil
	}

	if reflectutil.IsNumberOrNumericString(expVal) && reflectutil.IsNumberOrNumericString(actVal) &&
		(reflectutil.IsNumber(expVal) || reflectutil.IsNumber(actVal)) {
		expFloat, expOk := reflectutil.ToFloat64(expVal)
		actFloat, actOk := reflectutil.ToFloat64(actVal)
		if expOk && actOk {
			const tolerance = 1e-9
			diff := expFloat - actFloat
			return diff < tolerance && diff > -tolerance, nil
		}
	}

	if expVal.Kind() == reflect.String && actVal.Kind() == reflect.String {
		return expVal.String() == actVal.String(), nil
	}

	if expVal.Type() == actVal.Type() && expVal.Type().Comparable() {
		return expVal.Interface() == actVal.Interface(), nil
	}
	if expVal.Type() == actVal.Type() {
		return cmp.Equal(expVal.Interface(), actVal.Interface(), cmpopts.EquateEmpty()), nil
	}
	return false, fmt.Errorf("cannot compare %s with %s", expVal.Type(), actVal.Type())
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func mapsEqual(expMap, actMap reflect.Value) (bool, error) {
	if expMap.Len() != actMap.Len() {
		return false, nil
	}
	actByKey := make(map[string]reflect.Value, actMap.Len())
	iter := actMap.MapRange()
	for iter.Next() {
		actByKey[fmt.Sprint(iter.Key().Interface())] = iter.Value()
	}

	iter = expMap.MapRange()
	for iter.Next() {
		key := fmt.Sprint(iter.Key().Interface())
		actV, ok := actByKey[key]
		if !ok {
			return false, nil
		}
		same, err := equal(iter.Value().Interface(), actV.Interface())
		if err != nil {
			return false, fmt.Errorf("key %q: %w", key, err)
		}
		if !same {
			return false, nil
		}
	}
	return true, nil
}

func slicesEqual(exp, act reflect.Value) (bool, error) {
	if exp.Len() != act.Len() {
		return false, nil
	}
	for i := 0; i < exp.Len(); i++ {
		same, err := equal(exp.Index(i).Interface(), act.Index(i).Interface())
		if err != nil {
			return false, fmt.Errorf("index %d: %w", i, err)
		}
		if !same {
			return false, nil
		}
	}
	return true, nil
}

func toBool(v reflect.Value) (bool, bool) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.String:
		b, err := strconv.ParseBool(v.String())
		return b, err == nil
	}
	return false, false
}

// DropNulls returns a shallow copy of m without nil values. A nil map
// stays nil.
func DropNulls(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// DifferingKeys lists, sorted, the keys whose values are not Equal between
// desired and actual. Keys missing on one side count as differing.
func DifferingKeys(desired, actual map[string]any) []string {
	keys := make(map[string]struct{}, len(desired)+len(actual))
	for k := range desired {
		keys[k] = struct{}{}
	}
	for k := range actual {
		keys[k] = struct{}{}
	}

	var out []string
	for k := range keys {
		d, dOk := desired[k]
		a, aOk := actual[k]
		if dOk != aOk || !Equal(d, a) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Missing returns the members of want that are absent from have, in the
// order of want.
func Missing(want []string, have map[string]struct{}) []string {
	var out []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}
