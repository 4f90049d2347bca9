package hclspec

import (
	"fmt"
	"math/big"

	jsoniter "github.com/json-iterator/go"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConvertCtyValue turns an evaluated value into plain Go data. Whole
// numbers become int64, other numbers float64; collections go through a
// JSON intermediate.
func ConvertCtyValue(val cty.Value) (any, error) {
	if !val.IsWhollyKnown() {
		return nil, &ValueConversionError{Err: fmt.Errorf("value is not known")}
	}
	if val.IsNull() {
		return nil, nil
	}

	switch ty := val.Type(); {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if i64, acc := bf.Int64(); acc == big.Exact {
			return i64, nil
		}
		f64, _ := bf.Float64()
		return f64, nil
	}

	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, &ValueConversionError{Err: fmt.Errorf("failed to marshal %s to intermediary JSON: %w", val.Type().FriendlyName(), err)}
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ValueConversionError{Err: fmt.Errorf("failed to unmarshal intermediary JSON (%s): %w", val.Type().FriendlyName(), err)}
	}
	return out, nil
}
