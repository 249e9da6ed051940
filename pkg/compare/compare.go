// Package compare joins two result sets on iden and reports the records
// whose rotacio differs between environments.
package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/sigab-tools/rotacio-diff/pkg/feature"
)

// Difference is one joined pair whose rotacio values differ.
type Difference struct {
	Iden        any
	RotacioPre  any
	RotacioDev  any
	ObjectIDPre int64
	ObjectIDDev int64
}

// Diff inner-joins pre and dev on iden and keeps pairs with different rotacio.
// Output follows pre order; a key present several times on both sides yields
// every combination, dev order within each pre record.
// Null idens match each other, as a pandas merge does.
func Diff(pre, dev feature.ResultSet) []Difference {
	devIndex := make(map[string][]int, len(dev))
	for i, rec := range dev {
		key := canonical(rec.Iden)
		devIndex[key] = append(devIndex[key], i)
	}

	diffs := []Difference{}
	for _, p := range pre {
		for _, j := range devIndex[canonical(p.Iden)] {
			d := dev[j]
			if Equal(p.Rotacio, d.Rotacio) {
				continue
			}
			diffs = append(diffs, Difference{
				Iden:        p.Iden,
				RotacioPre:  p.Rotacio,
				RotacioDev:  d.Rotacio,
				ObjectIDPre: p.ObjectID,
				ObjectIDDev: d.ObjectID,
			})
		}
	}

	return diffs
}

// Equal compares two attribute values. Numbers compare by value whatever
// their representation. A null is never equal to anything, itself included.
func Equal(a, b any) bool {
	if isNull(a) || isNull(b) {
		return false
	}
	return canonical(a) == canonical(b)
}

func isNull(v any) bool {
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return v == nil
}

// canonical returns a comparison key for an attribute value.
// Null has a key of its own so null idens join.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case json.Number:
		if r, ok := new(big.Rat).SetString(string(x)); ok {
			return "n:" + r.RatString()
		}
		return "s:" + string(x)
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(x) == nil {
			return fmt.Sprintf("f:%v", x)
		}
		return "n:" + r.RatString()
	case int:
		return "n:" + big.NewRat(int64(x), 1).RatString()
	case int64:
		return "n:" + big.NewRat(x, 1).RatString()
	case string:
		return "s:" + x
	case bool:
		return fmt.Sprintf("b:%t", x)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
