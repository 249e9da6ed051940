// Package feature defines the attribute records compared between environments.
package feature

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attribute names requested from the feature service.
const (
	FieldIden     = "iden"
	FieldRotacio  = "rotacio"
	FieldObjectID = "objectid"
)

// OutFields is the field list sent with every query.
var OutFields = []string{FieldIden, FieldRotacio, FieldObjectID}

// Record is one feature's compared attributes.
// Iden and Rotacio keep the decoded JSON value (json.Number, string, bool or nil).
type Record struct {
	Iden     any
	Rotacio  any
	ObjectID int64
}

// ResultSet is every record fetched for one environment, in query order.
type ResultSet []Record

// Len returns the number of records.
func (rs ResultSet) Len() int {
	return len(rs)
}

// FromAttributes builds a Record from a feature attribute map.
// Field lookup ignores case since services often publish OBJECTID in upper case;
// an exact-case name wins over its case-folded variants.
func FromAttributes(attrs map[string]any) (Record, error) {
	var rec Record
	rec.Iden, _ = lookup(attrs, FieldIden)
	rec.Rotacio, _ = lookup(attrs, FieldRotacio)

	objectID, ok := lookup(attrs, FieldObjectID)
	if !ok {
		return Record{}, fmt.Errorf("attribute %q missing", FieldObjectID)
	}

	id, err := toInt64(objectID)
	if err != nil {
		return Record{}, fmt.Errorf("attribute %q: %w", FieldObjectID, err)
	}
	rec.ObjectID = id

	return rec, nil
}

// lookup returns attrs[name], or else the value of the smallest key equal to
// name under case folding.
func lookup(attrs map[string]any, name string) (any, bool) {
	if v, ok := attrs[name]; ok {
		return v, true
	}

	var found string
	var value any
	var ok bool
	for k, v := range attrs {
		if strings.EqualFold(k, name) && (!ok || k < found) {
			found, value, ok = k, v, true
		}
	}
	return value, ok
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
