package kbconfig

import (
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the populated field of a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a tagged sum for item/chunk metadata values, used in place of a
// bare interface{} so callers can switch on Kind rather than type-assert.
type Value struct {
	Kind ValueKind

	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

func StringValue(s string) Value            { return Value{Kind: KindString, str: s} }
func NumberValue(n float64) Value            { return Value{Kind: KindNumber, num: n} }
func BoolValue(b bool) Value                 { return Value{Kind: KindBool, b: b} }
func ListValue(items []Value) Value          { return Value{Kind: KindList, list: items} }
func MapValue(m map[string]Value) Value      { return Value{Kind: KindMap, m: m} }

func (v Value) String() (string, bool)            { return v.str, v.Kind == KindString }
func (v Value) Number() (float64, bool)            { return v.num, v.Kind == KindNumber }
func (v Value) Bool() (bool, bool)                 { return v.b, v.Kind == KindBool }
func (v Value) List() ([]Value, bool)              { return v.list, v.Kind == KindList }
func (v Value) Map() (map[string]Value, bool)      { return v.m, v.Kind == KindMap }

// MarshalJSON encodes the populated field directly, so metadata round-trips
// as plain JSON rather than a {"kind":...,"str":...} envelope.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("kbconfig: unknown value kind %d", v.Kind)
	}
}

// UnmarshalJSON infers Kind from the JSON token shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case bool:
		return BoolValue(t)
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, fromAny(item))
		}
		return ListValue(items)
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = fromAny(item)
		}
		return MapValue(m)
	default:
		return Value{Kind: KindString}
	}
}
