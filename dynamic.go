package sbon

import "fmt"

// Type identifies the variant held by a Dynamic. The numeric values are the
// wire type-tag bytes.
type Type byte

// Dynamic type tags as they appear on the wire.
const (
	TypeNull   Type = 1
	TypeDouble Type = 2
	TypeBool   Type = 3
	TypeInt    Type = 4
	TypeString Type = 5
	TypeList   Type = 6
	TypeMap    Type = 7
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// Dynamic is an immutable SBON value: one of null, double, bool, signed
// integer, string, list, or map. The zero value is the null value.
//
// A Dynamic owns its children structurally; lists and maps returned by
// accessors alias internal storage and must not be modified.
type Dynamic struct {
	typ Type
	f   float64
	i   int64
	b   bool
	s   string
	l   []Dynamic
	m   map[string]Dynamic
}

// Null returns the null value.
func Null() Dynamic {
	return Dynamic{typ: TypeNull}
}

// Double returns a 64-bit float value.
func Double(v float64) Dynamic {
	return Dynamic{typ: TypeDouble, f: v}
}

// Bool returns a boolean value.
func Bool(v bool) Dynamic {
	return Dynamic{typ: TypeBool, b: v}
}

// Int returns a 64-bit signed integer value.
func Int(v int64) Dynamic {
	return Dynamic{typ: TypeInt, i: v}
}

// String returns a string value.
func String(v string) Dynamic {
	return Dynamic{typ: TypeString, s: v}
}

// List returns a list value holding the given elements in order.
// The slice is retained; callers must not modify it afterwards.
func List(elems ...Dynamic) Dynamic {
	return Dynamic{typ: TypeList, l: elems}
}

// Map returns a map value. The map is retained; callers must not modify it
// afterwards.
func Map(m map[string]Dynamic) Dynamic {
	return Dynamic{typ: TypeMap, m: m}
}

// Type returns the variant held by d. The zero Dynamic reports TypeNull.
func (d Dynamic) Type() Type {
	if d.typ == 0 {
		return TypeNull
	}
	return d.typ
}

// IsNull reports whether d is the null value.
func (d Dynamic) IsNull() bool {
	return d.Type() == TypeNull
}

// AsDouble returns the float value. ok is false when d is not a double.
func (d Dynamic) AsDouble() (v float64, ok bool) {
	return d.f, d.typ == TypeDouble
}

// AsBool returns the boolean value. ok is false when d is not a bool.
func (d Dynamic) AsBool() (v bool, ok bool) {
	return d.b, d.typ == TypeBool
}

// AsInt returns the integer value. ok is false when d is not an integer.
func (d Dynamic) AsInt() (v int64, ok bool) {
	return d.i, d.typ == TypeInt
}

// AsString returns the string value. ok is false when d is not a string.
func (d Dynamic) AsString() (v string, ok bool) {
	return d.s, d.typ == TypeString
}

// AsList returns the list elements. ok is false when d is not a list.
// The returned slice aliases internal storage and must not be modified.
func (d Dynamic) AsList() (v []Dynamic, ok bool) {
	if d.typ != TypeList {
		return nil, false
	}
	return d.l, true
}

// AsMap returns the map entries. ok is false when d is not a map.
// The returned map aliases internal storage and must not be modified.
func (d Dynamic) AsMap() (v map[string]Dynamic, ok bool) {
	if d.typ != TypeMap {
		return nil, false
	}
	return d.m, true
}

// AsStringList returns the elements of a list whose members are all
// strings. ok is false when d is not a list or any element is not a string.
func (d Dynamic) AsStringList() (v []string, ok bool) {
	list, ok := d.AsList()
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Equal reports whether d and other hold the same value. Lists compare in
// order; maps compare as key/value sets.
func (d Dynamic) Equal(other Dynamic) bool {
	if d.Type() != other.Type() {
		return false
	}
	switch d.Type() {
	case TypeNull:
		return true
	case TypeDouble:
		return d.f == other.f
	case TypeBool:
		return d.b == other.b
	case TypeInt:
		return d.i == other.i
	case TypeString:
		return d.s == other.s
	case TypeList:
		if len(d.l) != len(other.l) {
			return false
		}
		for i := range d.l {
			if !d.l[i].Equal(other.l[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		if len(d.m) != len(other.m) {
			return false
		}
		for k, v := range d.m {
			ov, ok := other.m[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
