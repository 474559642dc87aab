package sbon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalJSON maps each variant onto its JSON counterpart: null, number,
// boolean, string, array, object. Integers stay integral; map keys are
// emitted in encoding/json's sorted order since SBON maps carry no order.
func (d Dynamic) MarshalJSON() ([]byte, error) {
	switch d.Type() {
	case TypeNull:
		return []byte("null"), nil
	case TypeDouble:
		return json.Marshal(d.f)
	case TypeBool:
		return json.Marshal(d.b)
	case TypeInt:
		return strconv.AppendInt(nil, d.i, 10), nil
	case TypeString:
		return json.Marshal(d.s)
	case TypeList:
		if d.l == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(d.l)
	case TypeMap:
		if d.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(d.m)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, byte(d.typ))
	}
}

// UnmarshalJSON builds a Dynamic from JSON. Numbers become Int when they
// parse as a 64-bit integer and Double otherwise.
func (d *Dynamic) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v, err := fromJSONValue(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func fromJSONValue(raw any) (Dynamic, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Dynamic{}, err
		}
		return Double(f), nil
	case []any:
		list := make([]Dynamic, 0, len(v))
		for _, e := range v {
			d, err := fromJSONValue(e)
			if err != nil {
				return Dynamic{}, err
			}
			list = append(list, d)
		}
		return List(list...), nil
	case map[string]any:
		m := make(map[string]Dynamic, len(v))
		for k, e := range v {
			d, err := fromJSONValue(e)
			if err != nil {
				return Dynamic{}, err
			}
			m[k] = d
		}
		return Map(m), nil
	default:
		return Dynamic{}, fmt.Errorf("sbon: cannot convert %T to a dynamic value", raw)
	}
}
