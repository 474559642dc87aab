package sbon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamic_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Dynamic
		want  string
	}{
		{"null", Null(), `null`},
		{"zero value", Dynamic{}, `null`},
		{"double", Double(1.5), `1.5`},
		{"int", Int(-42), `-42`},
		{"large int stays integral", Int(1 << 60), `1152921504606846976`},
		{"bool", Bool(true), `true`},
		{"string", String("hi"), `"hi"`},
		{"empty list", List(), `[]`},
		{"list", List(Int(1), Null(), String("x")), `[1,null,"x"]`},
		{"empty map", Map(nil), `{}`},
		{"map", Map(map[string]Dynamic{"b": Int(2), "a": Int(1)}), `{"a":1,"b":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDynamic_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var d Dynamic
	require.NoError(t, json.Unmarshal([]byte(`{"n":null,"i":7,"f":2.5,"s":"x","l":[1,true]}`), &d))

	want := Map(map[string]Dynamic{
		"n": Null(),
		"i": Int(7),
		"f": Double(2.5),
		"s": String("x"),
		"l": List(Int(1), Bool(true)),
	})
	assert.True(t, want.Equal(d), "got %#v", d)
}

func TestDynamic_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	orig := Map(map[string]Dynamic{
		"name":  String("save"),
		"stats": List(Int(1), Double(0.5), Bool(false), Null()),
		"meta":  Map(map[string]Dynamic{"nested": List(String("deep"))}),
	})

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Dynamic
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, orig.Equal(back))
}
