// Package sbon implements the SBON binary encoding used by the Starbound
// engine to store typed dynamic values.
//
// SBON is a self-describing tagged format: a value is one type-tag byte
// followed by its payload. Integers use a big-endian base-128 varint,
// strings are length-prefixed UTF-8, and lists and maps nest recursively.
// The in-memory representation is [Dynamic], a closed tagged union built
// bottom-up during decode.
//
// Two container formats are layered on this package:
//   - [github.com/starfall/sbon/sbasset] reads SBAsset6 archives (.pak files)
//   - [github.com/starfall/sbon/sbvj] reads SBVJ01 versioned documents
//     (player and other save files)
//
// # Quick Start
//
// Decode a value from any reader:
//
//	r := sbon.NewReader(f)
//	v, err := r.Dynamic()
//	if err != nil {
//	    return err
//	}
//	if name, ok := v.AsString(); ok {
//	    fmt.Println(name)
//	}
//
// [Dynamic] also marshals to and from JSON, so a decoded tree can be handed
// directly to encoding/json.
package sbon
