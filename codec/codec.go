// Package codec is the single serialization point for conductor payloads.
//
// Everything that crosses the app interface (request envelopes, zome call
// inputs, zome call outputs) is CBOR with Core Deterministic Encoding
// (RFC 8949 §4.2), so identical records always produce identical bytes and
// therefore identical registry hashes.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Descriptor properties arrive from JSON/YAML as map[string]any;
		// decode any-typed targets the same way so they round-trip.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value used to delay decoding of
// envelope payloads until the caller knows the expected shape.
type RawMessage = cbor.RawMessage

// Diagnose returns the CBOR diagnostic notation for data. Used in debug logs
// and protocol mismatch messages.
func Diagnose(data []byte) string {
	s, err := cbor.Diagnose(data)
	if err != nil {
		return "<invalid cbor>"
	}
	return s
}
