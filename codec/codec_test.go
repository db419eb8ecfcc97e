package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name   string   `cbor:"name"`
	Hashes []string `cbor:"hashes"`
}

func TestMarshal_Deterministic(t *testing.T) {
	a, err := Marshal(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	b, err := Marshal(map[string]any{"a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b, "map key order must not affect encoding")
}

func TestUnmarshal_AnyMapsAreStringKeyed(t *testing.T) {
	data, err := Marshal(map[string]any{"nested": map[string]any{"k": "v"}})
	require.NoError(t, err)

	var out any
	require.NoError(t, Unmarshal(data, &out))
	top, ok := out.(map[string]any)
	require.True(t, ok, "got %T", out)
	_, ok = top["nested"].(map[string]any)
	assert.True(t, ok, "nested map should decode as map[string]any")
}

func TestRawMessage_DelaysDecoding(t *testing.T) {
	inner, err := Marshal(sampleInput{Name: "z", Hashes: []string{"h1", "h2"}})
	require.NoError(t, err)

	type envelope struct {
		Type string     `cbor:"type"`
		Data RawMessage `cbor:"data"`
	}
	data, err := Marshal(envelope{Type: "zome_call", Data: inner})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, Unmarshal(data, &env))
	var got sampleInput
	require.NoError(t, Unmarshal(env.Data, &got))
	assert.Equal(t, []string{"h1", "h2"}, got.Hashes)
}

func TestDiagnose_Invalid(t *testing.T) {
	assert.Equal(t, "<invalid cbor>", Diagnose([]byte{0xff, 0xff}))
}
