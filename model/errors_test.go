package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKind_ThroughWrapping(t *testing.T) {
	base := RemoteError("compository/publish_zome", "zome trapped")
	wrapped := fmt.Errorf("publish zome %q: %w", "B", base)

	assert.True(t, IsKind(wrapped, KindRemote))
	assert.False(t, IsKind(wrapped, KindConnection))
	assert.Equal(t, KindRemote, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), `publish zome "B"`)
	assert.Contains(t, wrapped.Error(), "zome trapped")
}

func TestConnectionError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ConnectionError("127.0.0.1:8888", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Connection error (127.0.0.1:8888): conductor unreachable: dial tcp: connection refused", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindValidation))
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError("dna %q has no zomes", "P")
	assert.Equal(t, `Validation error: dna "P" has no zomes`, err.Error())
}

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := Timestamp{Secs: 1700000000, Nanos: 42}
	back := TimestampOf(ts.Time())
	assert.Equal(t, ts.Secs, back.Secs)
	assert.Equal(t, ts.Nanos, back.Nanos)
}
