package common

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate_ValidUUID(t *testing.T) {
	id := ID("550e8400-e29b-41d4-a716-446655440000")
	assert.NoError(t, id.Validate())
}

func TestID_Validate_EmptyString(t *testing.T) {
	err := ID("").Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestID_Validate_InvalidFormat(t *testing.T) {
	err := ID("not-a-uuid").Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID format")
}

func TestNewID_GeneratesValidUUID(t *testing.T) {
	assert.NoError(t, NewID().Validate())
}

func TestGenerateID_Prefix(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateID("run"), "run-"))
	assert.NoError(t, ID(GenerateID("")).Validate())
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	ts := Timestamp(time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "\"2023-10-27T10:00:00Z\"", string(data))
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte("\"2023-10-27T10:00:00Z\""), &ts))
	assert.Equal(t, time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC), time.Time(ts))

	assert.Error(t, json.Unmarshal([]byte("\"invalid-date\""), &ts))
}

func TestTimestamp_ToUnixMilli(t *testing.T) {
	ts := Timestamp(time.UnixMilli(1700000000123).UTC())
	assert.Equal(t, int64(1700000000123), ts.ToUnixMilli())
}

//Personal.AI order the ending
