package kbconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_MarshalJSON_EncodesBareValue(t *testing.T) {
	data, err := json.Marshal(StringValue("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(data))

	data, err = json.Marshal(NumberValue(42))
	require.NoError(t, err)
	assert.JSONEq(t, `42`, string(data))

	data, err = json.Marshal(MapValue(map[string]Value{"a": BoolValue(true)}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true}`, string(data))
}

func TestValue_UnmarshalJSON_InfersKind(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"foo"`), &v))
	s, ok := v.String()
	assert.True(t, ok)
	assert.Equal(t, "foo", s)

	require.NoError(t, json.Unmarshal([]byte(`3.5`), &v))
	n, ok := v.Number()
	assert.True(t, ok)
	assert.Equal(t, 3.5, n)

	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &v))
	list, ok := v.List()
	assert.True(t, ok)
	assert.Len(t, list, 2)
}
