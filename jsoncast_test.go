package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastJSON_Object(t *testing.T) {
	v, err := castJSON([]byte(`{"a":1,"b":[1,2,3]}`))
	require.NoError(t, err)
	m, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
}

func TestCastJSON_Invalid(t *testing.T) {
	_, err := castJSON([]byte(`not json`))
	assert.Error(t, err)
}
