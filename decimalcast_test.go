package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastDecimal(t *testing.T) {
	d, ok := castDecimal([]byte("19.99"))
	require.True(t, ok)
	assert.Equal(t, "19.99", d.String())
}

func TestCastDecimal_Invalid(t *testing.T) {
	_, ok := castDecimal([]byte("not-a-number"))
	assert.False(t, ok)
}
