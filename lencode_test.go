package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLengthCodedInt_OneByteForm(t *testing.T) {
	// single-byte form: input [0x05] -> 5, consumed 1 byte.
	v, next, err := decodeLengthCodedInt([]byte{0x05}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
	assert.Equal(t, 1, next)
}

func TestDecodeLengthCodedInt_NULL(t *testing.T) {
	// NULL marker: input [0xFB] -> null, consumed 1 byte.
	v, next, err := decodeLengthCodedInt([]byte{0xfb}, 0, false)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 1, next)
}

func TestDecodeLengthCodedInt_ThreeByteForm(t *testing.T) {
	// 3-byte form: input [0xFD, 0x10, 0x27, 0x00] -> 10000, consumed 4.
	v, next, err := decodeLengthCodedInt([]byte{0xfd, 0x10, 0x27, 0x00}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), v)
	assert.Equal(t, 4, next)
}

func TestDecodeLengthCodedInt_TwoByteForm(t *testing.T) {
	v, next, err := decodeLengthCodedInt([]byte{0xfc, 0x2c, 0x01}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 3, next)
}

func TestDecodeLengthCodedInt_EightByteForm(t *testing.T) {
	buf := []byte{0xfe, 0, 0, 0, 0, 0, 0, 0, 1} // 2^56
	v, next, err := decodeLengthCodedInt(buf, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<56, v)
	assert.Equal(t, 9, next)
}

func TestDecodeLengthCodedInt_InvalidTag(t *testing.T) {
	_, _, err := decodeLengthCodedInt([]byte{0xff}, 0, false)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeLengthCodedInt_Truncated(t *testing.T) {
	_, _, err := decodeLengthCodedInt([]byte{0xfc, 0x01}, 0, false)
	assert.ErrorIs(t, err, ErrPacketTooShort)
}

// For every byte b in 0..0xFA, encodeLen(b) is one byte and
// decodeLen round-trips.
func TestLengthCodedInt_OneByteRoundTrip(t *testing.T) {
	for b := 0; b <= 0xfa; b++ {
		out, err := encodeLengthCodedInt(uint64(b), nil)
		require.NoError(t, err)
		require.Len(t, out, 1)
		v, next, err := decodeLengthCodedInt(out, 0, false)
		require.NoError(t, err)
		assert.Equal(t, uint64(b), v)
		assert.Equal(t, 1, next)
	}
}

// For every non-negative n < 2^64, decodeLen(encodeLen(n)) == n.
func TestLengthCodedInt_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff, 300, 65535, 65536,
		0xffffff, 0x1000000, 1 << 53, 1<<53 + 1, ^uint64(0)}
	for _, n := range values {
		out, err := encodeLengthCodedInt(n, nil)
		require.NoError(t, err)
		v, next, err := decodeLengthCodedInt(out, 0, false)
		require.NoError(t, err)
		require.Equal(t, n, v)
		assert.Equal(t, len(out), next)
	}
}

// lengthCodedNumberLength(n) == size(encodeLen(n)) for all n.
func TestLengthCodedIntSize_MatchesEncode(t *testing.T) {
	values := []uint64{0, 0xfa, 0xfb, 0xffff, 0x10000, 0xffffff, 0x1000000, ^uint64(0)}
	for _, n := range values {
		out, err := encodeLengthCodedInt(n, nil)
		require.NoError(t, err)
		assert.Equal(t, len(out), lengthCodedIntSize(n), "n=%d", n)
	}
}

func TestEncodeLengthCodedInt_NegativeRejected(t *testing.T) {
	_, err := encodeLengthCodedInt(-1, nil)
	assert.Error(t, err)
}

func TestEncodeLengthCodedInt_DecimalString(t *testing.T) {
	out, err := encodeLengthCodedInt("300", nil)
	require.NoError(t, err)
	v, _, err := decodeLengthCodedInt(out, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
}
