package mysql

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteFixedWidth(t *testing.T) {
	buf := make([]byte, 8)
	writeUint16(buf, 0, 0x1234)
	assert.Equal(t, uint16(0x1234), readUint16(buf, 0))

	writeUint24(buf, 0, 0x123456)
	assert.Equal(t, uint32(0x123456), readUint24(buf, 0))

	writeUint32(buf, 0, 0x01020304)
	assert.Equal(t, uint32(0x01020304), readUint32(buf, 0))

	writeUint64(buf, 0, 0x0102030405060708)
	assert.Equal(t, uint64(0x0102030405060708), readUint64(buf, 0))
}

func TestReadUint64IfPossible_Boundary(t *testing.T) {
	buf := make([]byte, 8)
	writeUint64(buf, 0, 1<<53)
	n, s, ok := readUint64IfPossible(buf, 0)
	assert.True(t, ok)
	assert.Equal(t, float64(1<<53), n)
	assert.Empty(t, s)

	writeUint64(buf, 0, (1<<53)+1)
	n, s, ok = readUint64IfPossible(buf, 0)
	assert.False(t, ok)
	assert.Equal(t, float64(0), n)
	assert.Equal(t, "9007199254740993", s)
}

// intAscii at the 2^53 boundary.
func TestParseIntASCII_Boundary(t *testing.T) {
	n, s, isNumber, ok := parseIntASCII([]byte("9007199254740992"), 0, len("9007199254740992"))
	require.True(t, ok)
	assert.True(t, isNumber)
	assert.Equal(t, int64(9007199254740992), n)

	n, s, isNumber, ok = parseIntASCII([]byte("9007199254740993"), 0, len("9007199254740993"))
	require.True(t, ok)
	assert.False(t, isNumber)
	assert.Equal(t, "9007199254740993", s)
	_ = n

	raw := "90071992547409921"
	n, s, isNumber, ok = parseIntASCII([]byte(raw), 0, len(raw))
	require.True(t, ok)
	assert.False(t, isNumber)
	assert.Equal(t, raw, s)
	_ = n
}

func TestParseIntASCII_Empty(t *testing.T) {
	_, _, _, ok := parseIntASCII(nil, 0, 0)
	assert.False(t, ok)
}

// intAsciiSmall(digits(k)) == k for |k| < 2^53-1.
func TestParseIntASCIISmall_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40)}
	for _, k := range values {
		s := []byte(intToString(k))
		got := parseIntASCIISmall(s, 0, len(s))
		assert.Equal(t, k, got)
	}
}

func intToString(v int64) string {
	buf := make([]byte, 0, 20)
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		return "0"
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	buf = append(buf, digits...)
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}

func TestParseFloatASCII(t *testing.T) {
	f := parseFloatASCII([]byte("3.14"), 0, 4)
	assert.InDelta(t, 3.14, f, 1e-9)

	assert.True(t, math.IsNaN(parseFloatASCII(nil, 0, 0)))
}

// binary DATETIME decode.
func TestDecodeBinaryDateTime(t *testing.T) {
	buf := []byte{0xE4, 0x07, 0x01, 0x02, 0x03, 0x04, 0x05, 0xE8, 0x03, 0x00, 0x00}
	d, valid := decodeBinaryDateTime(buf, 0, 11)
	require.True(t, valid)
	assert.Equal(t, 2020, d.Year())
	assert.Equal(t, time.Month(1), d.Month())
	assert.Equal(t, 2, d.Day())
	assert.Equal(t, 3, d.Hour())
	assert.Equal(t, 4, d.Minute())
	assert.Equal(t, 5, d.Second())
}

func TestDecodeBinaryDateTime_ZeroLength(t *testing.T) {
	_, valid := decodeBinaryDateTime(nil, 0, 0)
	assert.False(t, valid)
}

func TestDecodeBinaryDateTime_AllZero(t *testing.T) {
	buf := make([]byte, 11)
	_, valid := decodeBinaryDateTime(buf, 0, 11)
	assert.False(t, valid)
}

// dateTime(writeDate(d).buffer) reproduces d truncated to
// microsecond precision.
func TestWriteDate_RoundTrip(t *testing.T) {
	p := newTestPacket(32)
	d := time.Date(2024, 3, 15, 9, 30, 45, 123456000, time.Local)
	require.NoError(t, p.WriteDate(d))

	p.Reset()
	got, valid, err := p.ReadDateTime()
	require.NoError(t, err)
	require.True(t, valid)
	assert.Equal(t, d.Year(), got.Year())
	assert.Equal(t, d.Month(), got.Month())
	assert.Equal(t, d.Day(), got.Day())
	assert.Equal(t, d.Hour(), got.Hour())
	assert.Equal(t, d.Minute(), got.Minute())
	assert.Equal(t, d.Second(), got.Second())
	assert.Equal(t, d.Nanosecond(), got.Nanosecond())
}

func TestDecodeGeometry_Point(t *testing.T) {
	buf := make([]byte, 4+1+4+16)
	pos := 4
	buf[pos] = 1 // little-endian
	pos++
	writeUint32(buf, pos, 1) // wkbPoint
	pos += 4
	writeFloat64(buf, pos, 1.5)
	pos += 8
	writeFloat64(buf, pos, 2.5)

	got := decodeGeometry(buf)
	pt, ok := got.(Point)
	require.True(t, ok)
	assert.Equal(t, 1.5, pt.X)
	assert.Equal(t, 2.5, pt.Y)
}

func TestDecodeGeometry_TooShort(t *testing.T) {
	assert.Nil(t, decodeGeometry([]byte{1, 2}))
}
