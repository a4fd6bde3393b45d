package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPacket builds a Packet over a fresh n-byte buffer, header
// reserved at [0:4), offset starting at 4 — shared by packet_test.go and
// primitive_test.go's round-trip tests.
func newTestPacket(n int) *Packet {
	buf := make([]byte, n)
	return NewPacket(0, buf, 0, n)
}

func TestPacket_ResetAndLength(t *testing.T) {
	p := newTestPacket(10)
	assert.Equal(t, 10, p.Length())
	assert.Equal(t, 4, p.Offset())

	require.NoError(t, p.WriteInt8(1))
	assert.Equal(t, 5, p.Offset())

	p.Reset()
	assert.Equal(t, 4, p.Offset())
}

func TestPacket_HaveMoreData(t *testing.T) {
	p := newTestPacket(5)
	assert.True(t, p.HaveMoreData())
	_, err := p.ReadUint8()
	require.NoError(t, err)
	assert.False(t, p.HaveMoreData())
}

func TestPacket_LengthCodedNumberRoundTrip(t *testing.T) {
	p := newTestPacket(32)
	require.NoError(t, p.WriteLengthCodedNumber(uint64(300)))
	p.Reset()
	v, err := p.ReadLengthCodedNumber(false)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
}

func TestPacket_LengthCodedStringRoundTrip(t *testing.T) {
	p := newTestPacket(32)
	require.NoError(t, p.WriteLengthCodedString("hello"))
	p.Reset()
	s, isNull, err := p.ReadLengthCodedString("utf8mb4")
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, "hello", s)
}

func TestPacket_NullTerminatedString(t *testing.T) {
	buf := append([]byte{0, 0, 0, 0}, []byte("root\x00")...)
	p := NewPacket(0, buf, 0, len(buf))
	s, err := p.ReadNullTerminatedString("utf8mb4")
	require.NoError(t, err)
	assert.Equal(t, "root", s)
	assert.Equal(t, len(buf), p.Offset())
}

func TestPacket_IsEOF(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0xfe, 0x00, 0x00, 0x02, 0x00}
	p := NewPacket(0, buf, 0, len(buf))
	assert.True(t, p.IsEOF())
	assert.True(t, p.IsAlt())
	assert.Equal(t, "EOF", p.Type())
}

func TestPacket_IsError(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0xff, 0, 0}
	p := NewPacket(0, buf, 0, len(buf))
	assert.True(t, p.IsError())
	assert.Equal(t, "Error", p.Type())
}

// error frame decode.
func TestPacket_AsError(t *testing.T) {
	payload := []byte{0xff, 0x48, 0x04, 0x23, '2', '8', '0', '0', '0', 'B', 'a', 'd'}
	buf := append([]byte{0, 0, 0, 0}, payload...)
	p := NewPacket(0, buf, 0, len(buf))

	e, err := p.AsError("utf8")
	require.NoError(t, err)
	assert.Equal(t, uint16(1096), e.Errno)
	assert.Equal(t, "ER_NO_TABLES_USED", e.Code)
	assert.Equal(t, "28000", e.SQLState)
	assert.Equal(t, "Bad", e.SQLMessage)
}

func TestPacket_AsError_NoSQLState(t *testing.T) {
	payload := []byte{0xff, 0x48, 0x04, 'o', 'o', 'p', 's'}
	buf := append([]byte{0, 0, 0, 0}, payload...)
	p := NewPacket(0, buf, 0, len(buf))

	e, err := p.AsError("utf8")
	require.NoError(t, err)
	assert.Equal(t, "", e.SQLState)
	assert.Equal(t, "oops", e.SQLMessage)
}

func TestPacket_AsOK(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00}
	buf := append([]byte{0, 0, 0, 0}, payload...)
	p := NewPacket(0, buf, 0, len(buf))

	ok, err := p.AsOK()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ok.AffectedRows)
	assert.Equal(t, uint64(0), ok.InsertID)
}

// COM_STMT_PREPARE framing.
func TestNewComStmtPreparePacket(t *testing.T) {
	p, err := NewComStmtPreparePacket("SELECT 1", "utf8")
	require.NoError(t, err)

	slice := p.Slice()
	require.Len(t, slice, 13)
	length := readUint24(slice, 0)
	seq := slice[3]
	assert.Equal(t, uint32(9), length)
	assert.Equal(t, uint8(0), seq)
	assert.Equal(t, byte(0x16), slice[4])
	assert.Equal(t, "SELECT 1", string(slice[5:]))
}

func TestPacket_WriteHeader(t *testing.T) {
	buf := make([]byte, 10)
	p := NewPacket(0, buf, 0, 10)
	require.NoError(t, p.WriteInt8('x'))
	p.WriteHeader(7)
	assert.Equal(t, uint32(6), readUint24(buf, 0))
	assert.Equal(t, uint8(7), buf[3])
}

func TestLengthCodedNumberLength(t *testing.T) {
	assert.Equal(t, 1, LengthCodedNumberLength(0xfa))
	assert.Equal(t, 3, LengthCodedNumberLength(0xffff))
	assert.Equal(t, 9, LengthCodedNumberLength(1<<40))
}
