// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"strconv"
	"time"
)

// Packet is a view over a shared byte buffer plus a read/write cursor.
// The first four bytes of the window are reserved for the frame
// header (length:u24le, sequenceId:u8); the default offset after
// construction is start+4. Grounded on buffer.go's cursor-over-a-slice
// shape, generalized from a read-only stream buffer into a read/write
// frame window.
type Packet struct {
	buf        []byte
	start      int
	end        int
	offset     int
	sequenceID uint8
}

// NewPacket constructs a Packet view over buf[start:end]. end-start must be
// >= 4; offset is initialized to start+4
func NewPacket(sequenceID uint8, buf []byte, start, end int) *Packet {
	return &Packet{
		buf:        buf,
		start:      start,
		end:        end,
		offset:     start + 4,
		sequenceID: sequenceID,
	}
}

// Reset restores offset to start+4.
func (p *Packet) Reset() { p.offset = p.start + 4 }

// Length returns end-start.
func (p *Packet) Length() int { return p.end - p.start }

// Slice returns the packet's window, bytes[start:end].
func (p *Packet) Slice() []byte { return p.buf[p.start:p.end] }

// HaveMoreData reports whether offset < end.
func (p *Packet) HaveMoreData() bool { return p.offset < p.end }

// SequenceID returns the packet's sequence id.
func (p *Packet) SequenceID() uint8 { return p.sequenceID }

// Offset returns the current read/write position.
func (p *Packet) Offset() int { return p.offset }

func (p *Packet) need(n int) error {
	if p.offset+n > p.end {
		return wrapFrame(ErrPacketTooShort, "need %d bytes at offset %d, have %d", n, p.offset, p.end-p.offset)
	}
	return nil
}

/******************************************************************************
*                               Typed readers                                *
******************************************************************************/

func (p *Packet) ReadUint8() (uint8, error) {
	if err := p.need(1); err != nil {
		return 0, err
	}
	v := readUint8(p.buf, p.offset)
	p.offset++
	return v, nil
}

func (p *Packet) ReadUint16() (uint16, error) {
	if err := p.need(2); err != nil {
		return 0, err
	}
	v := readUint16(p.buf, p.offset)
	p.offset += 2
	return v, nil
}

func (p *Packet) ReadUint24() (uint32, error) {
	if err := p.need(3); err != nil {
		return 0, err
	}
	v := readUint24(p.buf, p.offset)
	p.offset += 3
	return v, nil
}

func (p *Packet) ReadUint32() (uint32, error) {
	if err := p.need(4); err != nil {
		return 0, err
	}
	v := readUint32(p.buf, p.offset)
	p.offset += 4
	return v, nil
}

func (p *Packet) ReadUint64() (uint64, error) {
	if err := p.need(8); err != nil {
		return 0, err
	}
	v := readUint64(p.buf, p.offset)
	p.offset += 8
	return v, nil
}

func (p *Packet) ReadFloat32() (float32, error) {
	if err := p.need(4); err != nil {
		return 0, err
	}
	v := readFloat32(p.buf, p.offset)
	p.offset += 4
	return v, nil
}

func (p *Packet) ReadFloat64() (float64, error) {
	if err := p.need(8); err != nil {
		return 0, err
	}
	v := readFloat64(p.buf, p.offset)
	p.offset += 8
	return v, nil
}

// ReadLengthCodedNumber implements readLengthCodedNumber: the
// signed flag only affects the 8-byte 0xFE form.
func (p *Packet) ReadLengthCodedNumber(signed bool) (interface{}, error) {
	v, next, err := decodeLengthCodedInt(p.buf, p.offset, signed)
	if err != nil {
		return nil, err
	}
	p.offset = next
	return v, nil
}

// ReadLengthCodedBuffer reads a length-coded length followed by that many
// raw bytes. A NULL-marker length returns (nil, nil).
func (p *Packet) ReadLengthCodedBuffer() ([]byte, error) {
	v, next, err := decodeLengthCodedInt(p.buf, p.offset, false)
	if err != nil {
		return nil, err
	}
	if v == nil {
		p.offset = next
		return nil, nil
	}
	n := int(v.(uint64))
	if next+n > p.end {
		return nil, wrapFrame(ErrPacketTooShort, "length-coded buffer of %d bytes at %d", n, next)
	}
	p.offset = next + n
	return p.buf[next : next+n], nil
}

// ReadLengthCodedString reads a length-coded buffer and decodes it under
// encoding. A NULL length returns ("", true, nil).
func (p *Packet) ReadLengthCodedString(charsetName string) (string, bool, error) {
	b, err := p.ReadLengthCodedBuffer()
	if err != nil {
		return "", false, err
	}
	if b == nil {
		return "", true, nil
	}
	s, err := decodeBytes(b, charsetName)
	return s, false, err
}

// ReadNullTerminatedString scans until 0x00, decodes [offset,nul) under
// encoding, and advances past the terminator.
func (p *Packet) ReadNullTerminatedString(charsetName string) (string, error) {
	nul := p.offset
	for nul < p.end && p.buf[nul] != 0 {
		nul++
	}
	if nul >= p.end {
		return "", wrapFrame(ErrPacketTooShort, "unterminated string at %d", p.offset)
	}
	s, err := decodeBytes(p.buf[p.offset:nul], charsetName)
	p.offset = nul + 1
	return s, err
}

// ReadDateTime reads a one-byte length prefix followed by a binary
// date/time payload.
func (p *Packet) ReadDateTime() (time.Time, bool, error) {
	n, err := p.ReadUint8()
	if err != nil {
		return InvalidDate, false, err
	}
	if err := p.need(int(n)); err != nil {
		return InvalidDate, false, err
	}
	t, valid := decodeBinaryDateTime(p.buf, p.offset, int(n))
	p.offset += int(n)
	return t, valid, nil
}

// ReadDateTimeString reads a one-byte length prefix followed by a binary
// date/time payload, formatted as text truncated to decimals fractional
// digits.
func (p *Packet) ReadDateTimeString(decimals int) (string, error) {
	n, err := p.ReadUint8()
	if err != nil {
		return "", err
	}
	if err := p.need(int(n)); err != nil {
		return "", err
	}
	s := formatBinaryDateTime(p.buf, p.offset, int(n), decimals)
	p.offset += int(n)
	return s, nil
}

// ReadTimeString reads a one-byte length prefix followed by a binary TIME
// payload. When asMs is true, returns the numeric-milliseconds encoding
// formatted as a decimal string instead of "-HH:MM:SS[.ffffff]".
func (p *Packet) ReadTimeString(decimals int, asMs bool) (string, error) {
	n, err := p.ReadUint8()
	if err != nil {
		return "", err
	}
	if err := p.need(int(n)); err != nil {
		return "", err
	}
	neg, hours, min, sec, micros := decodeBinaryTime(p.buf, p.offset, int(n))
	p.offset += int(n)
	if asMs {
		return strconv.FormatInt(binaryTimeMillis(neg, hours, min, sec, micros), 10), nil
	}
	return formatBinaryTimeString(neg, hours, min, sec, micros, decimals), nil
}

/******************************************************************************
*                                   Markers                                   *
******************************************************************************/

// IsEOF reports the EOF marker: leading byte 0xFE and frame
// length < 13.
func (p *Packet) IsEOF() bool {
	return p.offset < p.end && p.buf[p.offset] == 0xfe && p.Length() < 13
}

// IsError reports a leading 0xFF byte.
func (p *Packet) IsError() bool {
	return p.offset < p.end && p.buf[p.offset] == 0xff
}

// IsAlt reports a leading 0xFE byte regardless of length, used for
// AuthSwitch disambiguation by the caller.
func (p *Packet) IsAlt() bool {
	return p.offset < p.end && p.buf[p.offset] == 0xfe
}

// Type classifies the packet's leading byte for callers that branch on
// frame kind before committing to a specific reader.
func (p *Packet) Type() string {
	if p.offset >= p.end {
		return ""
	}
	switch p.buf[p.offset] {
	case 0xfe:
		if p.Length() < 13 {
			return "EOF"
		}
	case 0xff:
		return "Error"
	case 0x00:
		return "maybeOK"
	}
	return ""
}

// AsError decodes an ERR_Packet: one-byte field count, 2-byte errno, an
// optional '#' SQL-state marker followed by a 5-byte state, and the
// remainder as the message.
func (p *Packet) AsError(charsetName string) (*MySQLError, error) {
	if err := p.need(3); err != nil {
		return nil, err
	}
	pos := p.offset + 1 // skip the 0xFF field-count byte
	errno := readUint16(p.buf, pos)
	pos += 2

	sqlState := ""
	if pos < p.end && p.buf[pos] == '#' {
		pos++
		if pos+5 > p.end {
			return nil, wrapFrame(ErrPacketTooShort, "truncated sql-state at %d", pos)
		}
		sqlState = string(p.buf[pos : pos+5])
		pos += 5
	}

	msg, err := decodeBytes(p.buf[pos:p.end], charsetName)
	if err != nil {
		return nil, err
	}

	return &MySQLError{
		Errno:      errno,
		Code:       codeForErrno(errno),
		SQLState:   sqlState,
		SQLMessage: msg,
	}, nil
}

// okPacket is the decode of an OK_Packet's length-coded prefix.
type okPacket struct {
	AffectedRows uint64
	InsertID     uint64
}

// AsOK decodes the field_count==0 affected-rows/insert-id prefix of an
// OK_Packet via the length-coded codec. Status flags, warning count
// and the trailing info string belong to the connection layer and are
// left unread.
func (p *Packet) AsOK() (okPacket, error) {
	if err := p.need(1); err != nil {
		return okPacket{}, err
	}
	pos := p.offset + 1 // skip the 0x00 field-count byte

	affected, next, err := decodeLengthCodedInt(p.buf, pos, false)
	if err != nil {
		return okPacket{}, err
	}
	insert, next2, err := decodeLengthCodedInt(p.buf, next, false)
	if err != nil {
		return okPacket{}, err
	}
	p.offset = next2

	toUint64 := func(v interface{}) uint64 {
		if v == nil {
			return 0
		}
		return v.(uint64)
	}
	return okPacket{AffectedRows: toUint64(affected), InsertID: toUint64(insert)}, nil
}

/******************************************************************************
*                               Typed writers                                 *
******************************************************************************/

func (p *Packet) WriteInt8(v uint8) error {
	if err := p.need(1); err != nil {
		return err
	}
	writeUint8(p.buf, p.offset, v)
	p.offset++
	return nil
}

func (p *Packet) WriteInt16(v uint16) error {
	if err := p.need(2); err != nil {
		return err
	}
	writeUint16(p.buf, p.offset, v)
	p.offset += 2
	return nil
}

func (p *Packet) WriteInt24(v uint32) error {
	if err := p.need(3); err != nil {
		return err
	}
	writeUint24(p.buf, p.offset, v)
	p.offset += 3
	return nil
}

func (p *Packet) WriteInt32(v uint32) error {
	if err := p.need(4); err != nil {
		return err
	}
	writeUint32(p.buf, p.offset, v)
	p.offset += 4
	return nil
}

func (p *Packet) WriteDouble(v float64) error {
	if err := p.need(8); err != nil {
		return err
	}
	writeFloat64(p.buf, p.offset, v)
	p.offset += 8
	return nil
}

func (p *Packet) WriteBuffer(b []byte) error {
	if err := p.need(len(b)); err != nil {
		return err
	}
	copy(p.buf[p.offset:], b)
	p.offset += len(b)
	return nil
}

// WriteNull emits the length-coded NULL marker 0xFB.
func (p *Packet) WriteNull() error {
	return p.WriteInt8(0xfb)
}

func (p *Packet) WriteString(s string) error {
	return p.WriteBuffer([]byte(s))
}

func (p *Packet) WriteLengthCodedBuffer(b []byte) error {
	out, err := encodeLengthCodedInt(uint64(len(b)), nil)
	if err != nil {
		return err
	}
	if err := p.WriteBuffer(out); err != nil {
		return err
	}
	return p.WriteBuffer(b)
}

func (p *Packet) WriteLengthCodedString(s string) error {
	return p.WriteLengthCodedBuffer([]byte(s))
}

// WriteLengthCodedNumber writes the narrowest of the five length-coded
// forms for value.
func (p *Packet) WriteLengthCodedNumber(value interface{}) error {
	out, err := encodeLengthCodedInt(value, nil)
	if err != nil {
		return err
	}
	return p.WriteBuffer(out)
}

// WriteDate always emits the 11-byte MySQL DATETIME binary form, with
// micros = nanoseconds/1000 (d truncated to microsecond precision).
func (p *Packet) WriteDate(d time.Time) error {
	if err := p.WriteInt8(11); err != nil {
		return err
	}
	buf := make([]byte, 11)
	writeUint16(buf, 0, uint16(d.Year()))
	buf[2] = byte(d.Month())
	buf[3] = byte(d.Day())
	buf[4] = byte(d.Hour())
	buf[5] = byte(d.Minute())
	buf[6] = byte(d.Second())
	writeUint32(buf, 7, uint32(d.Nanosecond()/1000))
	return p.WriteBuffer(buf)
}

// WriteHeader writes (length(buffer)-start-4):u24le and sequenceId:u8 at
// the packet's start offset in the underlying buffer, then restores offset.
func (p *Packet) WriteHeader(sequenceID uint8) {
	saved := p.offset
	writeUint24(p.buf, p.start, uint32(len(p.buf)-p.start-4))
	p.buf[p.start+3] = sequenceID
	p.offset = saved
}

/******************************************************************************
*                               Static helpers                                *
******************************************************************************/

// LengthCodedNumberLength returns the byte length a future
// WriteLengthCodedNumber(n) would consume.
func LengthCodedNumberLength(n uint64) int {
	return lengthCodedIntSize(n)
}

// LengthCodedStringLength returns the byte length of s's length-coded
// form with s encoded under charsetName. WriteLengthCodedString takes no
// charset and always writes s's UTF-8 bytes, so the two agree only when
// charsetName encodes s to the same bytes as UTF-8.
func LengthCodedStringLength(s string, charsetName string) int {
	encoded, err := encodeBytes(s, charsetName)
	if err != nil {
		encoded = []byte(s)
	}
	return lengthCodedIntSize(uint64(len(encoded))) + len(encoded)
}

// comStmtPrepare is the COM_STMT_PREPARE command byte.
const comStmtPrepare = 0x16

// NewComStmtPreparePacket frames a COM_STMT_PREPARE command: body =
// 0x16 followed by query encoded under charsetName, no null terminator,
// sequenceId is always 0 for a new command phase.
func NewComStmtPreparePacket(query string, charsetName string) (*Packet, error) {
	body, err := encodeBytes(query, charsetName)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4+1+len(body))
	buf[4] = comStmtPrepare
	copy(buf[5:], body)
	p := NewPacket(0, buf, 0, len(buf))
	p.WriteHeader(0)
	return p, nil
}
