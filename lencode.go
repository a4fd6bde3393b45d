// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "strconv"

// decodeLengthCodedInt decodes the five-form MySQL length-coded
// integer: value is nil (SQL NULL), a uint64, or — for forms the caller
// asked to read as signed (the 8-byte 0xFE form only) — an int64. next is
// the offset just past the consumed bytes. Grounded on the driver's
// utils.go bytesToLengthEncodedInteger, generalized to return nil for SQL
// NULL; unsigned values are returned as a full uint64, so large values
// never silently wrap.
func decodeLengthCodedInt(buf []byte, pos int, signed bool) (value interface{}, next int, err error) {
	if pos >= len(buf) {
		return nil, pos, wrapFrame(ErrPacketTooShort, "length-coded int at %d", pos)
	}
	t := buf[pos]
	switch {
	case t <= 0xfa:
		return uint64(t), pos + 1, nil

	case t == 0xfb:
		return nil, pos + 1, nil

	case t == 0xfc:
		if pos+3 > len(buf) {
			return nil, pos, wrapFrame(ErrPacketTooShort, "length-coded int (2-byte form) at %d", pos)
		}
		return uint64(readUint16(buf, pos+1)), pos + 3, nil

	case t == 0xfd:
		if pos+4 > len(buf) {
			return nil, pos, wrapFrame(ErrPacketTooShort, "length-coded int (3-byte form) at %d", pos)
		}
		return uint64(readUint24(buf, pos+1)), pos + 4, nil

	case t == 0xfe:
		if pos+9 > len(buf) {
			return nil, pos, wrapFrame(ErrPacketTooShort, "length-coded int (8-byte form) at %d", pos)
		}
		if signed {
			return int64(readUint64(buf, pos+1)), pos + 9, nil
		}
		return readUint64(buf, pos+1), pos + 9, nil

	default: // 0xff is never a valid length-coded tag
		return nil, pos, wrapFrame(ErrMalformedFrame, "invalid length-coded tag 0x%02x at %d", t, pos)
	}
}

// lengthCodedIntSize reports the byte length a write of value would
// consume, independent of actually writing it — must stay consistent
// with the form selection encodeLengthCodedInt actually uses.
func lengthCodedIntSize(value uint64) int {
	switch {
	case value <= 0xfa:
		return 1
	case value <= 0xffff:
		return 3
	case value <= 0xffffff:
		return 4
	default:
		return 9
	}
}

// encodeLengthCodedInt appends value's narrowest length-coded form to out
// and returns the extended slice. value may be nil (writes the NULL
// marker 0xFB), a non-negative uint64/int/int64, or a decimal string
// holding a value below 2^64; larger strings are rejected.
func encodeLengthCodedInt(value interface{}, out []byte) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return append(out, 0xfb), nil

	case uint64:
		return appendLengthCodedUint(out, v), nil

	case int64:
		if v < 0 {
			return nil, wrapFrame(ErrMalformedFrame, "length-coded int cannot encode negative value %d", v)
		}
		return appendLengthCodedUint(out, uint64(v)), nil

	case int:
		if v < 0 {
			return nil, wrapFrame(ErrMalformedFrame, "length-coded int cannot encode negative value %d", v)
		}
		return appendLengthCodedUint(out, uint64(v)), nil

	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, wrapFrame(ErrMalformedFrame, "length-coded int decimal string %q not representable", v)
		}
		return appendLengthCodedUint(out, n), nil

	default:
		return nil, wrapFrame(ErrMalformedFrame, "unsupported length-coded int value %T", value)
	}
}

func appendLengthCodedUint(out []byte, v uint64) []byte {
	switch {
	case v <= 0xfa:
		return append(out, byte(v))
	case v <= 0xffff:
		return append(out, 0xfc, byte(v), byte(v>>8))
	case v <= 0xffffff:
		return append(out, 0xfd, byte(v), byte(v>>8), byte(v>>16))
	default:
		buf := make([]byte, 9)
		buf[0] = 0xfe
		writeUint64(buf, 1, v)
		return append(out, buf...)
	}
}
