// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"strconv"
	"strings"
	"sync"
)

// Protocol distinguishes the two MySQL result-row encodings.
type Protocol int

const (
	ProtocolText Protocol = iota
	ProtocolBinary
)

// RowOptions controls row assembly and per-type dispatch.
type RowOptions struct {
	RowsAsArray bool

	// NestTables is either nil (off), true (nest by table name), or a
	// separator string (flat "table<sep>column" keys).
	NestTables interface{}

	SupportBigNumbers bool
	BigNumberStrings  bool
	DateStrings       bool
	DecimalNumbers    bool

	TypeCast   TypeCastFunc
	BinaryCast bool
}

// RowParseFunc decodes one framed row into its assembled Go value. The
// TypeCastFunc carried by opts at call time does not affect the compiled
// dispatch plan (it is routed through unconditionally or not at all,
// decided at compile time by whether opts.TypeCast was non-nil when
// CompileRowParser ran) — only the cast function identity may vary
// between calls; the parser itself is a pure function of (protocol,
// column-shape, options).
type RowParseFunc func(p *Packet, cast TypeCastFunc) (interface{}, error)

var parserCache = struct {
	mu sync.Mutex
	m  map[string]RowParseFunc
}{m: make(map[string]RowParseFunc)}

// fingerprint builds the memoization key: the protocol, the ordered
// (columnType, unsigned, encoding, decimals) tuple per column, and the
// subset of options that influences dispatch.
func fingerprint(fields []*ColumnDefinition, opts RowOptions, protocol Protocol) string {
	var b strings.Builder
	b.WriteByte(byte(protocol))
	b.WriteByte('|')
	nest := "-"
	switch v := opts.NestTables.(type) {
	case bool:
		if v {
			nest = "T"
		}
	case string:
		nest = "S" + v
	}
	flags := []bool{opts.RowsAsArray, opts.SupportBigNumbers, opts.BigNumberStrings, opts.DateStrings, opts.DecimalNumbers, opts.BinaryCast, opts.TypeCast != nil}
	for _, f := range flags {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteString(nest)
	b.WriteByte('|')
	for _, col := range fields {
		b.WriteByte(byte(col.ColumnType))
		if col.Unsigned() {
			b.WriteByte('u')
		} else {
			b.WriteByte('s')
		}
		b.WriteString(col.Encoding)
		b.WriteByte(',')
		b.WriteByte(col.Decimals)
		b.WriteByte(';')
	}
	return b.String()
}

// CompileRowParser returns a row decoder specialized for fields/opts/
// protocol, memoized by fingerprint. The table-driven per-column closure
// approach replaces a runtime string-concatenation codegen style, while
// staying grounded on the prior readBinaryRow's per-column switch
// (packets.go): each column gets its own decode closure here instead of
// a re-evaluated switch arm per row.
func CompileRowParser(fields []*ColumnDefinition, opts RowOptions, protocol Protocol) RowParseFunc {
	key := fingerprint(fields, opts, protocol)

	parserCache.mu.Lock()
	if fn, ok := parserCache.m[key]; ok {
		parserCache.mu.Unlock()
		return fn
	}
	parserCache.mu.Unlock()

	decoders := make([]cellDecoder, len(fields))
	for i, col := range fields {
		if protocol == ProtocolText {
			decoders[i] = compileTextCellDecoder(col, opts)
		} else {
			decoders[i] = compileBinaryCellDecoder(col, opts)
		}
	}

	routeCast := opts.TypeCast != nil && (protocol == ProtocolText || opts.BinaryCast)

	fn := func(p *Packet, cast TypeCastFunc) (interface{}, error) {
		if cast == nil {
			cast = opts.TypeCast
		}
		values := getValues(len(fields))

		var nullBitmap []byte
		if protocol == ProtocolBinary {
			if _, err := p.ReadUint8(); err != nil { // status byte 0x00
				return nil, err
			}
			nb := (len(fields) + 9) / 8
			nullBitmap = make([]byte, nb)
			for i := 0; i < nb; i++ {
				b, err := p.ReadUint8()
				if err != nil {
					return nil, err
				}
				nullBitmap[i] = b
			}
		}

		for i, dec := range decoders {
			isNull := false
			if protocol == ProtocolBinary {
				bit := i + 2
				isNull = nullBitmap[bit/8]&(1<<uint(bit%8)) != 0
			}

			buf, cellIsNull, decode, err := dec(p, isNull)
			if err != nil {
				return nil, err
			}

			if routeCast {
				adapter := newCellAdapter(fields[i], buf, cellIsNull, decode)
				values[i] = adapter.Run(cast)
				continue
			}

			if cellIsNull {
				values[i] = nil
				continue
			}
			values[i] = decode(buf)
		}

		row := assembleRow(fields, values, opts)
		if !opts.RowsAsArray {
			// RowsAsArray hands the slice itself to the caller; every
			// other shape copies values into a fresh map, so the
			// backing array can be recycled.
			putValues(values)
		}
		return row, nil
	}

	parserCache.mu.Lock()
	parserCache.m[key] = fn
	parserCache.mu.Unlock()
	return fn
}

// cellDecoder reads one column's raw bytes off the packet and returns a
// closure producing its decoded Go value, matching the defaultCast
// parameter of newCellAdapter. buf is nil and isNull true for SQL NULL.
type cellDecoder func(p *Packet, binaryNull bool) (buf []byte, isNull bool, decode func([]byte) interface{}, err error)

/******************************************************************************
*                           Text protocol dispatch                           *
******************************************************************************/

// compileTextCellDecoder implements text-protocol dispatch
// table. Every cell is first read as a length-coded buffer of length L;
// decode is then chosen by column type and options.
func compileTextCellDecoder(col *ColumnDefinition, opts RowOptions) cellDecoder {
	decode := textDefaultCast(col, opts)
	return func(p *Packet, _ bool) ([]byte, bool, func([]byte) interface{}, error) {
		buf, err := p.ReadLengthCodedBuffer()
		if err != nil {
			return nil, false, nil, err
		}
		return buf, buf == nil, decode, nil
	}
}

func textDefaultCast(col *ColumnDefinition, opts RowOptions) func([]byte) interface{} {
	switch {
	case isIntegerType(col.ColumnType) && col.ColumnType != fieldTypeLongLong:
		return func(buf []byte) interface{} {
			return parseIntASCIISmall(buf, 0, len(buf))
		}

	case col.ColumnType == fieldTypeLongLong:
		if opts.BigNumberStrings {
			return func(buf []byte) interface{} {
				return Cell{Kind: CellBigDecimalStr, BigDecimalStr: string(buf)}.Interface()
			}
		}
		if opts.SupportBigNumbers {
			return func(buf []byte) interface{} {
				n, s, isNumber, ok := parseIntASCII(buf, 0, len(buf))
				if !ok {
					return string(buf)
				}
				if isNumber {
					return n
				}
				return s
			}
		}
		return func(buf []byte) interface{} {
			return parseIntASCIISmall(buf, 0, len(buf))
		}

	case col.ColumnType == fieldTypeFloat || col.ColumnType == fieldTypeDouble:
		return func(buf []byte) interface{} {
			return parseFloatASCII(buf, 0, len(buf))
		}

	case isDecimalType(col.ColumnType):
		if opts.DecimalNumbers {
			return func(buf []byte) interface{} {
				if d, ok := castDecimal(buf); ok {
					return Cell{Kind: CellDecimal, Decimal: d}.Interface()
				}
				return string(buf)
			}
		}
		return func(buf []byte) interface{} { return string(buf) }

	case isTimeType(col.ColumnType):
		if opts.DateStrings {
			return func(buf []byte) interface{} { return string(buf) }
		}
		return func(buf []byte) interface{} {
			t, valid := formatTextDate(buf, 0, len(buf))
			if !valid {
				return Cell{Kind: CellDate, Date: InvalidDate}.Interface()
			}
			return Cell{Kind: CellDate, Date: t}.Interface()
		}

	case col.ColumnType == fieldTypeTime:
		return func(buf []byte) interface{} { return string(buf) }

	case col.ColumnType == fieldTypeGeometry:
		return func(buf []byte) interface{} {
			return Cell{Kind: CellGeometry, Geometry: decodeGeometry(buf)}.Interface()
		}

	case col.ColumnType == fieldTypeJSON:
		return func(buf []byte) interface{} {
			v, err := castJSON(buf)
			if err != nil {
				return string(buf)
			}
			return Cell{Kind: CellJSON, JSONValue: v}.Interface()
		}

	case col.ColumnType == fieldTypeNULL:
		return func([]byte) interface{} { return nil }

	default:
		if isBinaryEncoding(col.Encoding) {
			return func(buf []byte) interface{} { return buf }
		}
		return func(buf []byte) interface{} {
			s, err := decodeBytes(buf, col.Encoding)
			if err != nil {
				return string(buf)
			}
			return s
		}
	}
}

/******************************************************************************
*                          Binary protocol dispatch                          *
******************************************************************************/

// compileBinaryCellDecoder implements binary-protocol
// dispatch table. The null bitmap is read by the caller, which passes each
// cell's null bit in; when it is set the closure reads nothing and returns
// a nil decoder.
func compileBinaryCellDecoder(col *ColumnDefinition, opts RowOptions) cellDecoder {
	switch col.ColumnType {
	case fieldTypeTiny:
		unsigned := col.Unsigned()
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			v, err := p.ReadUint8()
			if err != nil {
				return nil, false, nil, err
			}
			if unsigned {
				return nil, false, constCast(uint64(v)), nil
			}
			return nil, false, constCast(int64(int8(v))), nil
		}

	case fieldTypeShort, fieldTypeYear:
		unsigned := col.Unsigned()
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			v, err := p.ReadUint16()
			if err != nil {
				return nil, false, nil, err
			}
			if unsigned {
				return nil, false, constCast(uint64(v)), nil
			}
			return nil, false, constCast(int64(int16(v))), nil
		}

	case fieldTypeLong, fieldTypeInt24:
		unsigned := col.Unsigned()
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			v, err := p.ReadUint32()
			if err != nil {
				return nil, false, nil, err
			}
			if unsigned {
				return nil, false, constCast(uint64(v)), nil
			}
			return nil, false, constCast(int64(int32(v))), nil
		}

	case fieldTypeFloat:
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			v, err := p.ReadFloat32()
			if err != nil {
				return nil, false, nil, err
			}
			return nil, false, constCast(float64(v)), nil
		}

	case fieldTypeDouble:
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			v, err := p.ReadFloat64()
			if err != nil {
				return nil, false, nil, err
			}
			return nil, false, constCast(v), nil
		}

	case fieldTypeLongLong:
		unsigned := col.Unsigned()
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			raw, err := p.ReadUint64()
			if err != nil {
				return nil, false, nil, err
			}
			buf := make([]byte, 8)
			writeUint64(buf, 0, raw)
			return nil, false, binaryLongLongCast(buf, unsigned, opts), nil
		}

	case fieldTypeDate, fieldTypeNewDate, fieldTypeDateTime, fieldTypeTimestamp:
		decimals := int(col.Decimals)
		dateStrings := opts.DateStrings
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			if dateStrings {
				s, err := p.ReadDateTimeString(decimals)
				if err != nil {
					return nil, false, nil, err
				}
				return nil, false, constCast(s), nil
			}
			t, valid, err := p.ReadDateTime()
			if err != nil {
				return nil, false, nil, err
			}
			if !valid {
				return nil, false, constCast(Cell{Kind: CellDate, Date: InvalidDate}.Interface()), nil
			}
			return nil, false, constCast(Cell{Kind: CellDate, Date: t}.Interface()), nil
		}

	case fieldTypeTime:
		decimals := int(col.Decimals)
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			s, err := p.ReadTimeString(decimals, false)
			if err != nil {
				return nil, false, nil, err
			}
			return nil, false, constCast(s), nil
		}

	case fieldTypeDecimal, fieldTypeNewDecimal:
		decimalNumbers := opts.DecimalNumbers
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			buf, err := p.ReadLengthCodedBuffer()
			if err != nil {
				return nil, false, nil, err
			}
			if !decimalNumbers {
				return buf, false, func(b []byte) interface{} { return string(b) }, nil
			}
			return buf, false, func(b []byte) interface{} {
				if d, ok := castDecimal(b); ok {
					return Cell{Kind: CellDecimal, Decimal: d}.Interface()
				}
				return string(b)
			}, nil
		}

	case fieldTypeGeometry:
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			buf, err := p.ReadLengthCodedBuffer()
			if err != nil {
				return nil, false, nil, err
			}
			return buf, false, func(b []byte) interface{} {
				return Cell{Kind: CellGeometry, Geometry: decodeGeometry(b)}.Interface()
			}, nil
		}

	case fieldTypeJSON:
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			buf, err := p.ReadLengthCodedBuffer()
			if err != nil {
				return nil, false, nil, err
			}
			return buf, false, func(b []byte) interface{} {
				v, err := castJSON(b)
				if err != nil {
					return string(b)
				}
				return Cell{Kind: CellJSON, JSONValue: v}.Interface()
			}, nil
		}

	default:
		encoding := col.Encoding
		binaryEnc := isBinaryEncoding(encoding)
		return func(p *Packet, isNull bool) ([]byte, bool, func([]byte) interface{}, error) {
			if isNull {
				return nil, true, nil, nil
			}
			buf, err := p.ReadLengthCodedBuffer()
			if err != nil {
				return nil, false, nil, err
			}
			if binaryEnc {
				return buf, false, func(b []byte) interface{} { return b }, nil
			}
			return buf, false, func(b []byte) interface{} {
				s, err := decodeBytes(b, encoding)
				if err != nil {
					return string(b)
				}
				return s
			}, nil
		}
	}
}

func constCast(v interface{}) func([]byte) interface{} {
	return func([]byte) interface{} { return v }
}

// binaryLongLongCast implements LONGLONG variant selection:
// {u/i64Number, u/i64String, u/i64NumberIfPossible} chosen by
// supportBigNumbers/bigNumberStrings, mirroring the text-protocol
// LONGLONG rule of §4.5 applied to the raw 8-byte binary form.
func binaryLongLongCast(buf []byte, unsigned bool, opts RowOptions) func([]byte) interface{} {
	switch {
	case opts.BigNumberStrings:
		if unsigned {
			return func([]byte) interface{} { return readUint64String(buf, 0) }
		}
		return func([]byte) interface{} { return readInt64String(buf, 0) }

	case opts.SupportBigNumbers:
		if unsigned {
			return func([]byte) interface{} {
				n, s, ok := readUint64IfPossible(buf, 0)
				if ok {
					return n
				}
				return s
			}
		}
		return func([]byte) interface{} {
			n, s, ok := readInt64IfPossible(buf, 0)
			if ok {
				return n
			}
			return s
		}

	default:
		if unsigned {
			return func([]byte) interface{} { return readUint64(buf, 0) }
		}
		return func([]byte) interface{} { return int64(readUint64(buf, 0)) }
	}
}

/******************************************************************************
*                                Row assembly                                *
******************************************************************************/

// assembleRow shapes the decoded per-column values per RowsAsArray/
// NestTables.
func assembleRow(fields []*ColumnDefinition, values []interface{}, opts RowOptions) interface{} {
	if opts.RowsAsArray {
		return values
	}

	switch sep := opts.NestTables.(type) {
	case bool:
		if sep {
			nested := make(map[string]map[string]interface{})
			for i, col := range fields {
				t := nested[col.Table]
				if t == nil {
					t = make(map[string]interface{})
					nested[col.Table] = t
				}
				t[col.Name] = values[i]
			}
			return nested
		}
	case string:
		flat := make(map[string]interface{}, len(fields))
		for i, col := range fields {
			flat[col.Table+sep+col.Name] = values[i]
		}
		return flat
	}

	row := make(map[string]interface{}, len(fields))
	for i, col := range fields {
		row[col.Name] = values[i]
	}
	return row
}

// ColumnShapeKey returns a key built from the column types alone. It is
// coarser than the column-shape portion of the memoization fingerprint,
// which also includes unsignedness, encoding and decimals; it is not
// consumed internally.
func ColumnShapeKey(fields []*ColumnDefinition) string {
	var b strings.Builder
	for _, col := range fields {
		b.WriteString(strconv.Itoa(int(col.ColumnType)))
		b.WriteByte(';')
	}
	return b.String()
}
