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
	"fmt"
	"reflect"
)

// ColumnDefinition is the decoded column-definition record of a
// result-set's field block. Grounded on the prior mysqlField
// (fields.go), extended with the legacy Type/Length aliases and a
// CharacterSet/Encoding split so a column's numeric charset id and its
// resolved transcoding name are both available.
type ColumnDefinition struct {
	Name         string
	Table        string
	OrgTable     string
	Schema       string // database name
	OrgName      string
	ColumnType   fieldType
	ColumnLength uint32
	CharacterSet uint16
	Encoding     string // resolved character-set name, "" or "binary" means opaque bytes
	Flags        fieldFlag
	Decimals     byte

	// Type and Length are legacy aliases kept for callers ported from the
	// prior mysqlField shape.
	Type   string
	Length uint32
}

// Unsigned reports whether the UNSIGNED flag bit is set.
func (c *ColumnDefinition) Unsigned() bool { return c.Flags&flagUnsigned != 0 }

// DatabaseTypeName reports the database/sql-style type name for this
// column (e.g. "VARCHAR", "BIGINT"), mirroring the prior
// mysqlField.typeDatabaseName() (fields.go). Falls back to "UNKNOWN" for
// a column type the table doesn't cover.
func (c *ColumnDefinition) DatabaseTypeName() string {
	if name, ok := typeDatabaseName[c.ColumnType]; ok {
		return name
	}
	return "UNKNOWN"
}

// GoType reports the reflect.Type an enclosing driver would pick as a
// database/sql Scan target for this column, mirroring the prior
// mysqlField.scanType() (fields.go).
func (c *ColumnDefinition) GoType() reflect.Type {
	switch c.ColumnType {
	case fieldTypeTiny, fieldTypeShort, fieldTypeLong, fieldTypeInt24, fieldTypeYear:
		if c.Unsigned() {
			return reflect.TypeOf(uint64(0))
		}
		return reflect.TypeOf(int64(0))
	case fieldTypeLongLong:
		if c.Unsigned() {
			return reflect.TypeOf(uint64(0))
		}
		return reflect.TypeOf(int64(0))
	case fieldTypeFloat, fieldTypeDouble:
		return reflect.TypeOf(float64(0))
	case fieldTypeDecimal, fieldTypeNewDecimal:
		return reflect.TypeOf("")
	case fieldTypeDate, fieldTypeNewDate, fieldTypeDateTime, fieldTypeTimestamp:
		return reflect.TypeOf(InvalidDate)
	case fieldTypeNULL:
		return reflect.TypeOf(nil)
	default:
		return reflect.TypeOf([]byte(nil))
	}
}

// TypeCastFunc is the user-supplied per-column interception hook: it
// receives the field view and a thunk producing the default-decoded
// value, and returns whatever the caller wants stored.
type TypeCastFunc func(field FieldView, defaultRead func() interface{}) interface{}

// FieldView is the stable, read-only capability surface handed to a
// TypeCastFunc.
type FieldView interface {
	Db() string
	Table() string
	OrgTable() string
	Name() string
	OrgName() string
	Schema() string
	Type() string
	Length() uint32
	ColumnType() fieldType
	ColumnLength() uint32
	CharacterSet() uint16
	Flags() fieldFlag
	Decimals() byte
	Encoding() string
	// DatabaseTypeName reports the database/sql-style type name, e.g.
	// "VARCHAR" or "BIGINT".
	DatabaseTypeName() string

	// String returns the decoded string. For binary rows this equals
	// defaultRead().toString() except NULL -> "" (callers check IsNull).
	String() string
	// Buffer returns the raw cell bytes, nil if the cell is NULL. Binary
	// protocol cells read as fixed-width or date/time values (integers,
	// floats, DATE/DATETIME/TIMESTAMP, TIME) keep no raw bytes, so Buffer
	// returns nil for those too.
	Buffer() []byte
	// Geometry returns the parsed WKB value, nil if not a GEOMETRY cell.
	Geometry() interface{}
	// IsNull reports whether the underlying cell buffer was NULL.
	IsNull() bool
}

// cellAdapter is the concrete FieldView plus the Run entry point,
// mediating between a TypeCastFunc and the per-type default decoder.
// One is constructed per cell by rowparser.go.
type cellAdapter struct {
	col      *ColumnDefinition
	buf      []byte // raw cell bytes, nil for NULL and for binary fixed-width/date/time cells
	isNull   bool
	encoding string // forced-null when isNull, else col.Encoding

	// defaultCast, when non-nil, overrides the generic binary/string
	// fallback described in defaultRead contract.
	defaultCast func(buf []byte) interface{}
}

func newCellAdapter(col *ColumnDefinition, buf []byte, isNull bool, defaultCast func([]byte) interface{}) *cellAdapter {
	enc := col.Encoding
	if isNull {
		enc = ""
	}
	return &cellAdapter{col: col, buf: buf, isNull: isNull, encoding: enc, defaultCast: defaultCast}
}

func (c *cellAdapter) Db() string               { return c.col.Schema }
func (c *cellAdapter) Table() string            { return c.col.Table }
func (c *cellAdapter) OrgTable() string         { return c.col.OrgTable }
func (c *cellAdapter) Name() string             { return c.col.Name }
func (c *cellAdapter) OrgName() string          { return c.col.OrgName }
func (c *cellAdapter) Schema() string           { return c.col.Schema }
func (c *cellAdapter) Type() string             { return c.col.Type }
func (c *cellAdapter) Length() uint32           { return c.col.Length }
func (c *cellAdapter) ColumnType() fieldType    { return c.col.ColumnType }
func (c *cellAdapter) ColumnLength() uint32     { return c.col.ColumnLength }
func (c *cellAdapter) CharacterSet() uint16     { return c.col.CharacterSet }
func (c *cellAdapter) Flags() fieldFlag         { return c.col.Flags }
func (c *cellAdapter) DatabaseTypeName() string { return c.col.DatabaseTypeName() }
func (c *cellAdapter) Decimals() byte           { return c.col.Decimals }
func (c *cellAdapter) Encoding() string         { return c.encoding }
func (c *cellAdapter) IsNull() bool             { return c.isNull }

func (c *cellAdapter) Buffer() []byte {
	if c.isNull {
		return nil
	}
	return c.buf
}

func (c *cellAdapter) String() string {
	if c.isNull {
		return ""
	}
	if c.buf == nil && c.defaultCast != nil {
		return fmt.Sprint(c.defaultCast(nil))
	}
	if isBinaryEncoding(c.encoding) {
		return string(c.buf)
	}
	s, err := decodeBytes(c.buf, c.encoding)
	if err != nil {
		return string(c.buf)
	}
	return s
}

func (c *cellAdapter) Geometry() interface{} {
	if c.isNull {
		return nil
	}
	return decodeGeometry(c.buf)
}

// defaultRead applies the fallback precedence used when no cast function
// overrides a cell's value:
// NULL -> nil; defaultCast supplied -> defaultCast(buf); binary/unknown
// encoding -> raw buffer; else decoded string.
func (c *cellAdapter) defaultRead() interface{} {
	if c.isNull {
		return nil
	}
	if c.defaultCast != nil {
		return c.defaultCast(c.buf)
	}
	if isBinaryEncoding(c.encoding) {
		return c.buf
	}
	return c.String()
}

// Run invokes cast(adapter, adapter.defaultRead) and returns its result,
// or the default decode directly when cast is nil.
func (c *cellAdapter) Run(cast TypeCastFunc) interface{} {
	if cast == nil {
		return c.defaultRead()
	}
	return cast(c, c.defaultRead)
}
