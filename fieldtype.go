// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// fieldType is the MySQL column type code, one byte on the wire.
type fieldType byte

const (
	fieldTypeDecimal fieldType = iota
	fieldTypeTiny
	fieldTypeShort
	fieldTypeLong
	fieldTypeFloat
	fieldTypeDouble
	fieldTypeNULL
	fieldTypeTimestamp
	fieldTypeLongLong
	fieldTypeInt24
	fieldTypeDate
	fieldTypeTime
	fieldTypeDateTime
	fieldTypeYear
	fieldTypeNewDate
	fieldTypeVarChar
	fieldTypeBit
)

const (
	fieldTypeJSON fieldType = iota + 0xf5
	fieldTypeNewDecimal
	fieldTypeEnum
	fieldTypeSet
	fieldTypeTinyBLOB
	fieldTypeMediumBLOB
	fieldTypeLongBLOB
	fieldTypeBLOB
	fieldTypeVarString
	fieldTypeString
	fieldTypeGeometry
)

// fieldFlag is the column-definition flag bitset (2 bytes on the wire).
type fieldFlag uint16

const (
	flagNotNULL fieldFlag = 1 << iota
	flagPriKey
	flagUniqueKey
	flagMultipleKey
	flagBLOB
	flagUnsigned
	flagZeroFill
	flagBinary
	flagEnum
	flagAutoIncrement
	flagTimestamp
	flagSet
	flagUnknown1
	flagUnknown2
	flagUnknown3
	flagUnknown4
)

// isTimeType reports whether t is one of the date/time family column
// types dispatched through the dateAscii/dateTime helpers in primitive.go.
func isTimeType(t fieldType) bool {
	switch t {
	case fieldTypeDate, fieldTypeNewDate, fieldTypeDateTime, fieldTypeTimestamp:
		return true
	}
	return false
}

func isDecimalType(t fieldType) bool {
	return t == fieldTypeDecimal || t == fieldTypeNewDecimal
}

func isIntegerType(t fieldType) bool {
	switch t {
	case fieldTypeTiny, fieldTypeShort, fieldTypeLong, fieldTypeInt24, fieldTypeYear, fieldTypeLongLong:
		return true
	}
	return false
}

// typeDatabaseName maps a fieldType to the name database/sql-style
// consumers show as ColumnType.DatabaseTypeName(); grounded on the
// prior fields.go typeDatabaseName table.
var typeDatabaseName = map[fieldType]string{
	fieldTypeDecimal:    "DECIMAL",
	fieldTypeTiny:       "TINYINT",
	fieldTypeShort:      "SMALLINT",
	fieldTypeLong:       "INT",
	fieldTypeFloat:      "FLOAT",
	fieldTypeDouble:     "DOUBLE",
	fieldTypeNULL:       "NULL",
	fieldTypeTimestamp:  "TIMESTAMP",
	fieldTypeLongLong:   "BIGINT",
	fieldTypeInt24:      "MEDIUMINT",
	fieldTypeDate:       "DATE",
	fieldTypeTime:       "TIME",
	fieldTypeDateTime:   "DATETIME",
	fieldTypeYear:       "YEAR",
	fieldTypeNewDate:    "DATE",
	fieldTypeVarChar:    "VARCHAR",
	fieldTypeBit:        "BIT",
	fieldTypeJSON:       "JSON",
	fieldTypeNewDecimal: "DECIMAL",
	fieldTypeEnum:       "ENUM",
	fieldTypeSet:        "SET",
	fieldTypeTinyBLOB:   "TINYBLOB",
	fieldTypeMediumBLOB: "MEDIUMBLOB",
	fieldTypeLongBLOB:   "LONGBLOB",
	fieldTypeBLOB:       "BLOB",
	fieldTypeVarString:  "VARSTRING",
	fieldTypeString:     "STRING",
	fieldTypeGeometry:   "GEOMETRY",
}
