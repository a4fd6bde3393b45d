// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tags which alternative of Cell is populated, letting callers
// switch without a type assertion cascade.
type CellKind int

const (
	CellNull CellKind = iota
	CellInt64
	CellUint64
	CellDouble
	CellBigDecimalStr
	CellBytes
	CellText
	CellDate
	CellTime
	CellGeometry
	CellJSON
	CellDecimal
)

// Cell is the tagged-variant decode result of a single row value. Only
// the field matching Kind is meaningful.
type Cell struct {
	Kind CellKind

	Int64         int64
	Uint64        uint64
	Double        float64
	BigDecimalStr string
	Bytes         []byte
	Text          string
	Date          time.Time
	Time          time.Duration
	Geometry      interface{}
	JSONValue     interface{}
	Decimal       decimal.Decimal
}

func (c Cell) IsNull() bool { return c.Kind == CellNull }

// Interface returns c's payload as a plain Go value, the shape an
// un-cast row ultimately carries (map[string]any / []any element).
func (c Cell) Interface() interface{} {
	switch c.Kind {
	case CellNull:
		return nil
	case CellInt64:
		return c.Int64
	case CellUint64:
		return c.Uint64
	case CellDouble:
		return c.Double
	case CellBigDecimalStr:
		return c.BigDecimalStr
	case CellBytes:
		return c.Bytes
	case CellText:
		return c.Text
	case CellDate:
		return c.Date
	case CellTime:
		return c.Time
	case CellGeometry:
		return c.Geometry
	case CellJSON:
		return c.JSONValue
	case CellDecimal:
		return c.Decimal
	}
	return nil
}
