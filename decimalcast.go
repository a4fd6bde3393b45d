// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "github.com/shopspring/decimal"

// castDecimal implements the decimalNumbers row option against
// github.com/shopspring/decimal rather than a lossy float64, strengthening
// "DECIMAL as floating-point number" into an exact decimal. buf
// holds the ASCII DECIMAL text as it appears on the wire (text protocol)
// or the length-coded ASCII payload (binary protocol) — both are the same
// representation DECIMAL/NEWDECIMAL rows.
func castDecimal(buf []byte) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(string(buf))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
