// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "encoding/json"

// castJSON decodes a JSON column's UTF-8 text into a generic Go value
// (map[string]interface{}, []interface{}, string, float64, bool, or nil).
// No grounded third-party JSON library exists at the row-decode layer
// across the reference pool (see DESIGN.md), so this is a deliberate
// stdlib choice.
func castJSON(buf []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(buf, &v); err != nil {
		return nil, wrapFrame(err, "decode JSON column")
	}
	return v, nil
}
