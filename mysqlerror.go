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

	pingcaperr "github.com/pingcap/errors"
)

// Frame-level sentinels. These are fatal to the packet currently being
// decoded; they are never returned from per-cell decode functions (the
// value decoders in rowparser.go return no error and instead store an
// in-band fallback such as NaN, InvalidDate or the cell's raw text).
var (
	ErrMalformedFrame = pingcaperr.New("mysql: malformed packet frame")
	ErrPacketTooShort = pingcaperr.New("mysql: packet shorter than its declared window")
	ErrPacketSync     = pingcaperr.New("mysql: commands out of sync; you can't run this command now")
	ErrPacketSyncMul  = pingcaperr.New("mysql: commands out of sync; did you run multiple statements at once?")
)

// wrapFrame annotates a frame-level sentinel with the call site that hit
// it, using github.com/pingcap/errors so the original sentinel remains
// comparable with errors.Is/errors.Cause while still carrying a stack.
func wrapFrame(cause error, format string, args ...interface{}) error {
	return pingcaperr.Wrap(cause, fmt.Sprintf(format, args...))
}

// MySQLError is the structured decode of an ERR_Packet.
// Code is the symbolic name resolved from Errno via errnoToCode, falling
// back to the decimal errno when the table has no entry.
type MySQLError struct {
	Errno      uint16
	Code       string
	SQLState   string
	SQLMessage string
}

func (e *MySQLError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("Error %d (%s): %s", e.Errno, e.SQLState, e.SQLMessage)
	}
	return fmt.Sprintf("Error %d: %s", e.Errno, e.SQLMessage)
}

// errnoToCode maps the handful of server errno values the test suite and
// common client code paths care about to their symbolic ER_ names. This is
// intentionally a small, hand-curated subset (MySQL defines hundreds) —
// unknown codes fall back to the decimal errno
var errnoToCode = map[uint16]string{
	1045: "ER_ACCESS_DENIED_ERROR",
	1046: "ER_NO_DB_ERROR",
	1049: "ER_BAD_DB_ERROR",
	1054: "ER_BAD_FIELD_ERROR",
	1062: "ER_DUP_ENTRY",
	1064: "ER_PARSE_ERROR",
	1096: "ER_NO_TABLES_USED",
	1146: "ER_NO_SUCH_TABLE",
	1205: "ER_LOCK_WAIT_TIMEOUT",
	1213: "ER_LOCK_DEADLOCK",
	1216: "ER_NO_REFERENCED_ROW",
	1217: "ER_ROW_IS_REFERENCED",
	1264: "ER_WARN_DATA_OUT_OF_RANGE",
	1364: "ER_NO_DEFAULT_FOR_FIELD",
	1406: "ER_DATA_TOO_LONG",
	1451: "ER_ROW_IS_REFERENCED_2",
	1452: "ER_NO_REFERENCED_ROW_2",
	1690: "ER_DATA_OUT_OF_RANGE",
	2013: "CR_SERVER_LOST",
}

func codeForErrno(errno uint16) string {
	if code, ok := errnoToCode[errno]; ok {
		return code
	}
	return fmt.Sprintf("%d", errno)
}
