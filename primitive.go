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
	"encoding/binary"
	"math"
	"strconv"
	"time"
)

/******************************************************************************
*                     Fixed-width little-endian integers                     *
******************************************************************************/

func readUint8(buf []byte, pos int) uint8 { return buf[pos] }

func readUint16(buf []byte, pos int) uint16 {
	return binary.LittleEndian.Uint16(buf[pos : pos+2])
}

func readUint24(buf []byte, pos int) uint32 {
	return uint32(buf[pos]) | uint32(buf[pos+1])<<8 | uint32(buf[pos+2])<<16
}

func readUint32(buf []byte, pos int) uint32 {
	return binary.LittleEndian.Uint32(buf[pos : pos+4])
}

func readUint64(buf []byte, pos int) uint64 {
	return binary.LittleEndian.Uint64(buf[pos : pos+8])
}

func writeUint8(buf []byte, pos int, v uint8) { buf[pos] = v }

func writeUint16(buf []byte, pos int, v uint16) {
	binary.LittleEndian.PutUint16(buf[pos:pos+2], v)
}

func writeUint24(buf []byte, pos int, v uint32) {
	buf[pos] = byte(v)
	buf[pos+1] = byte(v >> 8)
	buf[pos+2] = byte(v >> 16)
}

func writeUint32(buf []byte, pos int, v uint32) {
	binary.LittleEndian.PutUint32(buf[pos:pos+4], v)
}

func writeUint64(buf []byte, pos int, v uint64) {
	binary.LittleEndian.PutUint64(buf[pos:pos+8], v)
}

/******************************************************************************
*                          64-bit integer variants                           *
******************************************************************************/

// maxExactDouble is the largest magnitude integer exactly representable in
// a float64, 2^53. Above this, the "ifPossible" readers fall back to a
// decimal string instead of losing precision in a float64.
const maxExactDouble = 1 << 53

// readUint64String reads eight little-endian bytes and formats as decimal.
func readUint64String(buf []byte, pos int) string {
	return strconv.FormatUint(readUint64(buf, pos), 10)
}

// readUint64IfPossible implements default 64-bit read path:
// a number when exactly representable as a float64, else a decimal
// string. Returns (number, "", true) or (0, string, false).
func readUint64IfPossible(buf []byte, pos int) (float64, string, bool) {
	v := readUint64(buf, pos)
	if v <= maxExactDouble {
		return float64(v), "", true
	}
	return 0, strconv.FormatUint(v, 10), false
}

func readInt64String(buf []byte, pos int) string {
	return strconv.FormatInt(int64(readUint64(buf, pos)), 10)
}

func readInt64IfPossible(buf []byte, pos int) (float64, string, bool) {
	v := int64(readUint64(buf, pos))
	if v >= -maxExactDouble && v <= maxExactDouble {
		return float64(v), "", true
	}
	return 0, strconv.FormatInt(v, 10), false
}

/******************************************************************************
*                                  Floats                                    *
******************************************************************************/

func readFloat32(buf []byte, pos int) float32 {
	return math.Float32frombits(readUint32(buf, pos))
}

func readFloat64(buf []byte, pos int) float64 {
	return math.Float64frombits(readUint64(buf, pos))
}

func writeFloat64(buf []byte, pos int, v float64) {
	writeUint64(buf, pos, math.Float64bits(v))
}

/******************************************************************************
*                         ASCII numeric parsing                              *
******************************************************************************/

// parseFloatASCII implements floatAscii: sign, digits, '.',
// optional exponent, parsed by strconv.ParseFloat. Returns NaN for len==0
// and for text ParseFloat rejects.
func parseFloatASCII(buf []byte, off, length int) float64 {
	if length == 0 {
		return math.NaN()
	}
	// strconv.ParseFloat already performs a correctly-rounded left-to-right
	// parse matching IEEE double semantics for any decimal-text input up to
	// MySQL's DECIMAL limits (65 digits, 30 fractional); no accumulation
	// loop is reimplemented here.
	f, err := strconv.ParseFloat(string(buf[off:off+length]), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseIntASCIISmall implements intAsciiSmall: the caller has proved the
// value fits, so this is a straight signed decimal parse with no
// big-number guard.
func parseIntASCIISmall(buf []byte, off, length int) int64 {
	if length == 0 {
		return 0
	}
	n, _ := strconv.ParseInt(string(buf[off:off+length]), 10, 64)
	return n
}

// parseIntASCII implements intAscii: empty -> NaN (reported via
// ok=false); digit count (excluding sign) <= 15 -> int64; ==16 with first
// digit < '9' -> int64; otherwise returns the digits (with sign) as a
// string unless a float64 round-trip reproduces the original digit run,
// mirroring the source's toFixed()-equality check (the cutover is the
// 2^53 exact-double boundary, not int64 overflow).
func parseIntASCII(buf []byte, off, length int) (n int64, s string, isNumber, ok bool) {
	if length == 0 {
		return 0, "", false, false
	}
	raw := buf[off : off+length]

	neg := false
	digitsStart := 0
	if raw[0] == '-' {
		neg = true
		digitsStart = 1
	} else if raw[0] == '+' {
		digitsStart = 1
	}
	numDigits := length - digitsStart

	if numDigits <= 15 {
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, "", false, false
		}
		return v, "", true, true
	}

	if numDigits == 16 && raw[digitsStart] < '9' {
		v, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, "", false, false
		}
		return v, "", true, true
	}

	// Big-number guard: try the integer parse, then check it the way the
	// JS source's toFixed()-equality check does — round-trip through a
	// float64, not an int64, since that's what actually decides
	// number-vs-string. The cutover is the 2^53 exact-double boundary,
	// not int64 overflow: a digit run that happens to format back
	// identically after a float64 round-trip is still a number even
	// above 2^53, and one that doesn't survive the round-trip is a
	// string even though it fits in an int64.
	if v, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		if strconv.FormatFloat(float64(v), 'f', -1, 64) == string(raw) {
			return v, "", true, true
		}
	}

	digits := string(raw[digitsStart:])
	if neg {
		return 0, "-" + digits, false, true
	}
	return 0, digits, false, true
}

/******************************************************************************
*                         Date / time / geometry                             *
******************************************************************************/

// InvalidDate is returned by decodeBinaryDateTime/formatTextDate when the
// payload decodes to the all-zero MySQL sentinel ("0000-00-00 00:00:00").
var InvalidDate = time.Time{}

// decodeBinaryDateTime implements binary dateTime(buf,off,len):
// len in {0,4,7,11}. Returns (value, valid).
func decodeBinaryDateTime(buf []byte, off, length int) (time.Time, bool) {
	if length == 0 {
		return InvalidDate, false
	}
	year := int(readUint16(buf, off))
	month := int(buf[off+2])
	day := int(buf[off+3])

	var hour, min, sec, micros int
	if length > 6 {
		hour = int(buf[off+4])
		min = int(buf[off+5])
		sec = int(buf[off+6])
	}
	if length > 10 {
		micros = int(readUint32(buf, off+7))
	}

	if year == 0 && month == 0 && day == 0 && hour == 0 && min == 0 && sec == 0 && micros == 0 {
		return InvalidDate, false
	}

	return time.Date(year, time.Month(month), day, hour, min, sec, micros*1000, time.Local), true
}

// formatBinaryDateTime implements dateTimeString: same layout, formatted as
// "YYYY-MM-DD[ HH:MM:SS[.FFFFFF]]" truncated to decimals fractional
// digits. day is read from offset+3, matching the binary layout.
func formatBinaryDateTime(buf []byte, off, length int, decimals int) string {
	if length == 0 {
		return "0000-00-00"
	}
	year := int(readUint16(buf, off))
	month := int(buf[off+2])
	day := int(buf[off+3])

	out := fmtDate(year, month, day)
	if length <= 6 {
		return out
	}

	hour := int(buf[off+4])
	min := int(buf[off+5])
	sec := int(buf[off+6])
	out += " " + fmtTimeOfDay(hour, min, sec)

	if length <= 10 || decimals <= 0 {
		return out
	}

	micros := uint32(0)
	if length > 10 {
		micros = readUint32(buf, off+7)
	}
	frac := fmtMicros(micros)
	if decimals > 6 {
		decimals = 6
	}
	return out + "." + frac[:decimals]
}

// formatTextDate implements dateAscii: fixed-column text layout
// "YYYY-MM-DD[ HH:MM:SS[.ffffff]]".
func formatTextDate(buf []byte, off, length int) (time.Time, bool) {
	if length < 10 {
		return InvalidDate, false
	}
	year, _ := strconv.Atoi(string(buf[off : off+4]))
	month, _ := strconv.Atoi(string(buf[off+5 : off+7]))
	day, _ := strconv.Atoi(string(buf[off+8 : off+10]))

	if year == 0 && month == 0 && day == 0 {
		return InvalidDate, false
	}
	if length < 19 {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}

	hour, _ := strconv.Atoi(string(buf[off+11 : off+13]))
	minute, _ := strconv.Atoi(string(buf[off+14 : off+16]))
	sec, _ := strconv.Atoi(string(buf[off+17 : off+19]))

	nsec := 0
	if length > 20 {
		fracDigits := buf[off+20 : off+length]
		frac := string(fracDigits) + "000000"[:maxInt(0, 6-len(fracDigits))]
		if len(frac) > 6 {
			frac = frac[:6]
		}
		micros, _ := strconv.Atoi(frac)
		nsec = micros * 1000
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.Local), true
}

// decodeBinaryTime implements binary TIME layout: sign, days,
// hour, min, sec, micros, in 0/8/12-byte forms (the 1-byte length prefix
// is consumed by the caller in packet.go).
func decodeBinaryTime(buf []byte, off, length int) (negative bool, totalHours, min, sec int, micros uint32) {
	if length == 0 {
		return false, 0, 0, 0, 0
	}
	negative = buf[off] != 0
	days := readUint32(buf, off+1)
	hour := int(buf[off+5])
	min = int(buf[off+6])
	sec = int(buf[off+7])
	totalHours = int(days)*24 + hour
	if length > 8 {
		micros = readUint32(buf, off+8)
	}
	return
}

func formatBinaryTimeString(negative bool, totalHours, min, sec int, micros uint32, decimals int) string {
	sign := ""
	if negative {
		sign = "-"
	}
	out := sign + fmtTimeOfDay(totalHours, min, sec)
	if decimals <= 0 {
		return out
	}
	frac := fmtMicros(micros)
	if decimals > 6 {
		decimals = 6
	}
	return out + "." + frac[:decimals]
}

// binaryTimeMillis converts a decoded binary TIME to total signed
// milliseconds, flooring micros to ms,
func binaryTimeMillis(negative bool, totalHours, min, sec int, micros uint32) int64 {
	ms := int64(totalHours)*3600000 + int64(min)*60000 + int64(sec)*1000 + int64(micros/1000)
	if negative {
		return -ms
	}
	return ms
}

func fmtDate(year, month, day int) string {
	b := make([]byte, 0, 10)
	b = appendZeroPad(b, year, 4)
	b = append(b, '-')
	b = appendZeroPad(b, month, 2)
	b = append(b, '-')
	b = appendZeroPad(b, day, 2)
	return string(b)
}

func fmtTimeOfDay(hour, min, sec int) string {
	b := make([]byte, 0, 8)
	b = appendZeroPad(b, hour, 2)
	b = append(b, ':')
	b = appendZeroPad(b, min, 2)
	b = append(b, ':')
	b = appendZeroPad(b, sec, 2)
	return string(b)
}

// fmtMicros zero-pads micros to 6 characters before any truncation to
// the column's declared decimals.
func fmtMicros(micros uint32) string {
	s := strconv.FormatUint(uint64(micros), 10)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

func appendZeroPad(b []byte, v, width int) []byte {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return append(b, s...)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

/******************************************************************************
*                             WKB geometry                                  *
******************************************************************************/

// Point is a single WKB coordinate pair.
type Point struct {
	X, Y float64
}

// decodeGeometry parses MySQL's WKB encoding: a 4-byte SRID prefix, then a
// standard OGC WKB geometry (byte-order flag, 4-byte type, coordinates).
// Returns nil for a buffer shorter than 4 bytes and for undefined WKB
// types.
func decodeGeometry(buf []byte) interface{} {
	if len(buf) < 4 {
		return nil
	}
	return decodeWKB(buf[4:])
}

func decodeWKB(buf []byte) interface{} {
	if len(buf) < 5 {
		return nil
	}
	var order binary.ByteOrder = binary.LittleEndian
	if buf[0] == 0 {
		order = binary.BigEndian
	}
	wkbType := order.Uint32(buf[1:5])
	rest := buf[5:]

	switch wkbType {
	case 1: // Point
		if len(rest) < 16 {
			return nil
		}
		return Point{X: wkbFloat(rest[0:8], order), Y: wkbFloat(rest[8:16], order)}

	case 2: // LineString
		return decodeWKBPoints(rest, order)

	case 3: // Polygon
		if len(rest) < 4 {
			return nil
		}
		numRings := order.Uint32(rest[0:4])
		rest = rest[4:]
		rings := make([][]Point, 0, numRings)
		for i := uint32(0); i < numRings; i++ {
			if len(rest) < 4 {
				return nil
			}
			numPoints := order.Uint32(rest[0:4])
			rest = rest[4:]
			need := int(numPoints) * 16
			if len(rest) < need {
				return nil
			}
			rings = append(rings, decodeWKBPoints(rest[:need], order))
			rest = rest[need:]
		}
		return rings

	case 4, 5, 6, 7: // MultiPoint, MultiLineString, MultiPolygon, GeometryCollection
		if len(rest) < 4 {
			return nil
		}
		num := order.Uint32(rest[0:4])
		rest = rest[4:]
		items := make([]interface{}, 0, num)
		for i := uint32(0); i < num; i++ {
			if len(rest) < 5 {
				return nil
			}
			item := decodeWKB(rest)
			items = append(items, item)
			// sub-geometries carry their own byte-order flag; walking past
			// one requires knowing its encoded length, which for the
			// recursive container types means re-deriving it here.
			consumed := wkbSubLength(rest, order)
			if consumed <= 0 || consumed > len(rest) {
				return items
			}
			rest = rest[consumed:]
		}
		return items

	default:
		errLog.Printf("mysql: undefined WKB type %d", wkbType)
		return nil
	}
}

func decodeWKBPoints(buf []byte, order binary.ByteOrder) []Point {
	if len(buf) < 4 {
		return nil
	}
	num := order.Uint32(buf[0:4])
	buf = buf[4:]
	points := make([]Point, 0, num)
	for i := uint32(0); i < num && len(buf) >= 16; i++ {
		points = append(points, Point{X: wkbFloat(buf[0:8], order), Y: wkbFloat(buf[8:16], order)})
		buf = buf[16:]
	}
	return points
}

func wkbFloat(b []byte, order binary.ByteOrder) float64 {
	return math.Float64frombits(order.Uint64(b))
}

// wkbSubLength computes the byte length of one sub-geometry at the front
// of buf (byte-order flag + type + body), used while walking Multi*/
// GeometryCollection containers.
func wkbSubLength(buf []byte, outerOrder binary.ByteOrder) int {
	if len(buf) < 5 {
		return -1
	}
	var order binary.ByteOrder = binary.LittleEndian
	if buf[0] == 0 {
		order = binary.BigEndian
	}
	wkbType := order.Uint32(buf[1:5])
	switch wkbType {
	case 1:
		return 5 + 16
	case 2:
		if len(buf) < 9 {
			return -1
		}
		num := order.Uint32(buf[5:9])
		return 5 + 4 + int(num)*16
	case 3:
		if len(buf) < 9 {
			return -1
		}
		pos := 9
		num := order.Uint32(buf[5:9])
		for i := uint32(0); i < num; i++ {
			if len(buf) < pos+4 {
				return -1
			}
			numPoints := order.Uint32(buf[pos : pos+4])
			pos += 4 + int(numPoints)*16
		}
		return pos
	case 4, 5, 6, 7:
		if len(buf) < 9 {
			return -1
		}
		pos := 9
		num := order.Uint32(buf[5:9])
		for i := uint32(0); i < num; i++ {
			if len(buf) <= pos {
				return -1
			}
			n := wkbSubLength(buf[pos:], order)
			if n <= 0 {
				return -1
			}
			pos += n
		}
		return pos
	default:
		return -1
	}
}
