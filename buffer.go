// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "io"

const defaultBufSize = 4096

// framer is a read buffer similar to bufio.Reader, adapted from the
// prior zero-copy-ish buffer into the thing that produces the framed
// payloads the packet cursor consumes. The codec itself performs no I/O;
// framer is the minimal bridge a caller uses to pull one frame off a
// stream and hand back a *Packet view over it.
type framer struct {
	buf    []byte
	rd     io.Reader
	idx    int
	length int
}

func newFramer(rd io.Reader) *framer {
	var b [defaultBufSize]byte
	return &framer{
		buf: b[:],
		rd:  rd,
	}
}

// fill reads into the buffer until at least _need_ bytes are in it.
func (b *framer) fill(need int) (err error) {
	if b.length > 0 && b.idx > 0 {
		copy(b.buf[0:b.length], b.buf[b.idx:])
	}

	if need > len(b.buf) {
		newBuf := make([]byte, need)
		copy(newBuf, b.buf)
		b.buf = newBuf
	}

	b.idx = 0

	var n int
	for {
		n, err = b.rd.Read(b.buf[b.length:])
		b.length += n

		if b.length < need && err == nil {
			continue
		}
		return
	}
}

// readNext returns the next N bytes from the buffer. The returned slice
// is only guaranteed valid until the next read.
func (b *framer) readNext(need int) (p []byte, err error) {
	if b.length < need {
		err = b.fill(need)
		if err != nil {
			return nil, err
		}
	}

	p = b.buf[b.idx : b.idx+need]
	b.idx += need
	b.length -= need
	return
}

// readPacket reads one MySQL frame header (length:u24le, sequenceId:u8)
// followed by length bytes of payload, and returns a *Packet view over a
// freshly allocated buffer sized to hold header+payload, per the frame
// layout of Multi-packet (>16MB) frame continuation is left
// to the caller, mirroring the prior packets.go readPacket loop
// shape without reimplementing connection-level retry/compression.
func (b *framer) readPacket() (*Packet, error) {
	header, err := b.readNext(4)
	if err != nil {
		return nil, wrapFrame(err, "read packet header")
	}
	length := readUint24(header, 0)
	sequenceID := header[3]

	payload, err := b.readNext(int(length))
	if err != nil {
		return nil, wrapFrame(err, "read packet payload of %d bytes", length)
	}

	out := getBytes(4 + int(length))
	copy(out[0:4], header)
	copy(out[4:], payload)
	return NewPacket(sequenceID, out, 0, len(out)), nil
}

/******************************************************************************
*                          Allocation pools                                  *
******************************************************************************/

// bytesPool recycles packet-sized byte slices across frames, grounded
// unchanged on the prior bytesPool/getBytes/putBytes.
var bytesPool = make(chan []byte, 16)

// may return unzeroed bytes
func getBytes(n int) []byte {
	select {
	case s := <-bytesPool:
		if cap(s) >= n {
			return s[:n]
		}
	default:
	}
	return make([]byte, n)
}

func putBytes(s []byte) {
	select {
	case bytesPool <- s:
	default:
	}
}

// ReleasePacket returns a Packet's backing buffer to bytesPool once the
// caller is done with the decoded row — the one caller-visible hook into
// the allocation pools, since Packet's fields are unexported.
func ReleasePacket(p *Packet) {
	putBytes(p.buf)
}

// columnDefPool recycles []*ColumnDefinition slices built per result-set
// field block, adapted from the prior fieldPool/getMysqlFields/
// putMysqlFields (mysqlField -> ColumnDefinition).
var columnDefPool = make(chan []*ColumnDefinition, 16)

func getColumnDefinitions(n int) []*ColumnDefinition {
	select {
	case f := <-columnDefPool:
		if cap(f) >= n {
			return f[:n]
		}
	default:
	}
	return make([]*ColumnDefinition, n)
}

func putColumnDefinitions(f []*ColumnDefinition) {
	for i := range f {
		f[i] = nil
	}
	select {
	case columnDefPool <- f[:0]:
	default:
	}
}

// NewColumnDefinitions returns an n-element []*ColumnDefinition, reused
// from columnDefPool when possible. Callers building a field block (one
// ColumnDefinition per result-set column) should use this instead of a
// bare make, and call ReleaseColumnDefinitions once the compiled row
// parser no longer needs the field block. The parser CompileRowParser
// returns keeps a reference to fields and reads it on every call, and the
// parser cache keeps that parser.
func NewColumnDefinitions(n int) []*ColumnDefinition {
	return getColumnDefinitions(n)
}

// ReleaseColumnDefinitions returns f to the pool.
func ReleaseColumnDefinitions(f []*ColumnDefinition) {
	putColumnDefinitions(f)
}

// valuesPool recycles the per-row []interface{} slice CompileRowParser's
// closure fills in on every call, adapted from the prior rowsPool/
// getMysqlRows/putMysqlRows (mysqlRows -> the decoded-value slice, since
// the driver.Rows iterator itself is out of scope here).
var valuesPool = make(chan []interface{}, 16)

func getValues(n int) []interface{} {
	select {
	case v := <-valuesPool:
		if cap(v) >= n {
			return v[:n]
		}
	default:
	}
	return make([]interface{}, n)
}

func putValues(v []interface{}) {
	for i := range v {
		v[i] = nil
	}
	select {
	case valuesPool <- v[:0]:
	default:
	}
}
