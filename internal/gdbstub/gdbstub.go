/*
 * cortexa9sim - GDB Remote Serial Protocol packet engine.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package gdbstub implements the GDB Remote Serial Protocol packet state
// machine and command set targeted at an ARM core, grounded on
// gdb/gdbstub.py's byte-at-a-time reader (RS_IDLE/RS_GETLINE/RS_CHKSUM1/
// RS_CHKSUM2) and its 'g'/'p'/'m'/'Z'/'z'/'vCont'/'?'/'k' handlers.
package gdbstub

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Target is the narrow surface the stub drives; main.go fills it with
// internal/armcpu.CPU's methods, keeping the protocol engine independent
// of the CPU package per the spec's composable-interfaces refactor note.
type Target struct {
	NumGPR       int
	ReadReg      func(i int) uint32
	WriteReg     func(i int, v uint32)
	ReadByte     func(addr uint32) (uint8, error)
	WriteByte    func(addr uint32, v uint8) error
	Continue     func()
	Step         func()
	SetBreak     func(addr uint32)
	ClearBreak   func(addr uint32)
	StopSignal   func() <-chan struct{} // fires once per breakpoint/step stop
}

type rsState int

const (
	rsIdle rsState = iota
	rsGetLine
	rsChksum1
	rsChksum2
)

// Session drives one GDB client connection's packet state machine.
type Session struct {
	target Target
	log    *slog.Logger

	state  rsState
	buf    []byte
	csumHi byte
}

func NewSession(target Target, log *slog.Logger) *Session {
	return &Session{target: target, log: log, state: rsIdle}
}

// FeedByte processes one received byte and returns zero or more raw bytes
// to write back to the transport (an ACK/NACK, or a framed reply packet).
func (s *Session) FeedByte(ch byte) []byte {
	switch s.state {
	case rsIdle:
		if ch == '$' {
			s.buf = s.buf[:0]
			s.state = rsGetLine
		}
		return nil
	case rsGetLine:
		if ch == '#' {
			s.state = rsChksum1
			return nil
		}
		s.buf = append(s.buf, ch)
		return nil
	case rsChksum1:
		s.csumHi = fromHexNibble(ch)
		s.state = rsChksum2
		return nil
	case rsChksum2:
		want := (s.csumHi << 4) | fromHexNibble(ch)
		var got byte
		for _, b := range s.buf {
			got += b
		}
		s.state = rsIdle
		if want != got {
			return []byte{'-'}
		}
		reply, send := s.handlePacket()
		out := []byte{'+'}
		if send {
			out = append(out, framePacket(reply)...)
		}
		return out
	}
	return nil
}

// StopPacket frames the anonymous SIGTRAP stop reply sent when a
// breakpoint or single-step halts the target outside of a client request,
// grounded on _send_anonymous_stop_signal's "S05".
func StopPacket() []byte {
	return framePacket([]byte("S05"))
}

func fromHexNibble(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10
	default:
		return 0
	}
}

// framePacket wraps payload as "$payload#csum".
func framePacket(payload []byte) []byte {
	var csum byte
	for _, b := range payload {
		csum += b
	}
	out := make([]byte, 0, len(payload)+4)
	out = append(out, '$')
	out = append(out, payload...)
	out = append(out, '#')
	out = append(out, []byte(fmt.Sprintf("%02x", csum))...)
	return out
}

// handlePacket dispatches one complete command line, grounded on
// gdb_handle_packet's first-character switch.
func (s *Session) handlePacket() (reply []byte, send bool) {
	if len(s.buf) == 0 {
		return nil, false
	}
	cmd := s.buf[0]
	rest := s.buf[1:]

	switch cmd {
	case '?':
		return []byte("T05thread:01;"), true
	case 'H':
		return []byte("OK"), true
	case 'q':
		if bytes.HasPrefix(rest, []byte("C")) {
			return []byte("QC1"), true
		}
		return nil, true
	case 'g':
		var out bytes.Buffer
		n := s.target.NumGPR
		if n == 0 {
			n = 16
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&out, "%08x", swapEndianHex(s.target.ReadReg(i)))
		}
		return out.Bytes(), true
	case 'p':
		regNo, _ := parseHexUint(rest, 0)
		if int(regNo) >= s.target.NumGPR && s.target.NumGPR != 0 {
			return []byte("00000000"), true
		}
		return []byte(fmt.Sprintf("%08x", swapEndianHex(s.target.ReadReg(int(regNo))))), true
	case 'm':
		return s.handleReadMemory(rest), true
	case 'M':
		return s.handleWriteMemory(rest), true
	case 'Z':
		return s.handleBreakInsert(rest), true
	case 'z':
		return s.handleBreakRemove(rest), true
	case 'v':
		return s.handleV(rest)
	case 'k':
		return nil, false
	default:
		return nil, true
	}
}

func (s *Session) handleReadMemory(rest []byte) []byte {
	addr, i := parseHexUint(rest, 0)
	if i < len(rest) && rest[i] == ',' {
		i++
	}
	length, _ := parseHexUint(rest, i)
	out := make([]byte, 0, length*2)
	for n := uint32(0); uint64(n) < length; n++ {
		b, err := s.target.ReadByte(uint32(addr) + n)
		if err != nil {
			return []byte("E14")
		}
		out = append(out, []byte(fmt.Sprintf("%02x", b))...)
	}
	return out
}

func (s *Session) handleWriteMemory(rest []byte) []byte {
	addr, i := parseHexUint(rest, 0)
	if i < len(rest) && rest[i] == ',' {
		i++
	}
	length, i2 := parseHexUint(rest, i)
	i = i2
	if i < len(rest) && rest[i] == ':' {
		i++
	}
	for n := uint32(0); uint64(n) < length && i+1 < len(rest); n++ {
		v := (fromHexNibble(rest[i]) << 4) | fromHexNibble(rest[i+1])
		if err := s.target.WriteByte(uint32(addr)+n, v); err != nil {
			return []byte("E14")
		}
		i += 2
	}
	return []byte("OK")
}

func (s *Session) handleBreakInsert(rest []byte) []byte {
	_, i := parseHexUint(rest, 0) // breakpoint type: software and hardware are equivalent here
	if i < len(rest) && rest[i] == ',' {
		i++
	}
	addr, _ := parseHexUint(rest, i)
	s.target.SetBreak(uint32(addr))
	return []byte("OK")
}

func (s *Session) handleBreakRemove(rest []byte) []byte {
	_, i := parseHexUint(rest, 0)
	if i < len(rest) && rest[i] == ',' {
		i++
	}
	addr, _ := parseHexUint(rest, i)
	s.target.ClearBreak(uint32(addr))
	return []byte("OK")
}

func (s *Session) handleV(rest []byte) (reply []byte, send bool) {
	if bytes.HasPrefix(rest, []byte("Cont?")) {
		return []byte("vCont;c;C;s;S"), true
	}
	if bytes.HasPrefix(rest, []byte("Cont;c")) {
		s.target.Continue()
		return nil, false
	}
	if bytes.HasPrefix(rest, []byte("Cont;s")) {
		s.target.Step()
		return nil, false
	}
	return nil, true
}

func parseHexUint(buf []byte, i int) (uint64, int) {
	var v uint64
	start := i
	for i < len(buf) && isHexDigit(buf[i]) {
		v = v<<4 | uint64(fromHexNibble(buf[i]))
		i++
	}
	if i == start {
		return 0, i
	}
	return v, i
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// swapEndianHex reorders a little-endian target word's bytes so that
// fmt's big-endian %08x hex dump reads as the byte stream GDB expects on
// the wire for a little-endian target register.
func swapEndianHex(v uint32) uint32 {
	return (v>>24)&0xFF | (v>>8)&0xFF00 | (v<<8)&0xFF0000 | (v<<24)&0xFF000000
}
