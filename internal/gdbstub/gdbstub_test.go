package gdbstub

/*
 * cortexa9sim - GDB Remote Serial Protocol packet engine test cases.
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

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

type fakeTarget struct {
	regs       map[int]uint32
	mem        map[uint32]uint8
	breakAddr  uint32
	breakSet   bool
	continued  bool
	stepped    bool
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{regs: make(map[int]uint32), mem: make(map[uint32]uint8)}
}

func (f *fakeTarget) asTarget() Target {
	return Target{
		NumGPR: 16,
		ReadReg: func(i int) uint32 { return f.regs[i] },
		WriteReg: func(i int, v uint32) { f.regs[i] = v },
		ReadByte: func(addr uint32) (uint8, error) {
			v, ok := f.mem[addr]
			if !ok {
				return 0, fmt.Errorf("unmapped %#x", addr)
			}
			return v, nil
		},
		WriteByte: func(addr uint32, v uint8) error {
			f.mem[addr] = v
			return nil
		},
		Continue:   func() { f.continued = true },
		Step:       func() { f.stepped = true },
		SetBreak:   func(addr uint32) { f.breakAddr = addr; f.breakSet = true },
		ClearBreak: func(addr uint32) { f.breakAddr = addr; f.breakSet = false },
		StopSignal: func() <-chan struct{} { return make(chan struct{}) },
	}
}

func testSession(target Target) *Session {
	return NewSession(target, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// feedPacket frames body as "$body#csum" and drives it through the session
// one byte at a time, returning the bytes emitted on the final (checksum)
// byte.
func feedPacket(s *Session, body string) []byte {
	var out []byte
	feed := func(ch byte) {
		if r := s.FeedByte(ch); r != nil {
			out = r
		}
	}
	feed('$')
	for i := 0; i < len(body); i++ {
		feed(body[i])
	}
	feed('#')
	var csum byte
	for i := 0; i < len(body); i++ {
		csum += body[i]
	}
	hex := fmt.Sprintf("%02x", csum)
	feed(hex[0])
	feed(hex[1])
	return out
}

func TestFeedByteAcksAndRepliesToQuestionMark(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "?")
	if len(out) == 0 || out[0] != '+' {
		t.Fatalf("expected ack '+' prefix, got %q", out)
	}
	if !bytes.Contains(out, []byte("T05thread:01;")) {
		t.Errorf("expected a T05 stop reply, got %q", out)
	}
}

func TestFeedByteNacksBadChecksum(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	var out []byte
	feed := func(ch byte) {
		if r := s.FeedByte(ch); r != nil {
			out = r
		}
	}
	feed('$')
	feed('?')
	feed('#')
	feed('f')
	feed('f') // deliberately wrong checksum
	if string(out) != "-" {
		t.Errorf("expected a bare NACK '-', got %q", out)
	}
}

func TestRegisterReadAllViaG(t *testing.T) {
	target := newFakeTarget()
	target.regs[0] = 0x12345678
	s := testSession(target.asTarget())

	out := feedPacket(s, "g")
	want := fmt.Sprintf("%08x", swapEndianHex(0x12345678))
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("g reply %q does not contain swapped R0 %q", out, want)
	}
}

func TestRegisterReadOneViaP(t *testing.T) {
	target := newFakeTarget()
	target.regs[2] = 0xCAFEBABE
	s := testSession(target.asTarget())

	out := feedPacket(s, "p2")
	want := fmt.Sprintf("%08x", swapEndianHex(0xCAFEBABE))
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("p2 reply %q want contains %q", out, want)
	}
}

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "M1000,2:abcd")
	if !bytes.Contains(out, []byte("OK")) {
		t.Fatalf("write-memory reply = %q, want OK", out)
	}
	if target.mem[0x1000] != 0xab || target.mem[0x1001] != 0xcd {
		t.Fatalf("memory after write: %#x %#x, want 0xab 0xcd", target.mem[0x1000], target.mem[0x1001])
	}

	out = feedPacket(s, "m1000,2")
	if !bytes.Contains(out, []byte("abcd")) {
		t.Errorf("read-memory reply = %q, want to contain abcd", out)
	}
}

func TestMemoryReadFaultReturnsE14(t *testing.T) {
	target := newFakeTarget() // no memory mapped
	s := testSession(target.asTarget())

	out := feedPacket(s, "m2000,1")
	if !bytes.Contains(out, []byte("E14")) {
		t.Errorf("read of unmapped memory = %q, want E14", out)
	}
}

func TestBreakpointSetAndClear(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "Z0,2000,4")
	if !bytes.Contains(out, []byte("OK")) {
		t.Fatalf("Z reply = %q, want OK", out)
	}
	if !target.breakSet || target.breakAddr != 0x2000 {
		t.Errorf("SetBreak not invoked with 0x2000: set=%v addr=%#x", target.breakSet, target.breakAddr)
	}

	out = feedPacket(s, "z0,2000,4")
	if !bytes.Contains(out, []byte("OK")) {
		t.Fatalf("z reply = %q, want OK", out)
	}
	if target.breakSet {
		t.Errorf("ClearBreak should have cleared the breakpoint flag")
	}
}

func TestVContContinueInvokesTargetWithNoReply(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "vCont;c")
	if string(out) != "+" {
		t.Errorf("vCont;c reply = %q, want just the ack '+' (no framed reply)", out)
	}
	if !target.continued {
		t.Errorf("Continue was not invoked")
	}
}

func TestVContStepInvokesTargetWithNoReply(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "vCont;s")
	if string(out) != "+" {
		t.Errorf("vCont;s reply = %q, want just the ack '+'", out)
	}
	if !target.stepped {
		t.Errorf("Step was not invoked")
	}
}

func TestVContQuerySupported(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "vCont?")
	if !bytes.Contains(out, []byte("vCont;c;C;s;S")) {
		t.Errorf("vCont? reply = %q, want the supported-actions list", out)
	}
}

func TestKillProducesNoReply(t *testing.T) {
	target := newFakeTarget()
	s := testSession(target.asTarget())

	out := feedPacket(s, "k")
	if string(out) != "+" {
		t.Errorf("'k' reply = %q, want just the ack '+' with no framed packet", out)
	}
}

func TestStopPacketFramesS05(t *testing.T) {
	got := StopPacket()
	want := "$S05#" + fmt.Sprintf("%02x", byte('S')+byte('0')+byte('5'))
	if string(got) != want {
		t.Errorf("StopPacket() = %q, want %q", got, want)
	}
}
