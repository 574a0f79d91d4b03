package gdbtransport

/*
 * cortexa9sim - GDB TCP transport lifecycle test cases.
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
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/rcornwell/cortexa9sim/internal/gdbstub"
)

func testTarget() gdbstub.Target {
	regs := make(map[int]uint32)
	return gdbstub.Target{
		NumGPR:     16,
		ReadReg:    func(i int) uint32 { return regs[i] },
		WriteReg:   func(i int, v uint32) { regs[i] = v },
		ReadByte:   func(addr uint32) (uint8, error) { return 0, nil },
		WriteByte:  func(addr uint32, v uint8) error { return nil },
		Continue:   func() {},
		Step:       func() {},
		SetBreak:   func(addr uint32) {},
		ClearBreak: func(addr uint32) {},
	}
}

func TestListenerAcceptsAndEchoesStopReply(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := New("127.0.0.1:0", testTarget(), log)
	if err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer l.Stop()

	conn, err := net.Dial("tcp", l.listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	packet := framedQuestionMark()
	if _, err := conn.Write(packet); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Contains(buf[:n], []byte("T05thread:01;")) {
		t.Errorf("response %q does not contain the expected stop reply", buf[:n])
	}
}

func TestListenerStopClosesCleanly(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := New("127.0.0.1:0", testTarget(), log)
	if err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop did not return within the timeout")
	}
}

// framedQuestionMark builds the raw RSP bytes for "$?#3f" ('?' checksum 0x3f).
func framedQuestionMark() []byte {
	return []byte("$?#3f")
}
