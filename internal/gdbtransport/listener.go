/*
 * cortexa9sim - TCP transport for the GDB Remote Serial Protocol stub.
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

// Package gdbtransport runs the GDB stub over a single-client TCP socket,
// grounded on telnet/listener.go's accept/handle goroutine pair with a
// shutdown channel and sync.WaitGroup, and on char_device.py's one-socket,
// short-read-timeout framing for the GDB serial line.
package gdbtransport

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/rcornwell/cortexa9sim/internal/gdbstub"
)

// Listener accepts one GDB client connection at a time on addr and drives
// its packets through a gdbstub.Session, per spec §4.6/§6.
type Listener struct {
	addr     string
	target   gdbstub.Target
	log      *slog.Logger
	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
}

func New(addr string, target gdbstub.Target, log *slog.Logger) *Listener {
	return &Listener{
		addr:     addr,
		target:   target,
		log:      log,
		shutdown: make(chan struct{}),
	}
}

// Start opens the listening socket and spawns the accept loop goroutine.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.listener = ln
	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Stop closes the listener and waits for the accept loop to exit.
func (l *Listener) Stop() {
	close(l.shutdown)
	if l.listener != nil {
		l.listener.Close()
	}
	l.wg.Wait()
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.shutdown:
				return
			default:
				l.log.Error("gdb accept failed", "err", err)
				return
			}
		}
		l.wg.Add(1)
		l.handle(conn)
	}
}

// handle services one client connection: a read loop with a short timeout
// so it can also notice stop-signal events fired by the target (a
// breakpoint hit on the CPU goroutine), mirroring the source's
// socket.timeout branch in GDBStubServer.run.
func (l *Listener) handle(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	session := gdbstub.NewSession(l.target, l.log)
	stop := l.target.StopSignal
	var stopCh <-chan struct{}
	if stop != nil {
		stopCh = stop()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		one := make([]byte, 1)
		for {
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
			n, err := conn.Read(one)
			if n == 1 {
				if out := session.FeedByte(one[0]); len(out) > 0 {
					conn.Write(out)
				}
				continue
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-l.shutdown:
			return
		case <-done:
			return
		case <-stopCh:
			conn.Write(gdbstub.StopPacket())
		}
	}
}
