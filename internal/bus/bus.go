/*
 * cortexa9sim - address-decoding interconnect.
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

// Package bus implements the flat, banked, and implicit-banked address
// decoders that sit between the CPU core and its memory-mapped devices.
package bus

import (
	"log/slog"

	"github.com/rcornwell/cortexa9sim/internal/addr"
)

// slave is one entry of a bus's region table: addresses in [Start, End)
// are forwarded to Node at (addr - Start + Offset).
type slave struct {
	start  uint32
	end    uint32
	offset uint32
	node   addr.Node
}

func (s slave) contains(a uint32) bool {
	return a >= s.start && a < s.end
}

// Bus is a banked address decoder. An unbanked (flat) bus is simply a Bus
// whose callers always pass the empty bank. AddressScale resolves the
// source's historical 1024x coordinate multiplier (spec Open Question on
// address units, DESIGN.md #1); new code should leave it at its default
// of 1.
type Bus struct {
	Name         string
	AddressScale uint32
	Implicit     bool // banked bus: fall back to DefaultBank when requested bank is empty
	slaves       map[string][]slave
}

// New creates an empty bus. scale of 0 is normalized to 1.
func New(name string, scale uint32, implicit bool) *Bus {
	if scale == 0 {
		scale = 1
	}
	return &Bus{
		Name:         name,
		AddressScale: scale,
		Implicit:     implicit,
		slaves:       make(map[string][]slave),
	}
}

// Attach registers node to answer for [start, end) in bank, translating
// accesses to (addr - start + offset) before forwarding. start/end are
// raw configuration coordinates; they are multiplied by AddressScale here
// so callers write memory maps in natural units.
func (b *Bus) Attach(bank string, start, end, offset uint32, node addr.Node) {
	if bank == "" {
		bank = addr.DefaultBank
	}
	b.slaves[bank] = append(b.slaves[bank], slave{
		start:  start * b.AddressScale,
		end:    end * b.AddressScale,
		offset: offset,
		node:   node,
	})
}

func (b *Bus) resolve(bank string) ([]slave, error) {
	if bank == "" {
		bank = addr.DefaultBank
	}
	list, ok := b.slaves[bank]
	if ok {
		return list, nil
	}
	if b.Implicit {
		return b.slaves[addr.DefaultBank], nil
	}
	return nil, &addr.BankNotFoundError{Bank: bank}
}

// Read dispatches to the first slave whose region contains addr.
func (b *Bus) Read(address uint32, bank string) (uint32, error) {
	list, err := b.resolve(bank)
	if err != nil {
		return 0, err
	}
	for _, s := range list {
		if s.contains(address) {
			return s.node.Read(address-s.start+s.offset, "")
		}
	}
	slog.Warn("bus read out of range", "bus", b.Name, "addr", address, "bank", bank)
	return 0, &addr.OutOfRangeError{Addr: address, Bank: bank}
}

// Write dispatches to the first slave whose region contains addr.
func (b *Bus) Write(address uint32, value uint32, bank string) error {
	list, err := b.resolve(bank)
	if err != nil {
		return err
	}
	for _, s := range list {
		if s.contains(address) {
			return s.node.Write(address-s.start+s.offset, value, "")
		}
	}
	slog.Warn("bus write out of range", "bus", b.Name, "addr", address, "bank", bank)
	return &addr.OutOfRangeError{Addr: address, Bank: bank}
}

// EngineIDFunc resolves the identity of the calling goroutine's execution
// engine, used by an implicit-banked bus to pick a bank without the bank
// being threaded explicitly through every call site. The source reads
// this out of Python thread-local state; this implementation requires it
// be supplied explicitly and captured once at core construction time
// (spec §9's "avoid ambient state" refactor note).
type EngineIDFunc func() string

// ImplicitBus wraps a Bus so that Read/Write with an empty bank resolve
// the bank via idFn instead of always hitting DefaultBank. This is how
// per-core translation views plug into one shared bus.
type ImplicitBus struct {
	*Bus
	idFn EngineIDFunc
}

// NewImplicit wraps bus with an engine-id resolver.
func NewImplicit(b *Bus, idFn EngineIDFunc) *ImplicitBus {
	return &ImplicitBus{Bus: b, idFn: idFn}
}

func (ib *ImplicitBus) Read(address uint32, bank string) (uint32, error) {
	if bank == "" {
		bank = ib.idFn()
	}
	return ib.Bus.Read(address, bank)
}

func (ib *ImplicitBus) Write(address uint32, value uint32, bank string) error {
	if bank == "" {
		bank = ib.idFn()
	}
	return ib.Bus.Write(address, value, bank)
}
