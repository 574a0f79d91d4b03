/*
 * cortexa9sim - word-addressed memory nodes.
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

// Package memory implements the RAM and ROM Addressable Nodes: flat,
// word-addressed backing stores with no banking of their own.
package memory

import "github.com/rcornwell/cortexa9sim/internal/addr"

// RAM is a word-addressed backing store of size words. Reads and writes
// mask the address down to a word boundary, matching controllers/memory.py's
// "_read"/"_write" masking address & ~3.
type RAM struct {
	Name string
	word []uint32
}

// NewRAM allocates a RAM of size words.
func NewRAM(name string, size int) *RAM {
	return &RAM{Name: name, word: make([]uint32, size)}
}

func (m *RAM) index(address uint32) uint32 {
	return (address &^ 3) / 4
}

func (m *RAM) Read(address uint32, _ string) (uint32, error) {
	i := m.index(address)
	if int(i) >= len(m.word) {
		return 0, &addr.OutOfRangeError{Addr: address}
	}
	return m.word[i], nil
}

func (m *RAM) Write(address uint32, value uint32, _ string) error {
	i := m.index(address)
	if int(i) >= len(m.word) {
		return &addr.OutOfRangeError{Addr: address}
	}
	m.word[i] = value
	return nil
}

// Size reports the node's capacity in words.
func (m *RAM) Size() int {
	return len(m.word)
}

// ROM behaves like RAM for reads but rejects runtime writes. InitWrite is
// the privileged bypass used by the boot loader to populate the image.
type ROM struct {
	ram *RAM
}

// NewROM allocates a ROM of size words.
func NewROM(name string, size int) *ROM {
	return &ROM{ram: NewRAM(name, size)}
}

func (r *ROM) Read(address uint32, bank string) (uint32, error) {
	return r.ram.Read(address, bank)
}

func (r *ROM) Write(address uint32, _ uint32, _ string) error {
	return &addr.ReadOnlyMemoryError{Addr: address}
}

// InitWrite bypasses the read-only check; used only by the boot loader.
func (r *ROM) InitWrite(address uint32, value uint32) error {
	return r.ram.Write(address, value, "")
}
