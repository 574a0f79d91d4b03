/*
 * cortexa9sim - CPSR/SPSR status word access.
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

package armcpu

func bit(v uint32, pos uint) bool {
	return (v>>pos)&1 != 0
}

func setBit(v uint32, pos uint, set bool) uint32 {
	if set {
		return v | (1 << pos)
	}
	return v &^ (1 << pos)
}

// CPSR is the current program status word with named-field accessors.
type CPSR struct {
	word uint32
}

func (c *CPSR) Word() uint32     { return c.word }
func (c *CPSR) SetWord(w uint32) { c.word = w }

func (c *CPSR) N() bool { return bit(c.word, cpsrN) }
func (c *CPSR) Z() bool { return bit(c.word, cpsrZ) }
func (c *CPSR) Cf() bool { return bit(c.word, cpsrC) }
func (c *CPSR) V() bool { return bit(c.word, cpsrV) }
func (c *CPSR) T() bool { return bit(c.word, cpsrT) }
func (c *CPSR) A() bool { return bit(c.word, cpsrA) }
func (c *CPSR) I() bool { return bit(c.word, cpsrI) }
func (c *CPSR) F() bool { return bit(c.word, cpsrF) }

func (c *CPSR) Mode() uint32 { return c.word & cpsrModeMask }

func (c *CPSR) SetMode(m uint32) { c.word = (c.word &^ cpsrModeMask) | (m & cpsrModeMask) }
func (c *CPSR) SetT(v bool)      { c.word = setBit(c.word, cpsrT, v) }
func (c *CPSR) SetA(v bool)      { c.word = setBit(c.word, cpsrA, v) }
func (c *CPSR) SetI(v bool)      { c.word = setBit(c.word, cpsrI, v) }
func (c *CPSR) SetF(v bool)      { c.word = setBit(c.word, cpsrF, v) }
func (c *CPSR) SetE(v bool)      { c.word = setBit(c.word, cpsrE, v) }

// SetNZCV clears N,Z,C,V and then applies the supplied values, fixing the
// source's bug of OR-ing flags in without clearing first (spec §9 point
// 2, DESIGN.md #2).
func (c *CPSR) SetNZCV(n, z, cOut, v bool) {
	c.word &^= (1 << cpsrN) | (1 << cpsrZ) | (1 << cpsrC) | (1 << cpsrV)
	c.word = setBit(c.word, cpsrN, n)
	c.word = setBit(c.word, cpsrZ, z)
	c.word = setBit(c.word, cpsrC, cOut)
	c.word = setBit(c.word, cpsrV, v)
}

// ClearIT clears the IT[7:0] bits, split across CPSR[15:10] and [26:25].
func (c *CPSR) ClearIT() {
	c.word &^= (0x3F << 10) | (0x3 << 25)
}

// Privileged reports whether the current mode runs with elevated access
// (every mode except User).
func (c *CPSR) Privileged() bool {
	return c.Mode() != ModeUser
}

// spsrBank holds one saved CPSR per privileged mode (spec §3).
type spsrBank struct {
	word map[uint32]uint32
}

func newSPSRBank() *spsrBank {
	return &spsrBank{word: make(map[uint32]uint32)}
}

func (s *spsrBank) Get(mode uint32) uint32    { return s.word[mode] }
func (s *spsrBank) Set(mode uint32, w uint32) { s.word[mode] = w }
