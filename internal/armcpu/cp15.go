/*
 * cortexa9sim - CP15 system control coprocessor register file.
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

import "fmt"

// cp15Selector is the (CRn, opc1, CRm, opc2) tuple MCR/MRC decode to.
type cp15Selector struct {
	crn, opc1, crm, opc2 uint32
}

// AccessViolationError is raised by a CP15 access without the required
// privilege or secure state.
type AccessViolationError struct {
	Selector string
}

func (e *AccessViolationError) Error() string {
	return "CP15 access violation: " + e.Selector
}

// NoSuchRegisterError is raised by an unrecognized CP15 selector.
type NoSuchRegisterError struct {
	Selector string
}

func (e *NoSuchRegisterError) Error() string {
	return "no such CP15 register: " + e.Selector
}

func (s cp15Selector) String() string {
	return fmt.Sprintf("c%d,%d,c%d,%d", s.crn, s.opc1, s.crm, s.opc2)
}

type cp15Kind int

const (
	kindPlain cp15Kind = iota
	kindBanked
	kindReadOnly
)

type cp15Descriptor struct {
	name          string
	kind          cp15Kind
	requireSecure bool // in addition to privilege
	reset         uint32
}

var cp15Registry = map[cp15Selector]cp15Descriptor{
	{0, 0, 0, 0}:  {"MIDR", kindReadOnly, false, 0x412FC092},
	{1, 0, 0, 0}:  {"SCTLR", kindBanked, false, 0},
	{1, 0, 1, 0}:  {"SCR", kindPlain, true, 0},
	{2, 0, 0, 0}:  {"TTBR0", kindBanked, false, 0},
	{2, 0, 0, 1}:  {"TTBR1", kindBanked, false, 0},
	{2, 0, 0, 2}:  {"TTBCR", kindBanked, false, 0},
	{3, 0, 0, 0}:  {"DACR", kindBanked, false, 0},
	{5, 0, 0, 0}:  {"DFSR", kindBanked, false, 0},
	{5, 0, 0, 1}:  {"IFSR", kindBanked, false, 0},
	{6, 0, 0, 0}:  {"DFAR", kindBanked, false, 0},
	{6, 0, 0, 2}:  {"IFAR", kindBanked, false, 0},
	{12, 0, 0, 0}: {"VBAR", kindBanked, false, 0},
	{12, 0, 0, 1}: {"MVBAR", kindBanked, true, 0},
	{12, 0, 1, 0}: {"ISR", kindReadOnly, false, 0},
}

// cp15File is the coprocessor register store, banked by security state
// per spec §3. Three flat maps keyed by selector (unbanked, Secure bank,
// Non-secure bank) are simpler than the source's nested-map construction
// (spec §9's refactor note).
type cp15File struct {
	plain  map[cp15Selector]uint32
	secure map[cp15Selector]uint32 // values for Secure bank of banked registers
	nonsec map[cp15Selector]uint32 // values for Non-secure bank of banked registers
}

func newCP15File() *cp15File {
	f := &cp15File{
		plain:  make(map[cp15Selector]uint32),
		secure: make(map[cp15Selector]uint32),
		nonsec: make(map[cp15Selector]uint32),
	}
	for sel, desc := range cp15Registry {
		switch desc.kind {
		case kindBanked:
			f.secure[sel] = desc.reset
			f.nonsec[sel] = desc.reset
		default:
			f.plain[sel] = desc.reset
		}
	}
	return f
}

// Read resolves a CP15 read gated by privileged/secure, per spec §4.5.5.
func (f *cp15File) Read(crn, opc1, crm, opc2 uint32, privileged, secure bool) (uint32, error) {
	sel := cp15Selector{crn, opc1, crm, opc2}
	desc, ok := cp15Registry[sel]
	if !ok {
		return 0, &NoSuchRegisterError{Selector: sel.String()}
	}
	if desc.kind != kindReadOnly && !privileged {
		return 0, &AccessViolationError{Selector: desc.name}
	}
	if desc.requireSecure && !secure {
		return 0, &AccessViolationError{Selector: desc.name}
	}
	if desc.kind == kindBanked {
		if secure {
			return f.secure[sel], nil
		}
		return f.nonsec[sel], nil
	}
	return f.plain[sel], nil
}

// Write resolves a CP15 write gated by privileged/secure, per spec §4.5.5.
func (f *cp15File) Write(crn, opc1, crm, opc2 uint32, value uint32, privileged, secure bool) error {
	sel := cp15Selector{crn, opc1, crm, opc2}
	desc, ok := cp15Registry[sel]
	if !ok {
		return &NoSuchRegisterError{Selector: sel.String()}
	}
	if desc.kind == kindReadOnly {
		return &AccessViolationError{Selector: desc.name}
	}
	if !privileged {
		return &AccessViolationError{Selector: desc.name}
	}
	if desc.requireSecure && !secure {
		return &AccessViolationError{Selector: desc.name}
	}
	if desc.kind == kindBanked {
		if secure {
			f.secure[sel] = value
		} else {
			f.nonsec[sel] = value
		}
		return nil
	}
	f.plain[sel] = value
	return nil
}

// convenience accessors used by the MMU glue and the exception sequencer;
// each bypasses the privilege/secure gate because the CPU core itself is
// always "privileged" with respect to its own bookkeeping.

func (f *cp15File) sctlr(secure bool) uint32 { return f.bankedRaw(1, 0, 0, 0, secure) }
func (f *cp15File) ttbr0(secure bool) uint32 { return f.bankedRaw(2, 0, 0, 0, secure) }
func (f *cp15File) ttbr1(secure bool) uint32 { return f.bankedRaw(2, 0, 0, 1, secure) }
func (f *cp15File) ttbcr(secure bool) uint32 { return f.bankedRaw(2, 0, 0, 2, secure) }
func (f *cp15File) dacr(secure bool) uint32  { return f.bankedRaw(3, 0, 0, 0, secure) }
func (f *cp15File) scr() uint32              { return f.plain[cp15Selector{1, 0, 1, 0}] }
func (f *cp15File) vbar(secure bool) uint32  { return f.bankedRaw(12, 0, 0, 0, secure) }
func (f *cp15File) mvbar(secure bool) uint32 { return f.bankedRaw(12, 0, 0, 1, secure) }

func (f *cp15File) setDFSR(secure bool, v uint32)  { f.setBankedRaw(5, 0, 0, 0, secure, v) }
func (f *cp15File) setIFSR(secure bool, v uint32)  { f.setBankedRaw(5, 0, 0, 1, secure, v) }
func (f *cp15File) setDFAR(secure bool, v uint32)  { f.setBankedRaw(6, 0, 0, 0, secure, v) }
func (f *cp15File) setIFAR(secure bool, v uint32)  { f.setBankedRaw(6, 0, 0, 2, secure, v) }

func (f *cp15File) bankedRaw(crn, opc1, crm, opc2 uint32, secure bool) uint32 {
	sel := cp15Selector{crn, opc1, crm, opc2}
	if secure {
		return f.secure[sel]
	}
	return f.nonsec[sel]
}

func (f *cp15File) setBankedRaw(crn, opc1, crm, opc2 uint32, secure bool, v uint32) {
	sel := cp15Selector{crn, opc1, crm, opc2}
	if secure {
		f.secure[sel] = v
	} else {
		f.nonsec[sel] = v
	}
}

// SCTLR field helpers.
func sctlrM(v uint32) bool  { return v&0x1 != 0 }
func sctlrV(v uint32) bool  { return v&(1<<13) != 0 }
func sctlrTE(v uint32) bool { return v&(1<<30) != 0 }
func sctlrEE(v uint32) bool { return v&(1<<25) != 0 }

// TTBCR.N field.
func ttbcrN(v uint32) uint32 { return v & 0x7 }

// SCR field helpers (Security Extensions routing controls).
func scrNS(v uint32) bool  { return v&0x1 != 0 }
func scrEA(v uint32) bool  { return v&(1<<3) != 0 }
func scrFIQ(v uint32) bool { return v&(1<<2) != 0 }
func scrIRQ(v uint32) bool { return v&(1<<1) != 0 }
func scrFW(v uint32) bool  { return v&(1<<4) != 0 }
func scrAW(v uint32) bool  { return v&(1<<5) != 0 }
