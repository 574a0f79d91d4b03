/*
 * cortexa9sim - two-level MMU translation walk.
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

// Package mmu implements the ARMv7 two-level translation-table walk:
// TTBR0/TTBR1 selection by TTBCR.N, PDE/PTE dispatch for sections,
// supersections, large pages, and small pages, domain access checks via
// DACR, and the AP permission table. Grounded on
// processors/arm/cortext_a9.py's _mmu_translate.
package mmu

import "fmt"

// FaultKind classifies a translation fault. Modeled as a sum type per the
// spec's refactor note rather than an exception class hierarchy: the MMU
// boundary converts a non-nil Fault into CP15 side effects and a pending
// Abort, it never panics for control flow.
type FaultKind int

const (
	NoFault FaultKind = iota
	SectionTranslation
	PageTranslation
	SectionDomain
	PageDomain
	SectionPermission
	PagePermission
)

// FSR returns the 4-bit ARM fault-status code for this kind, per spec §4.4.
func (k FaultKind) FSR() uint32 {
	switch k {
	case SectionTranslation:
		return 0x5
	case PageTranslation:
		return 0x7
	case SectionDomain:
		return 0x9
	case PageDomain:
		return 0xB
	case SectionPermission:
		return 0xD
	case PagePermission:
		return 0xF
	default:
		return 0
	}
}

// Fault reports a translation failure at VirtualAddr. Domain is the
// faulting entry's domain field (needed by the FSR computation in §4.4).
type Fault struct {
	Kind        FaultKind
	Domain      uint32
	VirtualAddr uint32
	Instruction bool
	Write       bool
}

func (f *Fault) Error() string {
	return fmt.Sprintf("mmu fault kind=%d domain=%d addr=0x%08x", f.Kind, f.Domain, f.VirtualAddr)
}

// FSR composes the fault-status register value per §4.4: domain in bits
// [7:4], the fault code split across bits [3:0] and bit 10, bit 11 set
// for write faults.
func (f *Fault) FSR() uint32 {
	fs := f.Kind.FSR()
	v := (f.Domain << 4) | (fs & 0xF) | (((fs >> 4) & 1) << 10)
	if f.Write {
		v |= 1 << 11
	}
	return v
}

// Domain access classes (DACR 2-bit fields).
const (
	DomainNoAccess = 0
	DomainClient   = 1
	DomainReserved = 2
	DomainManager  = 3
)

// BusReader is the narrow capability the walker needs: untranslated
// physical reads of the page-table structures themselves. Grounded on the
// MMU proxy's raw_read escape in spec §4.1.
type BusReader func(physAddr uint32) (uint32, error)

// Params is the CP15 state needed to resolve one translation, captured at
// call time rather than held as ambient MMU state.
type Params struct {
	Enabled     bool // SCTLR.M
	TTBR0       uint32
	TTBR1       uint32
	TTBCRN      uint32 // TTBCR.N & 0x7
	DACR        uint32
	VirtualAddr uint32
	Instruction bool
	Write       bool
	SecureWorld bool // CPU currently executing in the Secure world
	Privileged  bool
}

// descriptor holds the fields common to every PDE/PTE dispatch outcome.
type descriptor struct {
	physBase uint32
	pageMask uint32
	xn       bool
	domain   uint32
	ap       uint32
	ns       bool
}

// Translate resolves a virtual address to a physical one, or returns a
// Fault. When Params.Enabled is false the mapping is the identity (spec
// §4.4 "When SCTLR.M == 0, translate(v) = v").
func Translate(p Params, read BusReader) (uint32, *Fault) {
	if !p.Enabled {
		return p.VirtualAddr, nil
	}

	n := p.TTBCRN & 0x7
	var base uint32
	if n == 0 {
		base = p.TTBR0
	} else {
		tmp := p.VirtualAddr & (((uint32(1) << n) - 1) << (31 - n))
		if tmp != 0 {
			base = p.TTBR1
		} else {
			base = p.TTBR0
		}
	}

	l1Index := p.VirtualAddr >> 20
	pdeAddr := (base &^ 0x3FFF) | (l1Index << 2)
	pde, err := read(pdeAddr)
	if err != nil {
		return 0, &Fault{Kind: SectionTranslation, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
	}

	var d descriptor
	pdeType := pde & 0x3
	switch pdeType {
	case 1: // page table
		l2Base := pde &^ 0x3FF
		domain := (pde >> 5) & 0xF
		l2Index := (p.VirtualAddr >> 12) & 0xFF
		pte, err := read(l2Base + (l2Index << 2))
		if err != nil {
			return 0, &Fault{Kind: PageTranslation, Domain: domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
		}
		switch {
		case pte&0x2 != 0: // small page, 4 KiB
			d = descriptor{
				physBase: pte &^ 0x3FF,
				pageMask: 0xFFF,
				xn:       pte&0x1 != 0,
				domain:   domain,
				ap:       (pte >> 4) & 0x3,
				ns:       pte&0x8 != 0,
			}
		case pte&0x1 != 0: // large page, 64 KiB
			d = descriptor{
				physBase: pte &^ 0xFFFF,
				pageMask: 0xFFFF,
				xn:       pte&0x8000 != 0,
				domain:   domain,
				ap:       (pte >> 4) & 0x3,
				ns:       pte&0x800 != 0,
			}
		default:
			return 0, &Fault{Kind: PageTranslation, Domain: domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
		}
	case 2: // section or supersection
		domain := (pde >> 5) & 0xF
		super := pde&0x40000 != 0
		if super {
			d = descriptor{
				physBase: pde &^ 0xFFFFFF,
				pageMask: 0xFFFFFF,
				xn:       pde&0x10 != 0,
				domain:   domain,
				ap:       ((pde >> 10) & 0x3) | ((pde >> 13) & 0x4),
				ns:       pde&0x80000 != 0,
			}
		} else {
			d = descriptor{
				physBase: pde &^ 0xFFFFF,
				pageMask: 0xFFFFF,
				xn:       pde&0x10 != 0,
				domain:   domain,
				ap:       ((pde >> 10) & 0x3) | ((pde >> 13) & 0x4),
				ns:       pde&0x80000 != 0,
			}
		}
	default:
		return 0, &Fault{Kind: SectionTranslation, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
	}

	domainFaultKind := SectionDomain
	permFaultKind := SectionPermission
	if pdeType == 1 {
		domainFaultKind = PageDomain
		permFaultKind = PagePermission
	}

	if !p.SecureWorld && !d.ns {
		return 0, &Fault{Kind: permFaultKind, Domain: d.domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
	}

	if d.xn && p.Instruction {
		return 0, &Fault{Kind: permFaultKind, Domain: d.domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
	}

	class := (p.DACR >> (d.domain * 2)) & 0x3
	switch class {
	case DomainNoAccess, DomainReserved:
		return 0, &Fault{Kind: domainFaultKind, Domain: d.domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
	case DomainManager:
		// no permission check
	case DomainClient:
		if fault := checkAP(d.ap, p.Privileged, p.Write); fault {
			return 0, &Fault{Kind: permFaultKind, Domain: d.domain, VirtualAddr: p.VirtualAddr, Instruction: p.Instruction, Write: p.Write}
		}
	}

	offset := p.VirtualAddr & d.pageMask
	return (d.physBase &^ d.pageMask) | offset, nil
}

// checkAP applies the access-permission table in spec §4.4 step 7.
func checkAP(ap uint32, privileged, write bool) (fault bool) {
	switch ap {
	case 0:
		return true
	case 1:
		return !privileged
	case 2:
		return !privileged && write
	case 3:
		return false
	case 5:
		return !privileged || write
	case 6:
		return write
	case 7:
		return write
	default:
		return true
	}
}
