/*
 * cortexa9sim - MMU-mediated memory access for fetch/load/store.
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

import (
	"github.com/rcornwell/cortexa9sim/internal/mmu"
)

// mmuFaultAdapter wraps an mmu.Fault with the instruction/data distinction
// the exception sequencer needs to pick Prefetch Abort vs Data Abort.
type mmuFaultAdapter struct {
	fault       *mmu.Fault
	instruction bool
}

func (e *mmuFaultAdapter) Error() string { return e.fault.Error() }

// translate runs a virtual address through the two-level MMU walk using
// the CPU's own CP15 state, per spec §4.4.
func (c *CPU) translate(vaddr uint32, write, instruction bool) (uint32, error) {
	secure := c.secureState()
	sctlr := c.cp15.sctlr(secure)
	params := mmu.Params{
		Enabled:     sctlrM(sctlr),
		TTBR0:       c.cp15.ttbr0(secure),
		TTBR1:       c.cp15.ttbr1(secure),
		TTBCRN:      ttbcrN(c.cp15.ttbcr(secure)),
		DACR:        c.cp15.dacr(secure),
		VirtualAddr: vaddr,
		Instruction: instruction,
		Write:       write,
		SecureWorld: secure,
		Privileged:  c.cpsr.Privileged(),
	}

	physAddr, fault := mmu.Translate(params, func(addr uint32) (uint32, error) {
		return c.mem.Read(addr, "")
	})
	if fault != nil {
		if c.metrics != nil {
			c.metrics.MMUFaults.Inc()
		}
		if instruction {
			c.cp15.setIFSR(secure, fault.FSR())
			c.cp15.setIFAR(secure, vaddr)
		} else {
			c.cp15.setDFSR(secure, fault.FSR())
			c.cp15.setDFAR(secure, vaddr)
		}
		return 0, &mmuFaultAdapter{fault: fault, instruction: instruction}
	}
	return physAddr, nil
}

func (c *CPU) fetch(pc uint32) (uint32, error) {
	phys, err := c.translate(pc, false, true)
	if err != nil {
		return 0, err
	}
	return c.mem.Read(phys, "")
}

func (c *CPU) readWord(vaddr uint32) (uint32, error) {
	phys, err := c.translate(vaddr, false, false)
	if err != nil {
		return 0, err
	}
	return c.mem.Read(phys, "")
}

func (c *CPU) writeWord(vaddr, value uint32) error {
	phys, err := c.translate(vaddr, true, false)
	if err != nil {
		return err
	}
	return c.mem.Write(phys, value, "")
}

// readByte and writeByte operate through the same word-addressed bus: the
// memory model (spec §4.1) is word-granular, so byte loads/stores extract
// or merge within the containing word.
func (c *CPU) readByte(vaddr uint32) (uint8, error) {
	word, err := c.readWord(vaddr &^ 3)
	if err != nil {
		return 0, err
	}
	shift := (vaddr & 3) * 8
	return uint8(word >> shift), nil
}

// ReadVirtualByte and WriteVirtualByte expose MMU-mediated byte access to
// the GDB stub's 'm'/'M' packets (spec §4.6), which read/write the
// debuggee's virtual address space exactly as program loads/stores would.
func (c *CPU) ReadVirtualByte(vaddr uint32) (uint8, error) { return c.readByte(vaddr) }
func (c *CPU) WriteVirtualByte(vaddr uint32, v uint8) error { return c.writeByte(vaddr, v) }

func (c *CPU) writeByte(vaddr uint32, value uint8) error {
	aligned := vaddr &^ 3
	word, err := c.readWord(aligned)
	if err != nil {
		return err
	}
	shift := (vaddr & 3) * 8
	word = (word &^ (0xFF << shift)) | (uint32(value) << shift)
	return c.writeWord(aligned, word)
}
