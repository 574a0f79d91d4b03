/*
 * cortexa9sim - ARM instruction decode/execute.
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

// execute dispatches one fetched ARM-state instruction word, per spec
// §4.5.1/§4.5.2. Unconditional execution (cond==0xF) covers only BLX and
// is not modeled; the source likewise scopes its decode table to the
// common condition-coded subset.
func (c *CPU) execute(insn uint32) {
	cond := insn >> 28
	if !EvalCondition(cond, c.cpsr.N(), c.cpsr.Z(), c.cpsr.Cf(), c.cpsr.V()) {
		return
	}

	switch {
	case insn&0x0FFFFFF0 == 0x012FFF10:
		c.execBX(insn)
	case insn&0x0F000000 == 0x0F000000:
		c.execSVC(insn)
	case insn&0x0E000000 == 0x0A000000:
		c.execBranch(insn)
	case insn&0x0FB00000 == 0x01000000 && insn&0x00000010 == 0:
		c.execMRS(insn)
	case insn&0x0FB00000 == 0x01200000 && insn&0x00000010 == 0:
		c.execMSR(insn)
	case insn&0x0F000010 == 0x0E000010:
		c.execCoprocessor(insn)
	case insn&0x0FE0007F == 0x07C0001F:
		c.execBFC(insn)
	case insn&0x0C000000 == 0x00000000:
		c.execDataProcessing(insn)
	case insn&0x0C000000 == 0x04000000:
		c.execSingleTransfer(insn)
	case insn&0x0E000000 == 0x08000000:
		c.execBlockTransfer(insn)
	default:
		c.TakeException(ExcUndefined, c.regs.Read(15, c.cpsr.Mode())-4)
	}
}

func (c *CPU) execBX(insn uint32) {
	rm := insn & 0xF
	target := c.regs.Read(int(rm), c.cpsr.Mode())
	c.cpsr.SetT(target&1 != 0)
	c.regs.Write(15, c.cpsr.Mode(), target&^1)
}

func (c *CPU) execSVC(insn uint32) {
	_ = insn & 0x00FFFFFF // the immediate comment is surfaced to the GDB stub via the syscall trap, not decoded here
	c.TakeException(ExcSVC, c.regs.Read(15, c.cpsr.Mode())-4)
}

// execBranch computes B/BL per spec §4.5.1/§4.5.2's PC+8 pipeline view.
// Step has already advanced R15 to fetch_addr+4 (the address of the next
// instruction) before calling execute; the branch target and link value
// are both taken relative to that, not relative to R15 as read.
func (c *CPU) execBranch(insn uint32) {
	link := insn&0x01000000 != 0
	imm24 := insn & 0x00FFFFFF
	offset := int32(imm24<<8) >> 6 // sign-extend 24-bit word offset to a byte offset
	pc := c.regs.Read(15, c.cpsr.Mode())
	if link {
		// R14 = address of the instruction after BL, which is exactly
		// what R15 already holds (fetch_addr+4).
		c.regs.Write(14, c.cpsr.Mode(), pc)
	}
	// Target = fetch_addr+8+offset = (R15 as read)+4+offset.
	c.regs.Write(15, c.cpsr.Mode(), uint32(int32(pc+4)+offset))
}

// execBFC implements BFC Rd, #lsb, #width (spec §4.5.2): clears bits
// [msb:lsb] of Rd to zero, leaving the rest of the register unchanged.
// msb < lsb is UNPREDICTABLE in the architecture; this simulator takes
// the Undefined instruction exception rather than guess.
func (c *CPU) execBFC(insn uint32) {
	mode := c.cpsr.Mode()
	msb := (insn >> 16) & 0x1F
	rd := (insn >> 12) & 0xF
	lsb := (insn >> 7) & 0x1F

	if msb < lsb {
		c.TakeException(ExcUndefined, c.regs.Read(15, mode)-4)
		return
	}

	width := msb - lsb + 1
	mask := ((uint32(1) << width) - 1) << lsb
	c.regs.Write(int(rd), mode, c.regs.Read(int(rd), mode)&^mask)
}

func (c *CPU) execMRS(insn uint32) {
	rd := (insn >> 12) & 0xF
	readSPSR := insn&0x00400000 != 0
	var v uint32
	if readSPSR {
		v = c.spsr.Get(c.cpsr.Mode())
	} else {
		v = c.cpsr.Word()
	}
	c.regs.Write(int(rd), c.cpsr.Mode(), v)
}

func (c *CPU) execMSR(insn uint32) {
	writeSPSR := insn&0x00400000 != 0
	fieldMask := (insn >> 16) & 0xF
	var value uint32
	if insn&0x02000000 != 0 {
		value, _ = ARMExpandImmC(insn&0xFFF, c.cpsr.Cf())
	} else {
		rm := insn & 0xF
		value = c.regs.Read(int(rm), c.cpsr.Mode())
	}

	var mask uint32
	if fieldMask&0x1 != 0 {
		mask |= 0x000000FF
	}
	if fieldMask&0x2 != 0 {
		mask |= 0x0000FF00
	}
	if fieldMask&0x4 != 0 {
		mask |= 0x00FF0000
	}
	if fieldMask&0x8 != 0 {
		mask |= 0xFF000000
	}
	if !c.cpsr.Privileged() {
		mask &= 0xFF000000 // unprivileged MSR may only touch the flags byte
	}

	if writeSPSR {
		cur := c.spsr.Get(c.cpsr.Mode())
		c.spsr.Set(c.cpsr.Mode(), (cur &^ mask)|(value&mask))
		return
	}
	cur := c.cpsr.Word()
	c.cpsr.SetWord((cur &^ mask) | (value & mask))
}
