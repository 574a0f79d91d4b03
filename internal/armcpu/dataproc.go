/*
 * cortexa9sim - data-processing, load/store, and block-transfer execution.
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

// operand2 decodes the shifter operand of a data-processing instruction
// and returns its value and shifter carry-out, per spec §4.5.2.
func (c *CPU) operand2(insn uint32) (uint32, bool) {
	cIn := c.cpsr.Cf()
	if insn&0x02000000 != 0 {
		return ARMExpandImmC(insn&0xFFF, cIn)
	}

	rm := insn & 0xF
	value := c.regs.Read(int(rm), c.cpsr.Mode())
	shiftType := DecodeRegShift((insn >> 5) & 0x3)

	if insn&0x00000010 != 0 {
		rs := (insn >> 8) & 0xF
		amount := c.regs.Read(int(rs), c.cpsr.Mode()) & 0xFF
		if amount == 0 {
			return value, cIn
		}
		return Shift(value, shiftType, amount, cIn)
	}

	imm5 := (insn >> 7) & 0x1F
	st, amount := DecodeImmShift((insn>>5)&0x3, imm5)
	return Shift(value, st, amount, cIn)
}

// execDataProcessing implements the sixteen data-processing opcodes, per
// spec §4.5.2. ADD/SUB/CMP/CMN/ADC/SBC/RSB/RSC always derive their flags
// from AddWithCarry (spec §9 point 5, DESIGN.md #5) rather than ad hoc
// comparisons.
func (c *CPU) execDataProcessing(insn uint32) {
	opcode := (insn >> 21) & 0xF
	setFlags := insn&0x00100000 != 0
	rn := (insn >> 16) & 0xF
	rd := (insn >> 12) & 0xF
	mode := c.cpsr.Mode()

	op2, shiftCarry := c.operand2(insn)
	op1 := c.regs.Read(int(rn), mode)

	var result uint32
	var carry, overflow bool
	writeback := true

	switch opcode {
	case 0x0: // AND
		result = op1 & op2
		carry = shiftCarry
	case 0x1: // EOR
		result = op1 ^ op2
		carry = shiftCarry
	case 0x2: // SUB
		result, carry, overflow = AddWithCarry(op1, ^op2, true)
	case 0x3: // RSB
		result, carry, overflow = AddWithCarry(op2, ^op1, true)
	case 0x4: // ADD
		result, carry, overflow = AddWithCarry(op1, op2, false)
	case 0x5: // ADC
		result, carry, overflow = AddWithCarry(op1, op2, c.cpsr.Cf())
	case 0x6: // SBC
		result, carry, overflow = AddWithCarry(op1, ^op2, c.cpsr.Cf())
	case 0x7: // RSC
		result, carry, overflow = AddWithCarry(op2, ^op1, c.cpsr.Cf())
	case 0x8: // TST
		result = op1 & op2
		carry = shiftCarry
		writeback = false
	case 0x9: // TEQ
		result = op1 ^ op2
		carry = shiftCarry
		writeback = false
	case 0xA: // CMP
		result, carry, overflow = AddWithCarry(op1, ^op2, true)
		writeback = false
	case 0xB: // CMN
		result, carry, overflow = AddWithCarry(op1, op2, false)
		writeback = false
	case 0xC: // ORR
		result = op1 | op2
		carry = shiftCarry
	case 0xD: // MOV
		result = op2
		carry = shiftCarry
	case 0xE: // BIC
		result = op1 &^ op2
		carry = shiftCarry
	case 0xF: // MVN
		result = ^op2
		carry = shiftCarry
	}

	if writeback {
		if rd == 15 && setFlags {
			// Returning from an exception handler via "MOVS pc, lr": restore
			// CPSR from the banked SPSR of the mode being left.
			c.cpsr.SetWord(c.spsr.Get(mode))
		}
		c.regs.Write(int(rd), mode, result)
	}
	if setFlags && rd != 15 {
		c.cpsr.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	}
}

// Load/store P/U/B/W/L bits, per the later Cortex-A9 P/U/W
// immediate-offset encoding (spec §9 point 4, DESIGN.md #4) rather than
// the source's flipped bit assignment; shared by single and block
// transfers.
const (
	ldrBitP = 0x01000000
	ldrBitU = 0x00800000
	ldrBitB = 0x00400000
	ldrBitW = 0x00200000
	ldrBitL = 0x00100000
)

func (c *CPU) loadStoreOffset(insn uint32) uint32 {
	if insn&0x02000000 == 0 {
		return insn & 0xFFF
	}
	rm := insn & 0xF
	value := c.regs.Read(int(rm), c.cpsr.Mode())
	imm5 := (insn >> 7) & 0x1F
	st, amount := DecodeImmShift((insn>>5)&0x3, imm5)
	result, _ := Shift(value, st, amount, c.cpsr.Cf())
	return result
}

func (c *CPU) execSingleTransfer(insn uint32) {
	rn := (insn >> 16) & 0xF
	rd := (insn >> 12) & 0xF
	mode := c.cpsr.Mode()

	base := c.regs.Read(int(rn), mode)
	if rn == 15 {
		// PC-relative (literal-pool) addressing reads R15 as the
		// fetch_addr+8 pipeline view; R15 itself only ever holds
		// fetch_addr+4 (Step's next-IP increment).
		base += 4
	}
	offset := c.loadStoreOffset(insn)

	var indexed uint32
	if insn&ldrBitU != 0 {
		indexed = base + offset
	} else {
		indexed = base - offset
	}

	addr := base
	if insn&ldrBitP != 0 {
		addr = indexed
	}

	if insn&ldrBitL != 0 {
		var value uint32
		var err error
		if insn&ldrBitB != 0 {
			var b uint8
			b, err = c.readByte(addr)
			value = uint32(b)
		} else {
			value, err = c.readWord(addr)
		}
		if err != nil {
			c.deliverAbort(err, c.regs.Read(15, mode)-4)
			return
		}
		c.regs.Write(int(rd), mode, value)
	} else {
		value := c.regs.Read(int(rd), mode)
		var err error
		if insn&ldrBitB != 0 {
			err = c.writeByte(addr, uint8(value))
		} else {
			err = c.writeWord(addr, value)
		}
		if err != nil {
			c.deliverAbort(err, c.regs.Read(15, mode)-4)
			return
		}
	}

	if insn&ldrBitP == 0 || insn&ldrBitW != 0 {
		c.regs.Write(int(rn), mode, indexed)
	}
}

func (c *CPU) execBlockTransfer(insn uint32) {
	rn := (insn >> 16) & 0xF
	mode := c.cpsr.Mode()
	regList := insn & 0xFFFF
	load := insn&ldrBitL != 0
	up := insn&ldrBitU != 0
	pre := insn&ldrBitP != 0
	writeback := insn&ldrBitW != 0

	base := c.regs.Read(int(rn), mode)

	count := 0
	for i := 0; i < 16; i++ {
		if regList&(1<<uint(i)) != 0 {
			count++
		}
	}

	addr := base
	if !up {
		addr -= uint32(count * 4)
		if !pre {
			addr += 4
		}
	} else if pre {
		addr += 4
	}

	for i := 0; i < 16; i++ {
		if regList&(1<<uint(i)) == 0 {
			continue
		}
		if load {
			v, err := c.readWord(addr)
			if err != nil {
				c.deliverAbort(err, c.regs.Read(15, mode)-4)
				return
			}
			c.regs.Write(i, mode, v)
		} else {
			if err := c.writeWord(addr, c.regs.Read(i, mode)); err != nil {
				c.deliverAbort(err, c.regs.Read(15, mode)-4)
				return
			}
		}
		addr += 4
	}

	if writeback {
		if up {
			c.regs.Write(int(rn), mode, base+uint32(count*4))
		} else {
			c.regs.Write(int(rn), mode, base-uint32(count*4))
		}
	}
}

// execCoprocessor implements MCR/MRC to CP15 (coprocessor #15 only; other
// coprocessor numbers are undefined in this simulator, a non-goal per the
// spec's coprocessor-bus scope).
func (c *CPU) execCoprocessor(insn uint32) {
	coproc := (insn >> 8) & 0xF
	if coproc != 15 {
		c.TakeException(ExcUndefined, c.regs.Read(15, c.cpsr.Mode())-4)
		return
	}
	opc1 := (insn >> 21) & 0x7
	crn := (insn >> 16) & 0xF
	rt := (insn >> 12) & 0xF
	crm := insn & 0xF
	opc2 := (insn >> 5) & 0x7
	toCoproc := insn&0x00100000 == 0 // MCR
	mode := c.cpsr.Mode()

	secure := c.secureState()
	privileged := c.cpsr.Privileged()

	if toCoproc {
		value := c.regs.Read(int(rt), mode)
		if err := c.cp15.Write(crn, opc1, crm, opc2, value, privileged, secure); err != nil {
			c.TakeException(ExcUndefined, c.regs.Read(15, mode)-4)
		}
		return
	}
	value, err := c.cp15.Read(crn, opc1, crm, opc2, privileged, secure)
	if err != nil {
		c.TakeException(ExcUndefined, c.regs.Read(15, mode)-4)
		return
	}
	c.regs.Write(int(rt), mode, value)
}
