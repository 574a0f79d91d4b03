/*
 * cortexa9sim - exception-entry sequencer.
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

// routeException computes the destination mode and which of A/F get
// forced to 1 on entry, per spec §4.5.4's dispatch table parameterized by
// (kind, secure, SCR.{EA,IRQ,FIQ,FW,AW}). I is always set by the caller;
// it is never part of this table because every exception kind disables
// IRQ on entry.
func (c *CPU) routeException(kind ExceptionKind) (newMode uint32, setA, setF bool) {
	secure := c.secureState()
	scr := c.cp15.scr()

	switch kind {
	case ExcUndefined:
		return ModeUndefined, false, false
	case ExcSVC:
		return ModeSVC, false, false
	case ExcSMC:
		return ModeMonitor, true, true
	case ExcPrefetchAbort, ExcDataAbort:
		if secure && scrEA(scr) {
			return ModeMonitor, true, true
		}
		if secure {
			return ModeAbort, true, false
		}
		return ModeAbort, scrAW(scr), false
	case ExcIRQ:
		if secure && scrIRQ(scr) {
			return ModeMonitor, true, true
		}
		return ModeIRQ, false, false
	case ExcFIQ:
		if secure && scrFIQ(scr) {
			return ModeMonitor, true, true
		}
		return ModeFIQ, false, true
	default:
		return ModeUndefined, false, false
	}
}

// TakeException performs exception entry for kind, per spec §4.5.4.
// savedIP is the PC at the point of the fault/exception; Thumb state is
// always false in this simulator (Thumb decode is a non-goal).
func (c *CPU) TakeException(kind ExceptionKind, savedIP uint32) {
	if c.metrics != nil {
		c.metrics.ExceptionsTaken.WithLabelValues(exceptionKindName(kind)).Inc()
	}
	newMode, setA, setF := c.routeException(kind)
	savedCPSR := c.cpsr.Word()

	thumbIdx := 0
	lr := savedIP + linkOffset[kind][thumbIdx]

	targetMonitor := newMode == ModeMonitor
	if targetMonitor || hasPrivateR13R14(newMode) {
		c.spsr.Set(newMode, savedCPSR)
	}
	// LR is written in the banked R14 of the destination mode (the PC
	// banking in registerFile resolves this once CPSR.Mode has changed).
	c.cpsr.SetMode(newMode)
	c.regs.Write(14, newMode, lr)

	if setA {
		c.cpsr.SetA(true)
	}
	if setF {
		c.cpsr.SetF(true)
	}
	c.cpsr.SetI(true)

	sctlr := c.cp15.sctlr(c.secureState())
	c.cpsr.SetT(sctlrTE(sctlr))
	c.cpsr.SetE(sctlrEE(sctlr))
	c.cpsr.ClearIT()

	vectorBase := c.vectorBase(newMode, sctlr)
	c.regs.Write(15, newMode, vectorBase+vectorOffset[kind])

	// Clear the taken kind from the pending-exception set on successful
	// entry: spec §9 point 3, resolved per DESIGN.md (the source leaves
	// this open with a "Should we clear the interrupt?" comment).
	c.clearPending(kind)
}

// vectorBase selects MVBAR (entering Monitor), VBAR (SCTLR.V=0), or the
// high vector 0xFFFF0000 (SCTLR.V=1), per spec §4.5.4 step 5.
func (c *CPU) vectorBase(newMode uint32, sctlr uint32) uint32 {
	if newMode == ModeMonitor {
		return c.cp15.mvbar(true)
	}
	if !sctlrV(sctlr) {
		return c.cp15.vbar(c.secureState())
	}
	return 0xFFFF0000
}

func exceptionKindName(kind ExceptionKind) string {
	switch kind {
	case ExcUndefined:
		return "undefined"
	case ExcSMC:
		return "smc"
	case ExcSVC:
		return "svc"
	case ExcPrefetchAbort:
		return "prefetch_abort"
	case ExcDataAbort:
		return "data_abort"
	case ExcIRQ:
		return "irq"
	case ExcFIQ:
		return "fiq"
	default:
		return "unknown"
	}
}

// secureState reports whether the CPU is currently executing in the
// Secure world: Monitor mode is always secure; otherwise it is governed
// by SCR.NS.
func (c *CPU) secureState() bool {
	if c.cpsr.Mode() == ModeMonitor {
		return true
	}
	return !scrNS(c.cp15.scr())
}
