/*
 * cortexa9sim - ARM Cortex-A9 CPU core.
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

// Package armcpu implements the ARMv7-A (Cortex-A9 profile) execution
// core: the banked register file, CPSR/SPSR, the CP15 coprocessor,
// the fetch-decode-execute loop, and the exception-entry sequencer.
// Grounded throughout on processors/arm/cortext_a9.py.
package armcpu

// Processor modes, CPSR.M[4:0].
const (
	ModeUser       = 0x10
	ModeFIQ        = 0x11
	ModeIRQ        = 0x12
	ModeSVC        = 0x13
	ModeMonitor    = 0x16
	ModeAbort      = 0x17
	ModeUndefined  = 0x1B
	ModeSystem     = 0x1F
)

// CPSR bit positions.
const (
	cpsrN = 31
	cpsrZ = 30
	cpsrC = 29
	cpsrV = 28
	cpsrQ = 27
	cpsrJ = 24
	cpsrE = 9
	cpsrA = 8
	cpsrI = 7
	cpsrF = 6
	cpsrT = 5
)

const (
	cpsrGEShift = 16
	cpsrGEMask  = 0xF
	cpsrModeMask = 0x1F
)

// ExceptionKind is one of the seven ARM exception types (spec §4.5.4).
type ExceptionKind int

const (
	ExcUndefined ExceptionKind = iota
	ExcSMC
	ExcSVC
	ExcPrefetchAbort
	ExcDataAbort
	ExcIRQ
	ExcFIQ
	numExceptionKinds
)

// linkOffset[kind] = {ARM offset, Thumb offset}; this simulator only
// executes ARM-state code (Thumb decode is a non-goal) but the table is
// kept two-wide to mirror the source and the spec verbatim.
var linkOffset = [numExceptionKinds][2]uint32{
	ExcUndefined:     {4, 2},
	ExcSMC:           {4, 4},
	ExcSVC:           {4, 2},
	ExcPrefetchAbort: {4, 4},
	ExcDataAbort:     {8, 8},
	ExcIRQ:           {4, 4},
	ExcFIQ:           {4, 4},
}

// vectorOffset[kind] is the offset from the vector base (spec §4.5.4).
var vectorOffset = [numExceptionKinds]uint32{
	ExcUndefined:     0x04,
	ExcSMC:           0x08,
	ExcSVC:           0x08,
	ExcPrefetchAbort: 0x0C,
	ExcDataAbort:     0x10,
	ExcIRQ:           0x18,
	ExcFIQ:           0x1C,
}

// modeFor[kind] is the CPSR mode entered for that exception kind. IRQ/FIQ
// and the aborts additionally depend on SCR routing (see exception.go);
// this table gives the mode absent any Security Extensions redirection.
var modeFor = [numExceptionKinds]uint32{
	ExcUndefined:     ModeUndefined,
	ExcSMC:           ModeMonitor,
	ExcSVC:           ModeSVC,
	ExcPrefetchAbort: ModeAbort,
	ExcDataAbort:     ModeAbort,
	ExcIRQ:           ModeIRQ,
	ExcFIQ:           ModeFIQ,
}

// Shift types used by the barrel shifter (spec §4.5.2).
type ShiftType int

const (
	ShiftLSL ShiftType = iota
	ShiftLSR
	ShiftASR
	ShiftROR
	ShiftRRX
)
