/*
 * cortexa9sim - banked general-purpose register file.
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

// registerFile holds the sixteen architectural registers with the banking
// invariants from spec §3: R0..R7 and R15 are shared across every mode;
// R8..R12 are additionally private to FIQ; R13 (SP) and R14 (LR) are
// private to every privileged mode except System (which aliases User).
type registerFile struct {
	usr [15]uint32            // R0..R14 as seen by User/System
	fiq [7]uint32             // R8..R14 private to FIQ
	priv map[uint32][2]uint32 // mode -> {R13, R14} for SVC/Abort/UND/IRQ/Monitor
	pc   uint32               // R15
}

func newRegisterFile() *registerFile {
	rf := &registerFile{priv: make(map[uint32][2]uint32)}
	for _, m := range []uint32{ModeSVC, ModeAbort, ModeUndefined, ModeIRQ, ModeMonitor} {
		rf.priv[m] = [2]uint32{}
	}
	return rf
}

func hasPrivateR13R14(mode uint32) bool {
	switch mode {
	case ModeSVC, ModeAbort, ModeUndefined, ModeIRQ, ModeMonitor:
		return true
	default:
		return false
	}
}

// Read resolves register i through mode, per spec §3's banking table.
func (rf *registerFile) Read(i int, mode uint32) uint32 {
	switch {
	case i == 15:
		return rf.pc
	case i < 8:
		return rf.usr[i]
	case mode == ModeFIQ && i <= 14:
		return rf.fiq[i-8]
	case (i == 13 || i == 14) && hasPrivateR13R14(mode):
		bank := rf.priv[mode]
		return bank[i-13]
	default:
		return rf.usr[i]
	}
}

// Write resolves register i through mode and stores v there.
func (rf *registerFile) Write(i int, mode uint32, v uint32) {
	switch {
	case i == 15:
		rf.pc = v
	case i < 8:
		rf.usr[i] = v
	case mode == ModeFIQ && i <= 14:
		rf.fiq[i-8] = v
	case (i == 13 || i == 14) && hasPrivateR13R14(mode):
		bank := rf.priv[mode]
		bank[i-13] = v
		rf.priv[mode] = bank
	default:
		rf.usr[i] = v
	}
}
