package armcpu

/*
 * cortexa9sim - register file banking test cases.
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

import "testing"

func TestRegisterFileLowRegsSharedAcrossModes(t *testing.T) {
	rf := newRegisterFile()
	rf.Write(3, ModeUser, 0x111)
	if got := rf.Read(3, ModeSVC); got != 0x111 {
		t.Errorf("R3 read under SVC = %#x, want %#x (low regs are unbanked)", got, 0x111)
	}
}

func TestRegisterFileFIQBanksR8ThroughR14(t *testing.T) {
	rf := newRegisterFile()
	rf.Write(10, ModeUser, 0xAAA)
	rf.Write(10, ModeFIQ, 0xBBB)

	if got := rf.Read(10, ModeUser); got != 0xAAA {
		t.Errorf("R10 under User = %#x, want %#x", got, 0xAAA)
	}
	if got := rf.Read(10, ModeFIQ); got != 0xBBB {
		t.Errorf("R10 under FIQ = %#x, want %#x", got, 0xBBB)
	}
}

func TestRegisterFilePrivilegedBankSP_LR(t *testing.T) {
	rf := newRegisterFile()
	rf.Write(13, ModeSVC, 0x1000)
	rf.Write(13, ModeAbort, 0x2000)
	rf.Write(14, ModeSVC, 0x3000)

	if got := rf.Read(13, ModeSVC); got != 0x1000 {
		t.Errorf("SP under SVC = %#x, want %#x", got, 0x1000)
	}
	if got := rf.Read(13, ModeAbort); got != 0x2000 {
		t.Errorf("SP under Abort = %#x, want %#x", got, 0x2000)
	}
	if got := rf.Read(14, ModeSVC); got != 0x3000 {
		t.Errorf("LR under SVC = %#x, want %#x", got, 0x3000)
	}
}

func TestRegisterFileSystemAliasesUserSP_LR(t *testing.T) {
	rf := newRegisterFile()
	rf.Write(13, ModeSystem, 0x5000)
	if got := rf.Read(13, ModeUser); got != 0x5000 {
		t.Errorf("System mode should alias User's SP, got %#x want %#x", got, 0x5000)
	}
}

func TestRegisterFilePCUnbanked(t *testing.T) {
	rf := newRegisterFile()
	rf.Write(15, ModeIRQ, 0xCAFE)
	if got := rf.Read(15, ModeSVC); got != 0xCAFE {
		t.Errorf("PC should not bank by mode, got %#x want %#x", got, 0xCAFE)
	}
}
