package armcpu

/*
 * cortexa9sim - CP15 register-file test cases.
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

func TestCP15BankedRegisterIsolatesSecureAndNonSecure(t *testing.T) {
	f := newCP15File()
	if err := f.Write(2, 0, 0, 0, 0xAAAA, true, true); err != nil {
		t.Fatalf("secure TTBR0 write failed: %v", err)
	}
	if err := f.Write(2, 0, 0, 0, 0xBBBB, true, false); err != nil {
		t.Fatalf("non-secure TTBR0 write failed: %v", err)
	}

	got, err := f.Read(2, 0, 0, 0, true, true)
	if err != nil || got != 0xAAAA {
		t.Errorf("secure TTBR0 read got %#x, %v; want 0xAAAA, nil", got, err)
	}
	got, err = f.Read(2, 0, 0, 0, true, false)
	if err != nil || got != 0xBBBB {
		t.Errorf("non-secure TTBR0 read got %#x, %v; want 0xBBBB, nil", got, err)
	}
}

func TestCP15UnprivilegedWriteRejected(t *testing.T) {
	f := newCP15File()
	err := f.Write(1, 0, 0, 0, 1, false, true)
	if err == nil {
		t.Fatalf("expected access violation for unprivileged SCTLR write")
	}
	if _, ok := err.(*AccessViolationError); !ok {
		t.Errorf("expected *AccessViolationError, got %T", err)
	}
}

func TestCP15ReadOnlyRegisterRejectsWrite(t *testing.T) {
	f := newCP15File()
	err := f.Write(0, 0, 0, 0, 1, true, true)
	if err == nil {
		t.Fatalf("expected access violation writing MIDR (read-only)")
	}
}

func TestCP15ReadOnlyRegisterReadableUnprivileged(t *testing.T) {
	f := newCP15File()
	got, err := f.Read(0, 0, 0, 0, false, false)
	if err != nil {
		t.Fatalf("MIDR should be readable without privilege: %v", err)
	}
	if got != 0x412FC092 {
		t.Errorf("MIDR reset value = %#x, want %#x", got, 0x412FC092)
	}
}

func TestCP15UnknownSelectorErrors(t *testing.T) {
	f := newCP15File()
	if _, err := f.Read(15, 7, 15, 7, true, true); err == nil {
		t.Fatalf("expected NoSuchRegisterError for an unregistered selector")
	} else if _, ok := err.(*NoSuchRegisterError); !ok {
		t.Errorf("expected *NoSuchRegisterError, got %T", err)
	}
}

func TestCP15MVBARRequiresSecure(t *testing.T) {
	f := newCP15File()
	if err := f.Write(12, 0, 0, 1, 0x1000, true, false); err == nil {
		t.Fatalf("expected access violation writing MVBAR from non-secure state")
	}
	if err := f.Write(12, 0, 0, 1, 0x1000, true, true); err != nil {
		t.Errorf("MVBAR write from secure state should succeed: %v", err)
	}
}

func TestSCRFieldHelpers(t *testing.T) {
	v := uint32(0)
	v |= 1 << 1 // IRQ
	v |= 1 << 3 // EA
	if !scrIRQ(v) {
		t.Errorf("scrIRQ should report set")
	}
	if !scrEA(v) {
		t.Errorf("scrEA should report set")
	}
	if scrFIQ(v) {
		t.Errorf("scrFIQ should report clear")
	}
	if scrNS(v) {
		t.Errorf("scrNS should report clear")
	}
}
