package memory

/*
 * cortexa9sim - memory node test cases.
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

import (
	"testing"

	"github.com/rcornwell/cortexa9sim/internal/addr"
)

func TestRAMReadWriteRoundTrip(t *testing.T) {
	ram := NewRAM("test ram", 4)
	if err := ram.Write(4, 0xdeadbeef, ""); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ram.Read(4, "")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("round trip got %#x, want %#x", got, 0xdeadbeef)
	}
}

func TestRAMMasksUnalignedAddress(t *testing.T) {
	ram := NewRAM("test ram", 4)
	if err := ram.Write(4, 0x11223344, ""); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	for offset := uint32(0); offset < 4; offset++ {
		got, err := ram.Read(4+offset, "")
		if err != nil {
			t.Fatalf("read at offset %d failed: %v", offset, err)
		}
		if got != 0x11223344 {
			t.Errorf("read at unaligned offset %d got %#x, want %#x", offset, got, 0x11223344)
		}
	}
}

func TestRAMOutOfRange(t *testing.T) {
	ram := NewRAM("test ram", 2)
	if _, err := ram.Read(8, ""); err == nil {
		t.Fatalf("expected out-of-range error, got nil")
	} else if _, ok := err.(*addr.OutOfRangeError); !ok {
		t.Errorf("expected *addr.OutOfRangeError, got %T", err)
	}
	if err := ram.Write(8, 1, ""); err == nil {
		t.Fatalf("expected out-of-range error, got nil")
	}
}

func TestROMRejectsWrite(t *testing.T) {
	rom := NewROM("test rom", 2)
	if err := rom.Write(0, 1, ""); err == nil {
		t.Fatalf("expected read-only error, got nil")
	} else if _, ok := err.(*addr.ReadOnlyMemoryError); !ok {
		t.Errorf("expected *addr.ReadOnlyMemoryError, got %T", err)
	}
}

func TestROMInitWriteBypassesReadOnly(t *testing.T) {
	rom := NewROM("test rom", 2)
	if err := rom.InitWrite(0, 0xcafef00d); err != nil {
		t.Fatalf("InitWrite failed: %v", err)
	}
	got, err := rom.Read(0, "")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != 0xcafef00d {
		t.Errorf("got %#x, want %#x", got, 0xcafef00d)
	}
}

func TestRAMSize(t *testing.T) {
	ram := NewRAM("test ram", 7)
	if ram.Size() != 7 {
		t.Errorf("Size() = %d, want 7", ram.Size())
	}
}
