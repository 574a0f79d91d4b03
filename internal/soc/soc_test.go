package soc

/*
 * cortexa9sim - example SoC wiring and boot loader test cases.
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
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryMapRegionsAreWellFormed(t *testing.T) {
	if MPUROMEnd <= MPUROMStart {
		t.Errorf("MPU ROM region is empty or inverted")
	}
	if L3OCMRAMEnd <= L3OCMRAMStart {
		t.Errorf("L3 OCM RAM region is empty or inverted")
	}
	if L3OCMRAMExceptionsBase < L3OCMRAMStart || L3OCMRAMExceptionsBase > L3OCMRAMEnd {
		t.Errorf("exception vector base %#x falls outside OCM RAM [%#x, %#x]",
			L3OCMRAMExceptionsBase, L3OCMRAMStart, L3OCMRAMEnd)
	}
	if L4CfgDomainEnd <= L4CfgDomainStart {
		t.Errorf("L4 config domain region is empty or inverted")
	}
	if EMIF1RegistersEnd <= EMIF1RegistersStart {
		t.Errorf("EMIF1 register region is empty or inverted")
	}
	if EMIF2RegistersEnd <= EMIF2RegistersStart {
		t.Errorf("EMIF2 register region is empty or inverted")
	}
	if DMMRegistersEnd <= DMMRegistersStart {
		t.Errorf("DMM register region is empty or inverted")
	}
	if LPDDR2DRAMEnd <= LPDDR2DRAMStart {
		t.Errorf("LPDDR2 DRAM region is empty or inverted")
	}
}

func TestNewWiresAllRegions(t *testing.T) {
	s := New(testLogger())

	if s.Bus == nil || s.ROM == nil || s.RAM == nil || s.CPU == nil || s.IC == nil {
		t.Fatalf("New left a field nil: %+v", s)
	}

	cases := []struct {
		name string
		addr uint32
	}{
		{"rom", MPUROMStart},
		{"ocm ram", L3OCMRAMStart},
		{"dmm", DMMRegistersStart},
		{"emif1", EMIF1RegistersStart},
		{"emif2", EMIF2RegistersStart},
		{"l4 config", L4CfgDomainStart},
	}
	for _, c := range cases {
		if _, err := s.Bus.Read(c.addr, ""); err != nil {
			t.Errorf("%s: read at %#x failed: %v", c.name, c.addr, err)
		}
	}

	if err := s.Bus.Write(L3OCMRAMStart, 0xDEADBEEF, ""); err != nil {
		t.Fatalf("write to ocm ram failed: %v", err)
	}
	got, err := s.Bus.Read(L3OCMRAMStart, "")
	if err != nil {
		t.Fatalf("read back from ocm ram failed: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("ocm ram readback = %#x, want 0xdeadbeef", got)
	}

	if _, err := s.Bus.Read(LPDDR2DRAMStart, ""); err == nil {
		t.Errorf("LPDDR2 DRAM is not attached by New; expected an out-of-range error")
	}
}

func writeWords(t *testing.T, path string, words []uint32) {
	t.Helper()
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestBootLoadsVectorsAndOSImage(t *testing.T) {
	dir := t.TempDir()
	vecsPath := filepath.Join(dir, "vectors.bin")
	osPath := filepath.Join(dir, "os.bin")

	vectorWords := []uint32{0xE59FF018, 0xE59FF018}
	osWords := []uint32{0x11111111, 0x22222222, 0x33333333}
	writeWords(t, vecsPath, vectorWords)
	writeWords(t, osPath, osWords)

	s := New(testLogger())
	if err := s.Boot(vecsPath, osPath); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	for i, want := range vectorWords {
		got, err := s.Bus.Read(L3OCMRAMExceptionsBase+uint32(i*4), "")
		if err != nil {
			t.Fatalf("reading vector word %d: %v", i, err)
		}
		if got != want {
			t.Errorf("vector word %d = %#x, want %#x", i, got, want)
		}
	}

	for i, want := range osWords {
		got, err := s.Bus.Read(L3OCMRAMStart+uint32(i*4), "")
		if err != nil {
			t.Fatalf("reading os word %d: %v", i, err)
		}
		if got != want {
			t.Errorf("os word %d = %#x, want %#x", i, got, want)
		}
	}

	osSize := uint32(len(osWords) * 4)
	bootStructAddr := L3OCMRAMStart + osSize
	wantParams := [3]uint32{0, 0, 0x3}
	for i, want := range wantParams {
		got, err := s.Bus.Read(bootStructAddr+uint32(i*4), "")
		if err != nil {
			t.Fatalf("reading boot param word %d: %v", i, err)
		}
		if got != want {
			t.Errorf("boot param word %d = %#x, want %#x", i, got, want)
		}
	}

	if got := s.CPU.GPR(0); got != bootStructAddr {
		t.Errorf("r0 = %#x, want boot-parameter block address %#x", got, bootStructAddr)
	}
	if got := s.CPU.GPR(15); got != L3OCMRAMStart {
		t.Errorf("pc = %#x, want %#x", got, L3OCMRAMStart)
	}
}

func TestBootMissingVectorsFileErrors(t *testing.T) {
	dir := t.TempDir()
	osPath := filepath.Join(dir, "os.bin")
	writeWords(t, osPath, []uint32{0x1})

	s := New(testLogger())
	if err := s.Boot(filepath.Join(dir, "missing.bin"), osPath); err == nil {
		t.Fatalf("expected an error loading a missing vectors file")
	}
}
