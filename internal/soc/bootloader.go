/*
 * cortexa9sim - vectors and OS image boot loader.
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

package soc

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rcornwell/cortexa9sim/internal/armcpu"
	"github.com/rcornwell/cortexa9sim/internal/bus"
)

// Loader places the exception-vector blob at the OCM RAM exceptions base,
// the OS image at the start of OCM RAM, a three-word boot-parameter block
// immediately after the OS image, and points the CPU's r0/PC at them, per spec
// §4.7. Grounded on BinaryFileReader.readin's little-endian word stream
// and OMAP4.boot()'s placement arithmetic.
type Loader struct {
	bus *bus.Bus
	cpu *armcpu.CPU
}

func NewLoader(b *bus.Bus, cpu *armcpu.CPU) *Loader {
	return &Loader{bus: b, cpu: cpu}
}

// bootParamFlags is the source's literal (0x3 | (0 << 8) | (0 << 16))
// boot-parameter triple: {0, 0, 0x3}. The spec leaves the parameter
// semantics opaque; they are reproduced verbatim rather than reinterpreted.
const bootParamFlags = 0x3 | (0 << 8) | (0 << 16)

// Load reads vecsPath into L3OCMRAMExceptionsBase and osPath into
// L3OCMRAMStart, writes the boot-parameter block immediately after the OS
// image, sets r0 to the boot-parameter block address, and sets the PC to
// L3OCMRAMStart.
func (l *Loader) Load(vecsPath, osPath string) error {
	if err := l.writeFile(vecsPath, L3OCMRAMExceptionsBase); err != nil {
		return fmt.Errorf("loading vectors: %w", err)
	}

	osSize, err := l.writeFile(osPath, L3OCMRAMStart)
	if err != nil {
		return fmt.Errorf("loading os image: %w", err)
	}

	bootStructAddr := L3OCMRAMStart + osSize
	params := [3]uint32{0, 0, bootParamFlags}
	for i, v := range params {
		if err := l.bus.Write(bootStructAddr+uint32(i*4), v, ""); err != nil {
			return fmt.Errorf("writing boot parameters: %w", err)
		}
	}

	l.cpu.SetGPR(0, bootStructAddr)
	l.cpu.Reset(L3OCMRAMStart)
	return nil
}

// writeFile streams file as little-endian 32-bit words onto the bus
// starting at dest, and returns its size in bytes.
func (l *Loader) writeFile(path string, dest uint32) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	for i := 0; i+4 <= len(data); i += 4 {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		if err := l.bus.Write(dest+uint32(i), word, ""); err != nil {
			return 0, err
		}
	}
	return uint32(len(data)), nil
}
