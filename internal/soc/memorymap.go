/*
 * cortexa9sim - example SoC memory map.
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

// Package soc wires an example ARM Cortex-A9 SoC together: ROM, OCM RAM,
// DMM/EMIF register windows, a system bus, the CPU core, and the boot
// loader. Grounded on soc/omap4/__init__.py and memory_map.py, reproduced
// as the example SoC spec §6 calls for.
package soc

const meg = 1024 * 1024

// Memory map constants, reproduced verbatim from memory_map.py.
const (
	MPUROMStart = 0x40028000
	MPUROMEnd   = 0x40033FFF

	L3OCMRAMStart          = 0x40300000
	L3OCMRAMExceptionsBase = 0x4030D000
	L3OCMRAMEnd            = 0x4030DFFF

	L4CfgDomainStart = 0x4A000000
	L4CfgDomainEnd   = 0x4AFFFFFF

	EMIF1RegistersStart = 0x4C000000
	EMIF1RegistersEnd   = 0x4C000000 + (16 * meg)

	EMIF2RegistersStart = 0x4D000000
	EMIF2RegistersEnd   = 0x4D000000 + (16 * meg)

	DMMRegistersStart = 0x4E000000
	DMMRegistersEnd   = 0x4E000000 + (32 * meg)

	LPDDR2DRAMStart = 0x80000000
	LPDDR2DRAMEnd   = 0x80000000 + (256 * meg)
)
