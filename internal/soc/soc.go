/*
 * cortexa9sim - example SoC: bus, memories, CPU, interrupt controller.
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
	"log/slog"

	"github.com/rcornwell/cortexa9sim/internal/addr"
	"github.com/rcornwell/cortexa9sim/internal/armcpu"
	"github.com/rcornwell/cortexa9sim/internal/bus"
	"github.com/rcornwell/cortexa9sim/internal/interrupt"
	"github.com/rcornwell/cortexa9sim/internal/memory"
	"github.com/rcornwell/cortexa9sim/internal/metrics"
)

const wordSize = 4

func words(byteLen uint32) int { return int((byteLen + wordSize - 1) / wordSize) }

// SoC is the example system spec §4.8 calls for: a system bus with ROM,
// OCM RAM, and the DMM/EMIF/L4 register windows attached, one CPU core,
// and an interrupt controller feeding it.
type SoC struct {
	Bus  *bus.Bus
	ROM  *memory.ROM
	RAM  *memory.RAM
	CPU  *armcpu.CPU
	IC   *interrupt.Controller
	boot *Loader
}

// New builds the example SoC, wiring every region from memorymap.go except
// LPDDR2 DRAM onto one system bus at address scale 1 (spec §9 decision #1).
func New(log *slog.Logger) *SoC {
	sysBus := bus.New("system bus", 1, false)

	rom := memory.NewROM("cortex-a9 mpu rom", words(MPUROMEnd-MPUROMStart+1))
	ram := memory.NewRAM("l3 ocm ram", words(L3OCMRAMEnd-L3OCMRAMStart+1))
	dmm := memory.NewRAM("dmm registers", words(DMMRegistersEnd-DMMRegistersStart+1))
	emif1 := memory.NewRAM("emif1 registers", words(EMIF1RegistersEnd-EMIF1RegistersStart+1))
	emif2 := memory.NewRAM("emif2 registers", words(EMIF2RegistersEnd-EMIF2RegistersStart+1))
	l4cfg := memory.NewRAM("l4 configuration domain", words(L4CfgDomainEnd-L4CfgDomainStart+1))

	sysBus.Attach(addr.DefaultBank, MPUROMStart, MPUROMEnd, 0, rom)
	sysBus.Attach(addr.DefaultBank, L3OCMRAMStart, L3OCMRAMEnd, 0, ram)
	sysBus.Attach(addr.DefaultBank, DMMRegistersStart, DMMRegistersEnd, 0, dmm)
	sysBus.Attach(addr.DefaultBank, EMIF1RegistersStart, EMIF1RegistersEnd, 0, emif1)
	sysBus.Attach(addr.DefaultBank, EMIF2RegistersStart, EMIF2RegistersEnd, 0, emif2)
	sysBus.Attach(addr.DefaultBank, L4CfgDomainStart, L4CfgDomainEnd, 0, l4cfg)

	ic := interrupt.NewController("gic")
	cpu := armcpu.NewCPU(sysBus, log)
	ic.RegisterConsumer(cpu, interrupt.LineIRQ)
	ic.RegisterConsumer(cpu, interrupt.LineFIQ)

	return &SoC{
		Bus:  sysBus,
		ROM:  rom,
		RAM:  ram,
		CPU:  cpu,
		IC:   ic,
		boot: NewLoader(sysBus, cpu),
	}
}

// Boot loads the vectors blob and OS image and starts the CPU at the
// image's entry point, per spec §4.7.
func (s *SoC) Boot(vecsPath, osPath string) error {
	return s.boot.Load(vecsPath, osPath)
}

// SetMetrics attaches a Prometheus counter set to the SoC's CPU core.
func (s *SoC) SetMetrics(m *metrics.Counters) {
	s.CPU.SetMetrics(m)
}
