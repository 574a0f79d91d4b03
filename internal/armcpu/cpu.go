/*
 * cortexa9sim - top-level CPU core: registers, MMU glue, fetch/decode/execute.
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

import (
	"log/slog"
	"sync"

	"github.com/rcornwell/cortexa9sim/internal/metrics"
)

// Memory is the bus-facing surface the CPU core reads and writes physical
// addresses through; internal/bus.Bus and internal/bus.ImplicitBus both
// satisfy it via their (addr, bank) methods with an empty bank.
type Memory interface {
	Read(address uint32, bank string) (uint32, error)
	Write(address uint32, value uint32, bank string) error
}

// RunState is the cooperative run-gate state, grounded on the source's
// run/halt/step goroutine coordination (now expressed with sync.Cond
// rather than the deleted emu/core package's channel pair).
type RunState int

const (
	StateHalted RunState = iota
	StateRunning
	StateStepping
)

// CPU is one ARM Cortex-A9 execution core.
type CPU struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state RunState

	regs *registerFile
	cpsr *CPSR
	spsr *spsrBank
	cp15 *cp15File

	mem Memory

	pending    map[ExceptionKind]bool
	breakpoint map[uint32]bool

	instructionsRetired uint64
	log                 *slog.Logger

	stopSignal chan struct{}
	metrics    *metrics.Counters
}

// SetMetrics attaches a Prometheus counter set; nil (the default) leaves
// the core's counting a no-op, so tests need not provide one.
func (c *CPU) SetMetrics(m *metrics.Counters) { c.metrics = m }

// NewCPU builds a CPU core reset into Supervisor mode with interrupts
// masked, per the architectural reset state.
func NewCPU(mem Memory, log *slog.Logger) *CPU {
	c := &CPU{
		regs:       newRegisterFile(),
		cpsr:       &CPSR{},
		spsr:       newSPSRBank(),
		cp15:       newCP15File(),
		mem:        mem,
		pending:    make(map[ExceptionKind]bool),
		breakpoint: make(map[uint32]bool),
		log:        log,
		stopSignal: make(chan struct{}, 1),
	}
	c.cond = sync.NewCond(&c.mu)
	c.cpsr.SetMode(ModeSVC)
	c.cpsr.SetI(true)
	c.cpsr.SetF(true)
	c.cpsr.SetA(true)
	return c
}

// Reset sets the PC to entry and clears pending exceptions, used by the
// boot loader once the vectors and OS image are in place.
func (c *CPU) Reset(entry uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs.Write(15, c.cpsr.Mode(), entry)
	c.pending = make(map[ExceptionKind]bool)
}

// SetPending marks kind as a pending exception; safe to call from any
// goroutine (the interrupt controller, a peripheral, or the GDB stub).
func (c *CPU) SetPending(kind ExceptionKind) {
	c.mu.Lock()
	c.pending[kind] = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *CPU) clearPending(kind ExceptionKind) {
	delete(c.pending, kind)
}

// highestPendingLocked returns the highest-priority pending exception kind
// still set, or false if none is pending. Lower ExceptionKind values are
// higher priority, matching the enum's declaration order (Reset highest,
// omitted here since this simulator starts already reset; FIQ lowest).
func (c *CPU) highestPendingLocked() (ExceptionKind, bool) {
	for k := ExceptionKind(0); k < numExceptionKinds; k++ {
		if !c.pending[k] {
			continue
		}
		if k == ExcIRQ && c.cpsr.I() {
			continue
		}
		if k == ExcFIQ && c.cpsr.F() {
			continue
		}
		return k, true
	}
	return 0, false
}

// SetRunning and SetHalted drive the cooperative run-gate; a GDB 'c' or
// 's' packet calls these from the transport goroutine while Step runs on
// the CPU's own goroutine.
func (c *CPU) SetRunning() {
	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *CPU) SetHalted() {
	c.mu.Lock()
	c.state = StateHalted
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *CPU) SetBreakpoint(addr uint32)   { c.mu.Lock(); c.breakpoint[addr] = true; c.mu.Unlock() }
func (c *CPU) ClearBreakpoint(addr uint32) { c.mu.Lock(); delete(c.breakpoint, addr); c.mu.Unlock() }

// RequestContinue and RequestStep implement the gdbstub.Target run-control
// hooks for the 'vCont;c' and 'vCont;s' packets.
func (c *CPU) RequestContinue() {
	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *CPU) RequestStep() {
	c.mu.Lock()
	c.state = StateStepping
	c.mu.Unlock()
	c.cond.Broadcast()
}

// StopSignal returns the channel the transport selects on to send an
// anonymous "S05" stop reply when a breakpoint halts the CPU goroutine
// outside of a client request, grounded on
// _send_anonymous_stop_signal/global_env.dbg_breakpoint_hit.
func (c *CPU) StopSignal() <-chan struct{} { return c.stopSignal }

// WaitUntilRunnable blocks the CPU goroutine until the run-gate admits
// execution of the next instruction, per spec §5's cooperative model.
func (c *CPU) WaitUntilRunnable() {
	c.mu.Lock()
	for c.state == StateHalted {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// Step executes exactly one instruction, taking any pending exception
// first, per spec §4.5.1 step 1. It returns false when the instruction
// lands on a breakpoint, which halts the CPU; a completed single step
// also leaves the CPU halted but returns true.
func (c *CPU) Step() bool {
	c.mu.Lock()
	if kind, ok := c.highestPendingLocked(); ok {
		pc := c.regs.Read(15, c.cpsr.Mode())
		c.mu.Unlock()
		c.TakeException(kind, pc)
		return true
	}
	if c.state == StateStepping {
		c.state = StateHalted
	}
	c.mu.Unlock()

	pc := c.regs.Read(15, c.cpsr.Mode())
	insn, fault := c.fetch(pc)
	if fault != nil {
		c.deliverAbort(fault, pc)
		return true
	}

	c.regs.Write(15, c.cpsr.Mode(), pc+4)
	c.execute(insn)
	c.instructionsRetired++
	if c.metrics != nil {
		c.metrics.InstructionsRetired.Inc()
	}

	c.mu.Lock()
	hit := c.breakpoint[c.regs.Read(15, c.cpsr.Mode())]
	if hit {
		c.state = StateHalted
	}
	c.mu.Unlock()
	if hit {
		select {
		case c.stopSignal <- struct{}{}:
		default:
		}
	}
	return !hit
}

// InstructionsRetired reports the running instruction count, exposed as a
// Prometheus counter by the metrics package.
func (c *CPU) InstructionsRetired() uint64 { return c.instructionsRetired }

// CPSRWord returns the live status word (read-only snapshot for the GDB stub).
func (c *CPU) CPSRWord() uint32 { return c.cpsr.Word() }

// GPR reads architectural register i in the current mode, for the GDB
// stub's register-read packet.
func (c *CPU) GPR(i int) uint32 { return c.regs.Read(i, c.cpsr.Mode()) }

// SetGPR writes architectural register i in the current mode, for the GDB
// stub's register-write packet.
func (c *CPU) SetGPR(i int, v uint32) { c.regs.Write(i, c.cpsr.Mode(), v) }

func (c *CPU) deliverAbort(fault error, pc uint32) {
	mf, ok := fault.(*mmuFaultAdapter)
	kind := ExcDataAbort
	if ok && mf.instruction {
		kind = ExcPrefetchAbort
	}
	c.log.Warn("memory abort", "pc", pc, "err", fault)
	c.TakeException(kind, pc)
}
