/*
 * cortexa9sim - ARM Cortex-A9 SoC simulator entry point.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/cortexa9sim/internal/armcpu"
	"github.com/rcornwell/cortexa9sim/internal/armlog"
	"github.com/rcornwell/cortexa9sim/internal/config"
	"github.com/rcornwell/cortexa9sim/internal/gdbstub"
	"github.com/rcornwell/cortexa9sim/internal/gdbtransport"
	"github.com/rcornwell/cortexa9sim/internal/metrics"
	"github.com/rcornwell/cortexa9sim/internal/soc"
)

const (
	defaultVectorsPath = "soc/omap4/ram_vecs.o"
	defaultOSImagePath = "soc/omap4/tinyos.bin"
	defaultGDBPort     = 20005
)

func main() {
	stepping := getopt.BoolLong("step", 's', "start with stepping enabled and the run-gate cleared")
	osImagePath := getopt.StringLong("os-image", 'p', defaultOSImagePath, "override the OS image path")
	gdbPort := getopt.IntLong("gdb", 0, defaultGDBPort, "TCP port for the debug transport")
	configPath := getopt.StringLong("config", 0, "", "optional config file overriding boot paths and ports")
	metricsAddr := getopt.StringLong("metrics", 0, "", "optional host:port to serve Prometheus metrics")
	getopt.Parse()

	logHandler := armlog.NewHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}, *stepping)
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	vectorsPath := defaultVectorsPath
	port := *gdbPort
	metricsBind := *metricsAddr
	image := *osImagePath

	if *configPath != "" {
		overrides, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to read config file", "path", *configPath, "err", err)
			os.Exit(1)
		}
		vectorsPath, image, port, metricsBind = overrides.Apply(vectorsPath, image, port, metricsBind)
	}

	system := soc.New(logger)

	if metricsBind != "" {
		counters := metrics.New()
		system.SetMetrics(counters)
		go func() {
			if err := metrics.Serve(metricsBind); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	if err := system.Boot(vectorsPath, image); err != nil {
		logger.Error("boot failed", "err", err)
		os.Exit(1)
	}

	if *stepping {
		system.CPU.RequestStep()
	} else {
		system.CPU.RequestContinue()
	}

	go runCPU(system.CPU, logger)

	target := gdbstub.Target{
		NumGPR:     16,
		ReadReg:    system.CPU.GPR,
		WriteReg:   system.CPU.SetGPR,
		ReadByte:   system.CPU.ReadVirtualByte,
		WriteByte:  system.CPU.WriteVirtualByte,
		Continue:   system.CPU.RequestContinue,
		Step:       system.CPU.RequestStep,
		SetBreak:   system.CPU.SetBreakpoint,
		ClearBreak: system.CPU.ClearBreakpoint,
		StopSignal: system.CPU.StopSignal,
	}

	addr := "127.0.0.1:" + strconv.Itoa(port)
	transport := gdbtransport.New(addr, target, logger)
	if err := transport.Start(); err != nil {
		logger.Error("gdb transport failed to start", "addr", addr, "err", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "cortexa9sim: gdb stub listening on %s\n", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	transport.Stop()
}

// runCPU drives the CPU core's fetch-decode-execute loop on its own
// goroutine, blocking on the run-gate between instructions when halted,
// per spec §5's cooperative concurrency model.
func runCPU(cpu *armcpu.CPU, logger *slog.Logger) {
	for {
		cpu.WaitUntilRunnable()
		if !cpu.Step() {
			logger.Info("cpu halted", "pc", cpu.GPR(15))
		}
	}
}
