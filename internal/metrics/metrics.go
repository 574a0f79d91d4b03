/*
 * cortexa9sim - Prometheus counters for the execution core.
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

// Package metrics exposes the simulator's execution counters over an
// optional HTTP endpoint via github.com/prometheus/client_golang, the
// ambient-stack carry-over for the teacher's otherwise-unused dependency
// (DESIGN.md "Ambient stack").
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters are the simulator-wide Prometheus instruments.
type Counters struct {
	InstructionsRetired prometheus.Counter
	ExceptionsTaken     *prometheus.CounterVec
	MMUFaults           prometheus.Counter
	InterruptsDelivered *prometheus.CounterVec
}

// New registers the counters against the default registry.
func New() *Counters {
	return &Counters{
		InstructionsRetired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cortexa9sim_instructions_retired_total",
			Help: "Instructions retired by the CPU core.",
		}),
		ExceptionsTaken: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cortexa9sim_exceptions_taken_total",
			Help: "Exceptions taken, labeled by kind.",
		}, []string{"kind"}),
		MMUFaults: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cortexa9sim_mmu_faults_total",
			Help: "MMU translation faults raised during fetch/load/store.",
		}),
		InterruptsDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cortexa9sim_interrupts_delivered_total",
			Help: "Interrupts delivered downstream, labeled by line (irq/fiq).",
		}, []string{"line"}),
	}
}

// Serve starts the /metrics HTTP endpoint on addr; the caller runs it in
// its own goroutine. It returns only when the server stops, with the error
// that stopped it (such as a failed bind).
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
