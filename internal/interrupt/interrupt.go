/*
 * cortexa9sim - interrupt producer/consumer fabric.
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

// Package interrupt models the producer/consumer interrupt topology:
// producers own a routing table from a source IRQ to an ordered list of
// (returned IRQ, consumer) pairs, and consumers are anything exposing a
// single InterruptTriggered sink. Reshaped from the original's multiple
// inheritance (AbstractInterruptProducer/AbstractInterruptConsumer) into
// composable interfaces, per the spec's refactor note.
package interrupt

import "log/slog"

// Consumer receives a delivered (returned) IRQ number.
type Consumer interface {
	InterruptTriggered(returnedIRQ int)
}

type route struct {
	returnedIRQ int
	consumer    Consumer
}

// Producer owns a routing table keyed by source IRQ. Each device that can
// raise interrupts embeds a Producer rather than inheriting one.
type Producer struct {
	Name   string
	routes map[int][]route
}

// NewProducer returns an empty producer.
func NewProducer(name string) *Producer {
	return &Producer{Name: name, routes: make(map[int][]route)}
}

// Register adds consumer as a recipient of sourceIRQ, delivered as
// returnedIRQ. Re-registering the same consumer on the same source updates
// its returnedIRQ in place rather than duplicating the entry.
func (p *Producer) Register(consumer Consumer, sourceIRQ, returnedIRQ int) {
	list := p.routes[sourceIRQ]
	for i, r := range list {
		if r.consumer == consumer {
			list[i].returnedIRQ = returnedIRQ
			return
		}
	}
	p.routes[sourceIRQ] = append(list, route{returnedIRQ: returnedIRQ, consumer: consumer})
}

// Unregister removes every route naming consumer. If sourceIRQ is
// non-negative only that source is affected; a negative value removes the
// consumer from every source. Logs once if no route matched.
func (p *Producer) Unregister(consumer Consumer, sourceIRQ int) {
	sources := []int{sourceIRQ}
	if sourceIRQ < 0 {
		sources = sources[:0]
		for s := range p.routes {
			sources = append(sources, s)
		}
	}
	removed := false
	for _, s := range sources {
		list := p.routes[s]
		out := list[:0]
		for _, r := range list {
			if r.consumer == consumer {
				removed = true
				continue
			}
			out = append(out, r)
		}
		if len(out) == 0 {
			delete(p.routes, s)
		} else {
			p.routes[s] = out
		}
	}
	if !removed {
		slog.Warn("no registered consumer removed", "producer", p.Name)
	}
}

// Trigger delivers returnedIRQ to every consumer registered for sourceIRQ,
// in registration order. Logs and returns if sourceIRQ has no routes.
func (p *Producer) Trigger(sourceIRQ int) {
	list, ok := p.routes[sourceIRQ]
	if !ok {
		slog.Info("no interrupt mapped to source", "producer", p.Name, "source", sourceIRQ)
		return
	}
	for _, r := range list {
		r.consumer.InterruptTriggered(r.returnedIRQ)
	}
}

// Downstream source IRQ numbers accepted by Controller registration: 0 is
// the IRQ line, 1 is the FIQ line.
const (
	LineIRQ = 0
	LineFIQ = 1
)

// Controller is both an interrupt Consumer (upstream, from any number of
// producers) and an interrupt Producer (downstream, to exactly the IRQ and
// FIQ lines). It masks, prioritizes, and reclassifies IRQ vs. FIQ on
// egress. Grounded on controllers/ic.py's SimpleInterruptController.
type Controller struct {
	Name            string
	downstream      *Producer
	allMasked       bool
	masked          map[int]struct{}
	currentPriority int
	fiqSet          map[int]struct{}
}

// NewController returns a controller with all interrupts masked and
// priority at its reset value of 9 (the most permissive cutoff: every
// priority class 0..9 is admitted — matching the source's reset of
// current_priority = 9).
func NewController(name string) *Controller {
	return &Controller{
		Name:            name,
		downstream:      NewProducer(name + ".downstream"),
		allMasked:       true,
		masked:          make(map[int]struct{}),
		currentPriority: 9,
		fiqSet:          make(map[int]struct{}),
	}
}

// MaskAllEnable masks every upstream interrupt. Kept distinct from
// UnmaskAll rather than overloading a single mask_all identifier used as
// both field and method in the source (spec §9 point 7).
func (c *Controller) MaskAllEnable() {
	c.allMasked = true
}

// UnmaskAll clears the all-masked state and the per-IRQ mask set.
func (c *Controller) UnmaskAll() {
	c.allMasked = false
	c.masked = make(map[int]struct{})
}

// MaskIRQ masks a single upstream IRQ number.
func (c *Controller) MaskIRQ(irq int) {
	c.masked[irq] = struct{}{}
}

// EnableIRQ unmasks a single upstream IRQ number.
func (c *Controller) EnableIRQ(irq int) {
	delete(c.masked, irq)
}

// SetPriority sets the current priority cutoff (0..9).
func (c *Controller) SetPriority(priority int) {
	c.currentPriority = priority
}

// ClassifyFIQ marks irq as routed to the FIQ line instead of IRQ on egress.
func (c *Controller) ClassifyFIQ(irq int) {
	c.fiqSet[irq] = struct{}{}
}

// RegisterConsumer attaches consumer to the downstream IRQ (0) or FIQ (1)
// line. Other values are refused with a warning.
func (c *Controller) RegisterConsumer(consumer Consumer, line int) {
	if line != LineIRQ && line != LineFIQ {
		slog.Warn("only IRQ (0) or FIQ (1) lines are valid", "controller", c.Name, "line", line)
		return
	}
	c.downstream.Register(consumer, line, line)
}

// InterruptTriggered implements Consumer: the upstream sink. x above 99
// is out of range and dropped; masked or above the current priority class
// is also dropped silently (matching the source's best-effort logging).
func (c *Controller) InterruptTriggered(x int) {
	if x > 99 {
		slog.Warn("interrupt number out of range", "controller", c.Name, "irq", x)
		return
	}
	if c.allMasked {
		return
	}
	if _, masked := c.masked[x]; masked {
		return
	}
	if (x / 10) > c.currentPriority {
		return
	}
	if _, isFIQ := c.fiqSet[x]; isFIQ {
		c.downstream.Trigger(LineFIQ)
		return
	}
	c.downstream.Trigger(LineIRQ)
}
