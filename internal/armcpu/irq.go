/*
 * cortexa9sim - interrupt.Consumer adapter for the CPU core.
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

// InterruptTriggered implements interrupt.Consumer: the CPU registers
// itself on the interrupt controller's downstream IRQ (0) and FIQ (1)
// lines, per spec §4.3's producer/consumer fabric feeding exception entry.
func (c *CPU) InterruptTriggered(returnedIRQ int) {
	if returnedIRQ == 1 {
		if c.metrics != nil {
			c.metrics.InterruptsDelivered.WithLabelValues("fiq").Inc()
		}
		c.SetPending(ExcFIQ)
		return
	}
	if c.metrics != nil {
		c.metrics.InterruptsDelivered.WithLabelValues("irq").Inc()
	}
	c.SetPending(ExcIRQ)
}
