/*
 * cortexa9sim - addressable node contract and bus errors.
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

// Package addr defines the AddressableNode contract every memory-mapped
// component in this simulator satisfies, plus the error taxonomy raised
// when an access cannot be serviced.
package addr

import "fmt"

// DefaultBank is the fallback key an implicit banked bus resolves to when
// the requested bank has no region list of its own.
const DefaultBank = "default"

// Node is satisfied by every memory-mapped entity: buses, RAM, ROM, MMUs.
// Bank is the empty string for unbanked nodes.
type Node interface {
	Read(addr uint32, bank string) (uint32, error)
	Write(addr uint32, value uint32, bank string) error
}

// OutOfRangeError is returned when no self-region or slave claims addr.
type OutOfRangeError struct {
	Addr uint32
	Bank string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address 0x%08x out of range in bank %q", e.Addr, e.Bank)
}

// BankNotFoundError is returned by a banked bus with Implicit=false when
// bank has no region list.
type BankNotFoundError struct {
	Bank string
}

func (e *BankNotFoundError) Error() string {
	return fmt.Sprintf("bank %q not found", e.Bank)
}

// ReadOnlyMemoryError is returned by a runtime write to a ROM node.
type ReadOnlyMemoryError struct {
	Addr uint32
}

func (e *ReadOnlyMemoryError) Error() string {
	return fmt.Sprintf("write to read-only memory at 0x%08x", e.Addr)
}
