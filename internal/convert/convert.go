// Package convert turns RGGB10 samples, each stored as a 16-bit
// little-endian word, into RGGB8 samples by dropping the two low bits.
//
// The same conversion is offered as several interchangeable strategies
// that differ only in technique (iteration idiom, formula, and whether
// accesses are bounds-checked). All strategies produce byte-identical
// output for every valid input; they exist so their throughput can be
// compared.
//
// Checked strategies:
//   - func_flt_safe:   chunked iteration, float scale
//   - func_int_safe:   chunked iteration, integer shift
//   - proc_flt_safe:   indexed loop, float scale
//   - proc_int_safe:   indexed loop into a pre-sized slice
//
// Unchecked strategies (unchecked.go):
//   - func_int_unsafe:   chunked iteration, chunk read without bounds checks
//   - proc_int_unsafe:   raw reads and writes by element index
//   - proc_int_unsafe_2: raw read and write cursors walked to an end cursor
package convert

import (
	"encoding/binary"
	"fmt"
)

// Func converts a buffer of little-endian 16-bit words into one byte per
// word. The returned slice is freshly allocated and has len(in)/2 bytes.
type Func func(in []byte) []byte

// ContractViolation is the panic value raised by checked strategies when
// the input length is not a multiple of two.
type ContractViolation struct {
	Op  string
	Len int
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: input length %d is not a multiple of 2", e.Op, e.Len)
}

// CheckEven panics with a *ContractViolation if n is odd.
func CheckEven(op string, n int) {
	if n%2 != 0 {
		panic(&ContractViolation{Op: op, Len: n})
	}
}

// Convert runs in through strategy s.
func Convert(s Strategy, in []byte) []byte {
	return s.Func()(in)
}

// Reference is the plain conversion used to validate the strategies.
func Reference(in []byte) []byte {
	CheckEven("reference", len(in))
	out := make([]byte, len(in)/2)
	for i := range out {
		out[i] = ShiftInt(binary.LittleEndian.Uint16(in[2*i:]))
	}
	return out
}
