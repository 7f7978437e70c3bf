package bench

import (
	"bytes"
	"fmt"

	"github.com/cwbudde/rggbconv/internal/convert"
)

// MismatchError reports a strategy whose output differs from
// convert.Reference.
type MismatchError struct {
	Strategy convert.Strategy
	Len      int

	// Index is the first differing output byte, or -1 on a length mismatch.
	Index     int
	Got, Want byte
}

func (e *MismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: output length differs from reference for %d-byte input", e.Strategy, e.Len)
	}
	return fmt.Sprintf("%s: output[%d] = 0x%02x, reference 0x%02x (%d-byte input)",
		e.Strategy, e.Index, e.Got, e.Want, e.Len)
}

// Preflight checks that every strategy converts input exactly like
// convert.Reference. input must have even length; the driver upholds that
// precondition for checked and unchecked strategies alike.
func Preflight(strategies []convert.Strategy, input []byte) error {
	if len(input)%2 != 0 {
		return fmt.Errorf("preflight: input length %d is odd", len(input))
	}
	want := convert.Reference(input)
	for _, s := range strategies {
		got := s.Func()(input)
		if bytes.Equal(got, want) {
			continue
		}
		if len(got) != len(want) {
			return &MismatchError{Strategy: s, Len: len(input), Index: -1}
		}
		for i := range got {
			if got[i] != want[i] {
				return &MismatchError{Strategy: s, Len: len(input), Index: i, Got: got[i], Want: want[i]}
			}
		}
	}
	return nil
}

// Pattern returns a pixels-word input whose word i is uint16(i*7919), so
// inputs of 65536 words or more hit every 16-bit value.
func Pattern(pixels int) []byte {
	in := make([]byte, pixels*2)
	for i := 0; i < pixels; i++ {
		v := uint16(i * 7919)
		in[2*i] = byte(v)
		in[2*i+1] = byte(v >> 8)
	}
	return in
}
