package convert

import (
	"encoding/binary"
	"slices"
)

// funcFltSafe maps each two-byte chunk through the float formula.
func funcFltSafe(in []byte) []byte {
	CheckEven("func_flt_safe", len(in))
	out := make([]byte, 0, len(in)/2)
	for chunk := range slices.Chunk(in, 2) {
		out = append(out, ScaleFloat(binary.LittleEndian.Uint16(chunk)))
	}
	return out
}

// funcIntSafe maps each two-byte chunk through the integer formula.
func funcIntSafe(in []byte) []byte {
	CheckEven("func_int_safe", len(in))
	out := make([]byte, 0, len(in)/2)
	for chunk := range slices.Chunk(in, 2) {
		out = append(out, ShiftInt(binary.LittleEndian.Uint16(chunk)))
	}
	return out
}

// procFltSafe indexes the input pair by pair and appends into a slice with
// exact capacity.
func procFltSafe(in []byte) []byte {
	CheckEven("proc_flt_safe", len(in))
	pixels := len(in) / 2
	out := make([]byte, 0, pixels)
	for pixel := 0; pixel < pixels; pixel++ {
		v := uint16(in[pixel*2]) | uint16(in[pixel*2+1])<<8
		out = append(out, ScaleFloat(v))
	}
	return out
}

// procIntSafe indexes the input pair by pair and stores into a slice that
// already has its final length.
func procIntSafe(in []byte) []byte {
	CheckEven("proc_int_safe", len(in))
	pixels := len(in) / 2
	out := make([]byte, pixels)
	for pixel := 0; pixel < pixels; pixel++ {
		v := uint16(in[pixel*2]) | uint16(in[pixel*2+1])<<8
		out[pixel] = ShiftInt(v)
	}
	return out
}
