package convert

import (
	"slices"
	"unsafe"
)

// The strategies in this file do not validate the input length and read
// and write through unsafe pointers instead of bounds-checked indexing.
// Callers must pass an even-length input; an odd length is undefined
// behaviour, not a reported error.
//
// Every pointer formed here stays inside the allocation it was derived
// from, so the code is valid under -d=checkptr for even-length inputs.

// funcIntUnsafe walks two-byte chunks like funcIntSafe but reinterprets
// each chunk as a [2]byte without checking its length.
func funcIntUnsafe(in []byte) []byte {
	out := make([]byte, 0, len(in)/2)
	for chunk := range slices.Chunk(in, 2) {
		pair := (*[2]byte)(unsafe.Pointer(unsafe.SliceData(chunk)))
		out = append(out, ShiftInt(uint16(pair[0])|uint16(pair[1])<<8))
	}
	return out
}

// procIntUnsafe reads each input byte and writes each output byte at an
// offset from the slice base pointer. Output bytes are written into the
// capacity of a zero-length slice which is resliced to its full length
// once every byte is in place.
func procIntUnsafe(in []byte) []byte {
	pixels := len(in) / 2
	out := make([]byte, 0, pixels)
	src := unsafe.Pointer(unsafe.SliceData(in))
	dst := unsafe.Pointer(unsafe.SliceData(out))
	for pixel := 0; pixel < pixels; pixel++ {
		b0 := *(*byte)(unsafe.Add(src, pixel*2))
		b1 := *(*byte)(unsafe.Add(src, pixel*2+1))
		*(*byte)(unsafe.Add(dst, pixel)) = ShiftInt(uint16(b0) | uint16(b1)<<8)
	}
	return out[:pixels]
}

// procIntUnsafe2 keeps a read cursor and a write cursor, advancing each by
// one byte after every access, and stops when the write cursor reaches the
// precomputed end cursor.
//
// The end cursor addresses the last output byte rather than one past it
// (Go forbids pointers beyond an allocation), so the final word is
// converted after the loop without advancing either cursor.
func procIntUnsafe2(in []byte) []byte {
	pixels := len(in) / 2
	out := make([]byte, 0, pixels)
	if pixels == 0 {
		return out
	}

	r := unsafe.Pointer(unsafe.SliceData(in))
	w := unsafe.Pointer(unsafe.SliceData(out))
	end := unsafe.Add(w, pixels-1)
	for w != end {
		b0 := *(*byte)(r)
		r = unsafe.Add(r, 1)
		b1 := *(*byte)(r)
		r = unsafe.Add(r, 1)
		*(*byte)(w) = ShiftInt(uint16(b0) | uint16(b1)<<8)
		w = unsafe.Add(w, 1)
	}
	b0 := *(*byte)(r)
	b1 := *(*byte)(unsafe.Add(r, 1))
	*(*byte)(w) = ShiftInt(uint16(b0) | uint16(b1)<<8)

	return out[:pixels]
}
