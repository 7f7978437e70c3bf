package convert

// Formula selects how a 16-bit word is reduced to 8 bits.
type Formula int

const (
	FormulaInt Formula = iota
	FormulaFloat
)

func (f Formula) String() string {
	switch f {
	case FormulaInt:
		return "int"
	case FormulaFloat:
		return "flt"
	default:
		return "unknown"
	}
}

// Apply reduces v with the selected formula.
func (f Formula) Apply(v uint16) uint8 {
	if f == FormulaFloat {
		return ScaleFloat(v)
	}
	return ShiftInt(v)
}

// ShiftInt returns the low 8 bits of v >> 2.
func ShiftInt(v uint16) uint8 {
	return uint8(v >> 2)
}

// ScaleFloat returns the low 8 bits of v * 0.25 truncated toward zero.
//
// The product is at most 16383.75, so the uint32 step is exact; converting
// the float straight to uint8 would be implementation-defined above 255.
func ScaleFloat(v uint16) uint8 {
	return uint8(uint32(float32(v) * 0.25))
}
