package convert

import "fmt"

// Strategy identifies one implementation of the RGGB10 to RGGB8 conversion.
type Strategy int

const (
	FuncFltSafe Strategy = iota
	FuncIntSafe
	FuncIntUnsafe
	ProcFltSafe
	ProcIntSafe
	ProcIntUnsafe
	ProcIntUnsafe2
)

type strategyInfo struct {
	name    string
	fn      Func
	formula Formula
	checked bool
}

var strategies = [...]strategyInfo{
	FuncFltSafe:    {"func_flt_safe", funcFltSafe, FormulaFloat, true},
	FuncIntSafe:    {"func_int_safe", funcIntSafe, FormulaInt, true},
	FuncIntUnsafe:  {"func_int_unsafe", funcIntUnsafe, FormulaInt, false},
	ProcFltSafe:    {"proc_flt_safe", procFltSafe, FormulaFloat, true},
	ProcIntSafe:    {"proc_int_safe", procIntSafe, FormulaInt, true},
	ProcIntUnsafe:  {"proc_int_unsafe", procIntUnsafe, FormulaInt, false},
	ProcIntUnsafe2: {"proc_int_unsafe_2", procIntUnsafe2, FormulaInt, false},
}

// Strategies returns every strategy in benchmark order.
func Strategies() []Strategy {
	all := make([]Strategy, len(strategies))
	for i := range all {
		all[i] = Strategy(i)
	}
	return all
}

// ParseStrategy looks a strategy up by its String name.
func ParseStrategy(name string) (Strategy, error) {
	for i, info := range strategies {
		if info.name == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown strategy: %q", name)
}

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s >= 0 && int(s) < len(strategies)
}

func (s Strategy) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return strategies[s].name
}

// Func returns the conversion function. It panics for an unknown strategy.
func (s Strategy) Func() Func {
	if !s.Valid() {
		panic(fmt.Sprintf("convert: unknown strategy %d", int(s)))
	}
	return strategies[s].fn
}

// Formula reports which reduction formula the strategy uses.
func (s Strategy) Formula() Formula {
	if !s.Valid() {
		return FormulaInt
	}
	return strategies[s].formula
}

// Checked reports whether the strategy validates its input length and
// bounds-checks every access. Unchecked strategies rely on the caller.
func (s Strategy) Checked() bool {
	return s.Valid() && strategies[s].checked
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
