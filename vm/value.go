package vm

import "strconv"

// Value is a tagged variant: either a finite 64-bit float or an
// immutable string. There is no distinct boolean type; truth is
// represented as -1.0 (true) or 0.0 (false), and any non-zero numeric
// is truthy.
type Value struct {
	isString bool
	num      float64
	str      string
}

// Num returns a numeric Value.
func Num(n float64) Value { return Value{num: n} }

// Str returns a string Value.
func Str(s string) Value { return Value{isString: true, str: s} }

// True and False are the canonical boolean results of comparison
// opcodes.
var (
	True  = Num(-1.0)
	False = Num(0.0)
)

// Bool returns True or False for a Go boolean.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.isString }

// NumVal returns the numeric payload of v (zero value if v is a string).
func (v Value) NumVal() float64 { return v.num }

// StrVal returns the string payload of v (empty if v is numeric).
func (v Value) StrVal() string { return v.str }

// Truthy reports whether v is truthy: any non-zero numeric is true; a
// string value used as a boolean is a type error.
func (v Value) Truthy() (bool, error) {
	if v.isString {
		return false, &Error{Kind: TypeMismatch, Msg: "string used as boolean"}
	}
	return v.num != 0, nil
}

// CanonicalString returns the invariant-culture textual representation
// of v, used for string coercion on assignment/concatenation and for
// mixed string/numeric comparisons.
func (v Value) CanonicalString() string {
	if v.isString {
		return v.str
	}
	return FormatNumber(v.num)
}

// FormatNumber renders a float64 in the general floating-point format
// used throughout the VM for numeric-to-string coercion (STR$, PRINT,
// string concatenation).
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
