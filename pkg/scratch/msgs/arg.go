package msgs

import (
	"strconv"
	"strings"
)

// Kind is the type of an argument.
type Kind int

// Argument kinds.
const (
	KindString Kind = iota
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Arg is one positional message argument. The kind is fixed by the
// constructor.
type Arg struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// String creates a string argument.
func String(s string) Arg { return Arg{kind: KindString, str: s} }

// Number creates a number argument.
func Number(v float64) Arg { return Arg{kind: KindNumber, num: v} }

// Bool creates a boolean argument.
func Bool(b bool) Arg { return Arg{kind: KindBoolean, b: b} }

// Kind returns the kind of the argument.
func (a Arg) Kind() Kind { return a.kind }

// Str returns the value of a string argument, or the rendered token otherwise.
func (a Arg) Str() string {
	if a.kind == KindString {
		return a.str
	}
	return a.Token()
}

// Num returns the value of a number argument.
func (a Arg) Num() (float64, bool) { return a.num, a.kind == KindNumber }

// Bool returns the value of a boolean argument.
func (a Arg) Bool() (bool, bool) { return a.b, a.kind == KindBoolean }

// Token renders the argument as it appears on the wire.
func (a Arg) Token() string {
	switch a.kind {
	case KindNumber:
		return strconv.FormatFloat(a.num, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(a.b)
	}
	return Quote(a.str)
}

// String implements fmt.Stringer.
func (a Arg) String() string {
	return a.Token()
}

// Quote wraps s in double quotes, doubling every embedded quote.
func Quote(s string) string {
	return `"` + strings.Replace(s, `"`, `""`, -1) + `"`
}
