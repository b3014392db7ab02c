package column

import (
	"strconv"
	"strings"
)

// Kind enumerates the variants a Value can take.  Every consumer of a Value
// is expected to switch exhaustively on the kind rather than probe fields.
type Kind uint8

const (
	// KindString is a free-form string.
	KindString Kind = iota
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindFloat is a 64-bit float.
	KindFloat
	// KindEnum is a string drawn from a closed vocabulary.
	KindEnum
	// KindFlag is a yes/no value.
	KindFlag
	// KindUUID is a canonical-form UUID string.
	KindUUID
	// KindSequence is a ';'-delimited sequence of values of a single
	// element kind.
	KindSequence
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindFlag:
		return "flag"
	case KindUUID:
		return "uuid"
	case KindSequence:
		return "sequence"
	}
	return "invalid"
}

// SeqDelimiter separates elements of a sequence-valued column within one
// token.
const SeqDelimiter = ";"

// Value is a tagged variant over the supported column types.  Nullness is
// explicit: a null Value still carries its kind.  The zero Value is a
// non-null empty string.
type Value struct {
	kind Kind
	null bool
	str  string // KindString, KindEnum, KindUUID
	num  int64  // KindInt; KindFlag stores 0 or 1
	fnum float64
	elem Kind    // element kind, KindSequence only
	seq  []Value // KindSequence only
}

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int constructs an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float constructs a float value.
func Float(f float64) Value { return Value{kind: KindFloat, fnum: f} }

// Enum constructs an enum value.  The caller is responsible for the token
// being in the vocabulary of whatever codec will encode it.
func Enum(s string) Value { return Value{kind: KindEnum, str: s} }

// Flag constructs a yes/no value.
func Flag(yes bool) Value {
	v := Value{kind: KindFlag}
	if yes {
		v.num = 1
	}
	return v
}

// UUID constructs a UUID value from a canonical-form string.
func UUID(s string) Value { return Value{kind: KindUUID, str: strings.ToLower(s)} }

// Null constructs a null value of the given kind.
func Null(kind Kind) Value { return Value{kind: kind, null: true} }

// NullSeq constructs a null sequence with the given element kind.
func NullSeq(elem Kind) Value { return Value{kind: KindSequence, elem: elem, null: true} }

// Seq constructs a sequence value.  All elements must share the element
// kind; Seq panics otherwise, since a mixed sequence is a programming error,
// not a data error.
func Seq(elem Kind, elems []Value) Value {
	for _, e := range elems {
		if e.kind != elem {
			panic("column.Seq: element kind mismatch: " + e.kind.String() + " in sequence of " + elem.String())
		}
	}
	return Value{kind: KindSequence, elem: elem, seq: elems}
}

// Strings constructs a sequence-of-strings value.
func Strings(elems []string) Value {
	vals := make([]Value, len(elems))
	for i, s := range elems {
		vals[i] = String(s)
	}
	return Seq(KindString, vals)
}

// Ints constructs a sequence-of-integers value.
func Ints(elems []int64) Value {
	vals := make([]Value, len(elems))
	for i, n := range elems {
		vals[i] = Int(n)
	}
	return Seq(KindInt, vals)
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.  A null value still has a kind.
func (v Value) IsNull() bool { return v.null }

// Str returns the string payload of a string, enum, or UUID value.
func (v Value) Str() string { return v.str }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.num }

// Float returns the float payload.
func (v Value) Float() float64 { return v.fnum }

// Bool returns the flag payload.
func (v Value) Bool() bool { return v.num != 0 }

// Seq returns the sequence elements.  Empty and null sequences both return
// a zero-length slice; use IsNull to tell them apart.
func (v Value) Seq() []Value { return v.seq }

// ElemKind returns the element kind of a sequence value.
func (v Value) ElemKind() Kind { return v.elem }

// Equal reports deep equality of kind, nullness, and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.null != o.null {
		return false
	}
	if v.null {
		return true
	}
	switch v.kind {
	case KindString, KindEnum, KindUUID:
		return v.str == o.str
	case KindInt, KindFlag:
		return v.num == o.num
	case KindFloat:
		return v.fnum == o.fnum
	case KindSequence:
		if v.elem != o.elem || len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Encode renders the value as a raw MAF token.  Null values of any kind
// encode as the empty token, as does the empty sequence.
func Encode(v Value) string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindString, KindEnum, KindUUID:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.fnum, 'g', -1, 64)
	case KindFlag:
		if v.num != 0 {
			return "1"
		}
		return "0"
	case KindSequence:
		if len(v.seq) == 0 {
			return ""
		}
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = Encode(e)
		}
		return strings.Join(parts, SeqDelimiter)
	}
	return ""
}
