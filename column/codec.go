package column

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a token that could not be decoded into a value of the
// declared type.  Under lenient decoding it is collected as a warning;
// under strict decoding it aborts the record.
type ParseError struct {
	Tag   string // the type tag of the codec that rejected the token
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column: cannot parse %q as %s: %s", e.Token, e.Tag, e.Msg)
}

// UnknownTypeError reports a type tag with no registered codec.  It is
// surfaced at scheme-resolution time, never per record.
type UnknownTypeError struct {
	Tag string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("column: unknown column type %q", e.Tag)
}

// Codec decodes one raw token into a typed Value.  Encoding is uniform per
// kind and lives in Encode.
type Codec interface {
	// Decode parses the token.  The returned error, if any, is a *ParseError.
	Decode(token string) (Value, error)
	// Vocabulary returns the closed vocabulary for enum-backed codecs so
	// that validators can report the expected values, or nil.
	Vocabulary() []string
	// Kind returns the kind of values this codec produces.
	Kind() Kind
}

// Registry maps type tags to codecs.  A fresh registry carries the builtin
// tags; custom enums and sequences may be registered on top.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry returns a registry populated with the builtin type tags.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	r.Register("String", stringCodec{})
	r.Register("NullableString", stringCodec{nullable: true})
	r.Register("Integer", intCodec{})
	r.Register("NullableInteger", intCodec{nullable: true})
	r.Register("ZeroBasedInteger", intCodec{min: intPtr(0)})
	r.Register("OneBasedInteger", intCodec{min: intPtr(1)})
	r.Register("NullableZeroBasedInteger", intCodec{nullable: true, min: intPtr(0)})
	r.Register("NullableOneBasedInteger", intCodec{nullable: true, min: intPtr(1)})
	r.Register("Float", floatCodec{})
	r.Register("NullableFloat", floatCodec{nullable: true})
	r.Register("NullableYesOrNo", flagCodec{})
	r.Register("UUID", uuidCodec{})
	r.Register("NullableUUID", uuidCodec{nullable: true})
	r.Register("SequenceOfStrings", seqCodec{tag: "SequenceOfStrings", elem: stringCodec{}})
	r.Register("SequenceOfIntegers", seqCodec{tag: "SequenceOfIntegers", elem: intCodec{}})
	r.RegisterEnum("Strand", []string{"+", "-"}, false)
	r.RegisterEnum("VariantType", []string{"SNP", "DNP", "TNP", "ONP", "INS", "DEL", "Consolidated"}, false)
	r.RegisterEnum("VariantClassification", []string{
		"Frame_Shift_Del", "Frame_Shift_Ins", "In_Frame_Ins", "In_Frame_Del",
		"Missense_Mutation", "Nonsense_Mutation", "Silent", "Splice_Site",
		"Translation_Start_Site", "Nonstop_Mutation", "3'UTR", "3'Flank",
		"5'UTR", "5'Flank", "IGR", "Intron", "RNA", "Targeted_Region",
		"Splice_Region",
	}, false)
	r.RegisterEnum("MutationStatus", []string{"Germline", "Somatic", "LOH", "None", "Unknown"}, false)
	r.RegisterEnum("VerificationStatus", []string{"Verified", "Unknown"}, true)
	r.RegisterEnum("ValidationStatus", []string{"Untested", "Inconclusive", "Valid", "Invalid"}, true)
	return r
}

// Register adds or replaces the codec for a tag.
func (r *Registry) Register(tag string, c Codec) {
	r.codecs[tag] = c
}

// RegisterEnum registers an enum codec under the given tag with the given
// closed vocabulary.  Token matching is case-insensitive; decoded values
// are canonicalized to the vocabulary spelling.
func (r *Registry) RegisterEnum(tag string, vocab []string, nullable bool) {
	canon := make(map[string]string, len(vocab))
	for _, s := range vocab {
		canon[strings.ToLower(s)] = s
	}
	r.Register(tag, enumCodec{tag: tag, vocab: vocab, canon: canon, nullable: nullable})
}

// RegisterSequenceOf registers a nullable sequence codec whose elements are
// decoded by the codec registered under elemTag.
func (r *Registry) RegisterSequenceOf(tag, elemTag string) error {
	elem, err := r.Lookup(elemTag)
	if err != nil {
		return err
	}
	r.Register(tag, seqCodec{tag: tag, elem: elem})
	return nil
}

// Lookup returns the codec for a tag, or an *UnknownTypeError.
func (r *Registry) Lookup(tag string) (Codec, error) {
	c, ok := r.codecs[tag]
	if !ok {
		return nil, &UnknownTypeError{Tag: tag}
	}
	return c, nil
}

// Decode is shorthand for Lookup followed by Codec.Decode.
func (r *Registry) Decode(tag, token string) (Value, error) {
	c, err := r.Lookup(tag)
	if err != nil {
		return Value{}, err
	}
	return c.Decode(token)
}

func intPtr(n int64) *int64 { return &n }

type stringCodec struct {
	nullable bool
}

func (c stringCodec) Kind() Kind { return KindString }
func (c stringCodec) Vocabulary() []string { return nil }
func (c stringCodec) tagName() string {
	if c.nullable {
		return "NullableString"
	}
	return "String"
}

func (c stringCodec) Decode(token string) (Value, error) {
	if token == "" {
		if c.nullable {
			return Null(KindString), nil
		}
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "empty string is not allowed"}
	}
	return String(token), nil
}

type intCodec struct {
	nullable bool
	min      *int64
}

func (c intCodec) Kind() Kind { return KindInt }
func (c intCodec) Vocabulary() []string { return nil }
func (c intCodec) tagName() string {
	if c.nullable {
		return "NullableInteger"
	}
	return "Integer"
}

func (c intCodec) Decode(token string) (Value, error) {
	if token == "" {
		if c.nullable {
			return Null(KindInt), nil
		}
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "null not allowed"}
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "not an integer"}
	}
	if c.min != nil && n < *c.min {
		return Value{}, &ParseError{Tag: c.tagName(), Token: token,
			Msg: fmt.Sprintf("out of range (<%d)", *c.min)}
	}
	return Int(n), nil
}

type floatCodec struct {
	nullable bool
}

func (c floatCodec) Kind() Kind { return KindFloat }
func (c floatCodec) Vocabulary() []string { return nil }
func (c floatCodec) tagName() string {
	if c.nullable {
		return "NullableFloat"
	}
	return "Float"
}

func (c floatCodec) Decode(token string) (Value, error) {
	if token == "" {
		if c.nullable {
			return Null(KindFloat), nil
		}
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "null not allowed"}
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "not a float"}
	}
	return Float(f), nil
}

type enumCodec struct {
	tag      string
	vocab    []string
	canon    map[string]string // lowercased token -> canonical spelling
	nullable bool
}

func (c enumCodec) Kind() Kind { return KindEnum }
func (c enumCodec) Vocabulary() []string { return c.vocab }

func (c enumCodec) Decode(token string) (Value, error) {
	if token == "" {
		if c.nullable {
			return Null(KindEnum), nil
		}
		return Value{}, &ParseError{Tag: c.tag, Token: token, Msg: "null not allowed"}
	}
	if canon, ok := c.canon[strings.ToLower(token)]; ok {
		return Enum(canon), nil
	}
	return Value{}, &ParseError{Tag: c.tag, Token: token,
		Msg: "expected one of: " + strings.Join(c.vocab, ", ")}
}

// flagCodec decodes the nullable yes/no column encoding: empty for null,
// "0" for no, "1" for yes.  "Yes" and "No" are accepted on input.
type flagCodec struct{}

func (c flagCodec) Kind() Kind { return KindFlag }
func (c flagCodec) Vocabulary() []string { return []string{"0", "1"} }

func (c flagCodec) Decode(token string) (Value, error) {
	switch strings.ToLower(token) {
	case "":
		return Null(KindFlag), nil
	case "0", "no":
		return Flag(false), nil
	case "1", "yes":
		return Flag(true), nil
	}
	return Value{}, &ParseError{Tag: "NullableYesOrNo", Token: token, Msg: "expected 0, 1, Yes, or No"}
}

type uuidCodec struct {
	nullable bool
}

func (c uuidCodec) Kind() Kind { return KindUUID }
func (c uuidCodec) Vocabulary() []string { return nil }
func (c uuidCodec) tagName() string {
	if c.nullable {
		return "NullableUUID"
	}
	return "UUID"
}

func (c uuidCodec) Decode(token string) (Value, error) {
	if token == "" {
		if c.nullable {
			return Null(KindUUID), nil
		}
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "null not allowed"}
	}
	if !validUUID(token) {
		return Value{}, &ParseError{Tag: c.tagName(), Token: token, Msg: "not a UUID"}
	}
	return UUID(token), nil
}

// validUUID checks the canonical 8-4-4-4-12 form.
func validUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
				return false
			}
		}
	}
	return true
}

// seqCodec decodes a ';'-delimited sequence.  The empty token decodes to
// the empty sequence; a null sequence is representable in the value model
// but never produced by decoding, and encodes to the same empty token.
type seqCodec struct {
	tag  string
	elem Codec
}

func (c seqCodec) Kind() Kind { return KindSequence }
func (c seqCodec) Vocabulary() []string { return c.elem.Vocabulary() }

func (c seqCodec) Decode(token string) (Value, error) {
	if token == "" {
		return Seq(c.elem.Kind(), nil), nil
	}
	parts := strings.Split(token, SeqDelimiter)
	elems := make([]Value, len(parts))
	for i, part := range parts {
		v, err := c.elem.Decode(part)
		if err != nil {
			pe := err.(*ParseError)
			return Value{}, &ParseError{Tag: c.tag, Token: token,
				Msg: fmt.Sprintf("element %d: %s", i+1, pe.Msg)}
		}
		elems[i] = v
	}
	return Seq(c.elem.Kind(), elems), nil
}
