// Package record binds an ordered list of typed column values to a
// resolved scheme.  Records are immutable once decoded; mutation produces
// a new Record.
package record

import (
	"fmt"
	"hash/fnv"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/scheme"
	"github.com/pkg/errors"
)

// Policy selects how value-parse failures are treated during decoding.
type Policy int

const (
	// Strict aborts decoding of the record on the first failure.
	Strict Policy = iota
	// Lenient substitutes a null value for each failing column and
	// collects the failures as warnings on the record.
	Lenient
)

// Warning is one lenient-mode value-parse failure.
type Warning struct {
	Column string
	Line   int64 // source line number, 0 if unknown
	Err    error // the underlying *column.ParseError
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d, column %s: %v", w.Line, w.Column, w.Err)
	}
	return fmt.Sprintf("column %s: %v", w.Column, w.Err)
}

// UnknownColumnError reports a Get or WithValue against a column name the
// scheme does not declare.
type UnknownColumnError struct {
	Scheme string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("record: scheme %s has no column %q", e.Scheme, e.Column)
}

// Record is one data line of a MAF file, decoded against exactly one
// resolved scheme.
type Record struct {
	scheme   *scheme.Scheme
	values   []column.Value
	line     int64
	warnings []Warning
}

// Decode builds a Record from raw tokens in effective column order.  The
// token count must match the scheme exactly.  line is the source line
// number used in error context; pass 0 if unknown.
func Decode(s *scheme.Scheme, types *column.Registry, tokens []string, policy Policy, line int64) (*Record, error) {
	if len(tokens) != s.Len() {
		return nil, errors.Errorf("record: line %d: scheme %s expects %d columns, found %d tokens",
			line, s.AnnotationSpec(), s.Len(), len(tokens))
	}
	r := &Record{scheme: s, values: make([]column.Value, len(tokens)), line: line}
	for i, col := range s.Columns() {
		codec, err := types.Lookup(col.Type)
		if err != nil {
			// Resolution validated every tag; a miss here means the codec
			// registry changed out from under the scheme.
			return nil, errors.Wrapf(err, "record: line %d, column %s", line, col.Name)
		}
		v, err := codec.Decode(tokens[i])
		if err != nil {
			if policy == Strict {
				return nil, errors.Wrapf(err, "record: line %d, column %s", line, col.Name)
			}
			r.warnings = append(r.warnings, Warning{Column: col.Name, Line: line, Err: err})
			v = column.Null(codec.Kind())
		}
		r.values[i] = v
	}
	return r, nil
}

// Scheme returns the resolved scheme the record is bound to.
func (r *Record) Scheme() *scheme.Scheme { return r.scheme }

// Line returns the source line number, or 0.
func (r *Record) Line() int64 { return r.line }

// Warnings returns the lenient-mode parse warnings collected during
// decoding, in column order.
func (r *Record) Warnings() []Warning { return r.warnings }

// Get returns the value of the named column.
func (r *Record) Get(name string) (column.Value, error) {
	i := r.scheme.Index(name)
	if i < 0 {
		return column.Value{}, &UnknownColumnError{Scheme: r.scheme.AnnotationSpec(), Column: name}
	}
	return r.values[i], nil
}

// Values returns the ordered values.  The caller must not mutate the
// returned slice.
func (r *Record) Values() []column.Value { return r.values }

// WithValue returns a copy of the record with the named column replaced.
func (r *Record) WithValue(name string, v column.Value) (*Record, error) {
	i := r.scheme.Index(name)
	if i < 0 {
		return nil, &UnknownColumnError{Scheme: r.scheme.AnnotationSpec(), Column: name}
	}
	values := make([]column.Value, len(r.values))
	copy(values, r.values)
	values[i] = v
	return &Record{scheme: r.scheme, values: values, line: r.line}, nil
}

// Encode renders the record back into raw tokens in effective column
// order.
func (r *Record) Encode() []string {
	tokens := make([]string, len(r.values))
	for i, v := range r.values {
		tokens[i] = column.Encode(v)
	}
	return tokens
}

// Equal reports whether two records are bound to the same resolved scheme
// and hold equal values in every column.
func (r *Record) Equal(o *Record) bool {
	if r.scheme != o.scheme || len(r.values) != len(o.values) {
		return false
	}
	for i := range r.values {
		if !r.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (r *Record) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.scheme.AnnotationSpec())) // nolint: errcheck
	for _, v := range r.values {
		h.Write([]byte{0})                // nolint: errcheck
		h.Write([]byte(column.Encode(v))) // nolint: errcheck
	}
	return h.Sum64()
}
