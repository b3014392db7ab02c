/*Package sortorder implements composable comparators over MAF records.
  An Order is an ordered list of keys; each key names a scheme column, a
  direction, and a comparator kind (lexical, numeric, or chromosome-aware).
  Orders drive both the external sorter and the overlap iterator.
*/
package sortorder

import (
	"fmt"
	"strings"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/record"
)

// Direction orders a key ascending or descending.
type Direction int8

const (
	// Ascending sorts smallest first.
	Ascending Direction = iota
	// Descending sorts largest first.
	Descending
)

// Comparator selects how a key's values are compared.
type Comparator int8

const (
	// Lexical compares the encoded token text.
	Lexical Comparator = iota
	// Numeric compares integer or float values.
	Numeric
	// Chromosome compares chromosome names in canonical genomic order
	// rather than lexically.
	Chromosome
)

// Key is one entry of an Order.
type Key struct {
	Column     string
	Direction  Direction
	Comparator Comparator
}

// OrderError reports an order that references a column absent from the
// scheme of a record being compared, or a chromosome name absent from an
// explicit contig list.
type OrderError struct {
	Column string
	Msg    string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("sortorder: column %s: %s", e.Column, e.Msg)
}

// Order is an immutable list of sort keys, with an optional explicit
// contig ranking that overrides the canonical chromosome table.
type Order struct {
	name    string
	keys    []Key
	contigs map[string]int // nil means canonical ordering
}

// New returns an order over the given keys.
func New(name string, keys ...Key) *Order {
	return &Order{name: name, keys: keys}
}

// Coordinate returns the chromosome, start, end coordinate order used for
// sorted MAFs.
func Coordinate() *Order {
	return New("Coordinate",
		Key{Column: record.ChromosomeColumn, Comparator: Chromosome},
		Key{Column: record.StartColumn, Comparator: Numeric},
		Key{Column: record.EndColumn, Comparator: Numeric},
	)
}

// BarcodesAndCoordinate returns the tumor barcode, matched normal barcode,
// chromosome, start, end order.
func BarcodesAndCoordinate() *Order {
	return New("BarcodesAndCoordinate",
		Key{Column: "Tumor_Sample_Barcode", Comparator: Lexical},
		Key{Column: "Matched_Norm_Sample_Barcode", Comparator: Lexical},
		Key{Column: record.ChromosomeColumn, Comparator: Chromosome},
		Key{Column: record.StartColumn, Comparator: Numeric},
		Key{Column: record.EndColumn, Comparator: Numeric},
	)
}

// Name returns the order's name.
func (o *Order) Name() string { return o.name }

// Keys returns the order's keys.  The caller must not mutate the returned
// slice.
func (o *Order) Keys() []Key { return o.keys }

// WithContigs returns a copy of the order whose chromosome keys rank names
// by position in contigs instead of the canonical table.  A chromosome
// absent from the list fails key extraction with an *OrderError.
func (o *Order) WithContigs(contigs []string) *Order {
	ranks := make(map[string]int, len(contigs))
	for i, c := range contigs {
		ranks[c] = i
	}
	return &Order{name: o.name, keys: o.keys, contigs: ranks}
}

// KeyOf extracts the comparison key for a record.  The returned key is
// self-contained; comparing keys never touches the records again.
func (o *Order) KeyOf(r *record.Record) (RecordKey, error) {
	parts := make([]part, len(o.keys))
	for i, k := range o.keys {
		v, err := r.Get(k.Column)
		if err != nil {
			return RecordKey{}, &OrderError{Column: k.Column,
				Msg: fmt.Sprintf("not in scheme %s", r.Scheme().AnnotationSpec())}
		}
		p, err := o.makePart(k, v)
		if err != nil {
			return RecordKey{}, err
		}
		parts[i] = p
	}
	return RecordKey{parts: parts}, nil
}

func (o *Order) makePart(k Key, v column.Value) (part, error) {
	p := part{dir: k.Direction, cmp: k.Comparator}
	if v.IsNull() {
		p.null = true
		return p, nil
	}
	switch k.Comparator {
	case Lexical:
		p.str = column.Encode(v)
	case Numeric:
		switch v.Kind() {
		case column.KindInt, column.KindFlag:
			p.num = v.Int()
		case column.KindFloat:
			p.isFloat = true
			p.fnum = v.Float()
		default:
			return part{}, &OrderError{Column: k.Column,
				Msg: fmt.Sprintf("numeric comparator over %s value", v.Kind())}
		}
	case Chromosome:
		if v.Kind() != column.KindString && v.Kind() != column.KindEnum {
			return part{}, &OrderError{Column: k.Column,
				Msg: fmt.Sprintf("chromosome comparator over %s value", v.Kind())}
		}
		name := v.Str()
		p.str = name
		if o.contigs != nil {
			rank, ok := o.contigs[name]
			if !ok {
				return part{}, &OrderError{Column: k.Column,
					Msg: fmt.Sprintf("contig %q not in the supplied contig list", name)}
			}
			p.num = int64(rank)
		} else {
			rank, known := CanonicalChromosomeRank(name)
			p.num = int64(rank)
			p.lexicalTie = !known
		}
	}
	return p, nil
}

type part struct {
	dir        Direction
	cmp        Comparator
	null       bool
	num        int64
	fnum       float64
	isFloat    bool
	str        string
	lexicalTie bool // chromosome outside the canonical table; break by name
}

// RecordKey is a record's extracted sort key.  Keys extracted by the same
// Order are mutually comparable.
type RecordKey struct {
	parts []part
}

// Compare returns -1, 0, or 1.  Null values order after non-null values
// regardless of direction.
func (k RecordKey) Compare(o RecordKey) int {
	n := len(k.parts)
	if len(o.parts) < n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		if c := k.parts[i].compare(o.parts[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (p part) compare(q part) int {
	if p.null || q.null {
		// Nulls order last.
		switch {
		case p.null && q.null:
			return 0
		case p.null:
			return 1
		default:
			return -1
		}
	}
	c := 0
	switch p.cmp {
	case Lexical:
		c = strings.Compare(p.str, q.str)
	case Numeric:
		c = compareNumeric(p, q)
	case Chromosome:
		c = compareInt64(p.num, q.num)
		if c == 0 && p.lexicalTie && q.lexicalTie {
			c = strings.Compare(p.str, q.str)
		}
	}
	if p.dir == Descending {
		c = -c
	}
	return c
}

func compareNumeric(p, q part) int {
	if p.isFloat || q.isFloat {
		pf, qf := p.fnum, q.fnum
		if !p.isFloat {
			pf = float64(p.num)
		}
		if !q.isFloat {
			qf = float64(q.num)
		}
		switch {
		case pf < qf:
			return -1
		case pf > qf:
			return 1
		}
		return 0
	}
	return compareInt64(p.num, q.num)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders the key for error messages.
func (k RecordKey) String() string {
	parts := make([]string, len(k.parts))
	for i, p := range k.parts {
		switch {
		case p.null:
			parts[i] = ""
		case p.cmp == Numeric && p.isFloat:
			parts[i] = fmt.Sprintf("%g", p.fnum)
		case p.cmp == Numeric:
			parts[i] = fmt.Sprintf("%d", p.num)
		default:
			parts[i] = p.str
		}
	}
	return strings.Join(parts, "\t")
}
