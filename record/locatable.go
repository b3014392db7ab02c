package record

import "fmt"

// Conventional column names that carry a record's genomic span.  A scheme
// must declare all four for its records to be locatable.
const (
	ChromosomeColumn = "Chromosome"
	StartColumn      = "Start_Position"
	EndColumn        = "End_Position"
	StrandColumn     = "Strand"
)

// Span is a genomic interval with 1-based inclusive start and end.
type Span struct {
	Chromosome string
	Start      int64
	End        int64
	Strand     string // "+", "-", or "" when the strand value is null
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d-%d", s.Chromosome, s.Start, s.End)
}

// Overlaps reports inclusive-inclusive interval intersection on the same
// chromosome.  Touching endpoints count as overlap.
func (s Span) Overlaps(o Span) bool {
	return s.Chromosome == o.Chromosome && s.Start <= o.End && o.Start <= s.End
}

// NotLocatableError reports a span request against a record whose scheme
// does not declare the conventional span columns.
type NotLocatableError struct {
	Scheme  string
	Missing string
}

func (e *NotLocatableError) Error() string {
	return fmt.Sprintf("record: scheme %s is not locatable: no %s column", e.Scheme, e.Missing)
}

// Locatable returns the record's genomic span.  It fails with
// *NotLocatableError if the scheme does not declare Chromosome,
// Start_Position, End_Position, and Strand, and with an ordinary error if
// any of chromosome, start, or end decoded to null.
func (r *Record) Locatable() (Span, error) {
	var span Span
	for _, name := range []string{ChromosomeColumn, StartColumn, EndColumn, StrandColumn} {
		if r.scheme.Index(name) < 0 {
			return Span{}, &NotLocatableError{Scheme: r.scheme.AnnotationSpec(), Missing: name}
		}
	}
	chrom, _ := r.Get(ChromosomeColumn)
	start, _ := r.Get(StartColumn)
	end, _ := r.Get(EndColumn)
	strand, _ := r.Get(StrandColumn)
	if chrom.IsNull() || start.IsNull() || end.IsNull() {
		return Span{}, fmt.Errorf("record: line %d: null chromosome or position", r.line)
	}
	span.Chromosome = chrom.Str()
	span.Start = start.Int()
	span.End = end.Int()
	if !strand.IsNull() {
		span.Strand = strand.Str()
	}
	return span, nil
}
