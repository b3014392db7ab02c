/*Package overlap synchronizes several independently sorted MAF record
  streams and emits groups of genomically overlapping records.  Each input
  stream must be sorted by coordinate order; the iterator verifies this as
  it goes and fails rather than produce silently incomplete groupings.
  Intervals are 1-based inclusive-inclusive, so touching endpoints count as
  overlapping.
*/
package overlap

import (
	"fmt"
	"strings"

	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/sortorder"
)

// Group maps a stream index to the records from that stream participating
// in one overlapping cluster.  A stream with no record intersecting the
// cluster window is absent from the map; absence is the signal, never a
// nil placeholder.
type Group map[int][]*record.Record

// OrderError reports an input stream that violated the required coordinate
// sort order, or whose records could not be keyed at all.
type OrderError struct {
	Stream int
	Err    error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("overlap: stream %d: %v", e.Stream, e.Err)
}

// Options controls an overlap iteration.
type Options struct {
	// Contigs, when non-empty, ranks chromosomes by position in the list
	// instead of the canonical ordering table.  Every chromosome observed
	// on any stream must then appear in the list.
	Contigs []string
}

// Iterator sweeps N sorted streams and yields overlap groups.
type Iterator struct {
	cursors []*cursor
	ranks   map[string]int // nil means canonical chromosome ordering
	cur     Group
	started bool
	failure error
	closed  bool
}

// New returns an iterator over the given streams.  The iterator takes
// ownership of the streams: closing it closes them, on early termination
// as well as on exhaustion.
func New(streams []record.Iterator, opts Options) *Iterator {
	it := &Iterator{cursors: make([]*cursor, len(streams))}
	if len(opts.Contigs) > 0 {
		it.ranks = make(map[string]int, len(opts.Contigs))
		for i, c := range opts.Contigs {
			it.ranks[c] = i
		}
	}
	order := sortorder.Coordinate()
	if it.ranks != nil {
		order = order.WithContigs(opts.Contigs)
	}
	for i, s := range streams {
		it.cursors[i] = &cursor{index: i, it: s, checker: sortorder.NewChecker(order)}
	}
	return it
}

// Iterate is shorthand for New with default options.
func Iterate(streams ...record.Iterator) *Iterator {
	return New(streams, Options{})
}

// cursor holds one stream's current head.
type cursor struct {
	index     int
	it        record.Iterator
	checker   *sortorder.Checker
	head      *record.Record
	span      record.Span
	exhausted bool
}

// advance loads the next record, verifying per-stream monotonicity.
func (c *cursor) advance() error {
	if !c.it.Scan() {
		c.head = nil
		c.exhausted = true
		if err := c.it.Err(); err != nil {
			return &OrderError{Stream: c.index, Err: err}
		}
		return nil
	}
	rec := c.it.Record()
	if err := c.checker.Check(rec); err != nil {
		return &OrderError{Stream: c.index, Err: err}
	}
	span, err := rec.Locatable()
	if err != nil {
		return &OrderError{Stream: c.index, Err: err}
	}
	c.head = rec
	c.span = span
	return nil
}

// compareChromosomes orders two chromosome names under the iterator's
// ranking.
func (it *Iterator) compareChromosomes(a, b string) (int, error) {
	if it.ranks == nil {
		return sortorder.CompareChromosomes(a, b), nil
	}
	ra, ok := it.ranks[a]
	if !ok {
		return 0, fmt.Errorf("overlap: contig %q not in the supplied contig list", a)
	}
	rb, ok := it.ranks[b]
	if !ok {
		return 0, fmt.Errorf("overlap: contig %q not in the supplied contig list", b)
	}
	switch {
	case ra < rb:
		return -1, nil
	case ra > rb:
		return 1, nil
	}
	return 0, nil
}

// Scan advances to the next overlap group.
func (it *Iterator) Scan() bool {
	if it.closed || it.failure != nil {
		return false
	}
	if !it.started {
		it.started = true
		// Prime every cursor on the first call.
		for _, c := range it.cursors {
			if err := c.advance(); err != nil {
				it.failure = err
				return false
			}
		}
	}
	it.cur = nil

	// Find the leading edge: among heads on the least chromosome, the
	// minimal start position.
	var (
		chrom    string
		start    int64
		haveEdge bool
	)
	for _, c := range it.cursors {
		if c.exhausted {
			continue
		}
		if !haveEdge {
			chrom, start, haveEdge = c.span.Chromosome, c.span.Start, true
			continue
		}
		cc, err := it.compareChromosomes(c.span.Chromosome, chrom)
		if err != nil {
			it.failure = &OrderError{Stream: c.index, Err: err}
			return false
		}
		if cc < 0 || (cc == 0 && c.span.Start < start) {
			chrom, start = c.span.Chromosome, c.span.Start
		}
	}
	if !haveEdge {
		return false // all streams exhausted
	}

	// Grow the window from the point [start, start] to a fixpoint,
	// consuming every head that intersects it.  Consuming a head exposes
	// the stream's next record, which may itself intersect, so re-scan
	// until a full pass consumes nothing.
	group := make(Group)
	end := start
	for {
		consumed := false
		for _, c := range it.cursors {
			for !c.exhausted &&
				c.span.Chromosome == chrom &&
				c.span.Start <= end && start <= c.span.End {
				group[c.index] = append(group[c.index], c.head)
				if c.span.End > end {
					end = c.span.End
				}
				if err := c.advance(); err != nil {
					it.failure = err
					return false
				}
				consumed = true
			}
		}
		if !consumed {
			break
		}
	}
	it.cur = group
	return true
}

// Group returns the current overlap group.  Valid only after a call to
// Scan returns true.
func (it *Iterator) Group() Group { return it.cur }

// Err returns the error that stopped iteration, or nil.
func (it *Iterator) Err() error { return it.failure }

// Close closes all input streams.  Idempotent.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	var firstErr error
	for _, c := range it.cursors {
		if err := c.it.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// String renders a group compactly for logs and tests.
func (g Group) String() string {
	var parts []string
	for i := 0; ; i++ {
		recs, ok := g[i]
		if !ok {
			if len(parts) >= len(g) {
				break
			}
			continue
		}
		spans := make([]string, len(recs))
		for j, r := range recs {
			span, err := r.Locatable()
			if err != nil {
				spans[j] = "?"
				continue
			}
			spans[j] = span.String()
		}
		parts = append(parts, fmt.Sprintf("%d:[%s]", i, strings.Join(spans, " ")))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
