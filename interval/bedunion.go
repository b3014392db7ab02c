/*Package interval represents a union of disjoint genomic intervals loaded
  from a BED file, supporting point and span intersection queries against
  MAF record coordinates.
*/
package interval

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/maf/record"
)

// BEDUnion is a chromosome-keyed set of disjoint intervals.  Each value is
// a length-2N ascending breakpoint sequence: interval #k spans
// [elem[2k], elem[2k+1]) in 0-based half-open coordinates.  Touching and
// overlapping input intervals are merged on load.
type BEDUnion struct {
	intervals map[string][]int64
}

// Opts controls BED parsing.
type Opts struct {
	// OneBasedInput treats the start column as 1-based, as some
	// BED-adjacent formats do.
	OneBasedInput bool
}

type entry struct {
	start int64 // 0-based
	end   int64 // exclusive
}

// New loads a 3+ column BED from r.  Intervals need not be sorted; they
// are sorted and merged per chromosome.  Empty intervals are dropped.
func New(r io.Reader, opts Opts) (*BEDUnion, error) {
	raw := make(map[string][]entry)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("interval: line %d: fewer than 3 BED columns", lineno)
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval: line %d: bad start %q", lineno, fields[1])
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval: line %d: bad end %q", lineno, fields[2])
		}
		if opts.OneBasedInput {
			start--
		}
		if start < 0 || end < start {
			return nil, fmt.Errorf("interval: line %d: bad interval [%d, %d)", lineno, start, end)
		}
		if start == end {
			continue
		}
		raw[fields[0]] = append(raw[fields[0]], entry{start: start, end: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "interval: read BED")
	}
	u := &BEDUnion{intervals: make(map[string][]int64, len(raw))}
	for chrom, entries := range raw {
		sort.Slice(entries, func(i, j int) bool { return entries[i].start < entries[j].start })
		var flat []int64
		for _, e := range entries {
			// Merge touching and overlapping intervals as they arrive.
			if n := len(flat); n > 0 && e.start <= flat[n-1] {
				if e.end > flat[n-1] {
					flat[n-1] = e.end
				}
				continue
			}
			flat = append(flat, e.start, e.end)
		}
		u.intervals[chrom] = flat
	}
	return u, nil
}

// Load reads a BED by path, transparently decompressing gzip.
func Load(path string, opts Opts) (*BEDUnion, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "interval: open %s", path)
	}
	defer f.Close(ctx) // nolint: errcheck
	in := io.Reader(f.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return nil, errors.Wrapf(err, "interval: open %s", path)
		}
		defer gz.Close() // nolint: errcheck
		in = gz
	}
	return New(in, opts)
}

// Contains reports whether the 1-based position lies inside the union.
func (u *BEDUnion) Contains(chrom string, pos int64) bool {
	flat, ok := u.intervals[chrom]
	if !ok {
		return false
	}
	// The number of breakpoints <= pos-1 is odd exactly when pos-1 falls
	// inside an interval.
	idx := sort.Search(len(flat), func(i int) bool { return flat[i] > pos-1 })
	return idx&1 == 1
}

// OverlapsSpan reports whether any part of the 1-based inclusive span
// intersects the union.
func (u *BEDUnion) OverlapsSpan(span record.Span) bool {
	flat, ok := u.intervals[span.Chromosome]
	if !ok {
		return false
	}
	start, end := span.Start-1, span.End // 0-based half-open
	idx := sort.Search(len(flat), func(i int) bool { return flat[i] > start })
	if idx&1 == 1 {
		return true // span start lands inside an interval
	}
	// flat[idx] is the start of the first interval after the span's start.
	return idx < len(flat) && flat[idx] < end
}

// Chromosomes returns the chromosomes with at least one interval, in
// unspecified order.
func (u *BEDUnion) Chromosomes() []string {
	out := make([]string, 0, len(u.intervals))
	for chrom := range u.intervals {
		out = append(out, chrom)
	}
	return out
}
