package maf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
	"github.com/grailbio/maf/sortorder"
)

// ReaderOpts controls MAF parsing.
type ReaderOpts struct {
	// Registry resolves the scheme named by the header pragmas.  nil
	// selects a fresh registry with the builtin schemes.
	Registry *scheme.Registry
	// Policy selects strict or lenient record decoding.
	Policy record.Policy
	// EnforceSortOrder verifies each record against the sort order the
	// header declares, failing on the first violation.  Files declaring
	// Unsorted or Unknown orders are never checked.
	EnforceSortOrder bool
}

// Reader decodes a MAF file into records.  It implements record.Iterator.
type Reader struct {
	header  *Header
	scheme  *scheme.Scheme
	opts    ReaderOpts
	scanner *bufio.Scanner
	closer  io.Closer
	checker *sortorder.Checker

	lineno   int64
	cur      *record.Record
	warnings []record.Warning
	failure  error
	closed   bool
}

// NewReader parses the header block from r and prepares record iteration.
func NewReader(r io.Reader, opts ReaderOpts) (*Reader, error) {
	if opts.Registry == nil {
		opts.Registry = scheme.NewRegistry(nil)
	}
	rd := &Reader{header: NewHeader(), opts: opts, scanner: bufio.NewScanner(r)}
	rd.scanner.Buffer(make([]byte, 64<<10), 16<<20)

	// Pragmas, then the tab-delimited column header line.
	var columnLine string
	for rd.scanner.Scan() {
		rd.lineno++
		line := strings.TrimRight(rd.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, HeaderLinePrefix) {
			if err := rd.header.parsePragma(line, rd.lineno); err != nil {
				return nil, err
			}
			continue
		}
		columnLine = line
		break
	}
	if err := rd.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "maf: read header")
	}
	if rd.header.Version() == "" {
		return nil, fmt.Errorf("maf: header has no version pragma")
	}
	if columnLine == "" {
		return nil, fmt.Errorf("maf: header has no column names")
	}
	s, err := opts.Registry.Resolve(rd.header.AnnotationSpec())
	if err != nil {
		return nil, err
	}
	rd.scheme = s
	names := strings.Split(columnLine, "\t")
	want := s.ColumnNames()
	if len(names) != len(want) {
		return nil, fmt.Errorf("maf: line %d: header names %d columns, scheme %s has %d",
			rd.lineno, len(names), s.AnnotationSpec(), len(want))
	}
	for i := range names {
		if names[i] != want[i] {
			return nil, fmt.Errorf("maf: line %d: column %d is %q, scheme %s expects %q",
				rd.lineno, i+1, names[i], s.AnnotationSpec(), want[i])
		}
	}
	if opts.EnforceSortOrder {
		if order := rd.declaredOrder(); order != nil {
			rd.checker = sortorder.NewChecker(order)
		}
	}
	return rd, nil
}

// declaredOrder maps the sort.order pragma to an Order, or nil for orders
// that do not define a comparator.
func (rd *Reader) declaredOrder() *sortorder.Order {
	var order *sortorder.Order
	switch rd.header.SortOrderName() {
	case "Coordinate":
		order = sortorder.Coordinate()
	case "BarcodesAndCoordinate":
		order = sortorder.BarcodesAndCoordinate()
	default:
		return nil
	}
	if contigs := rd.header.Contigs(); contigs != nil {
		order = order.WithContigs(contigs)
	}
	return order
}

// Open opens a MAF file by path, transparently decompressing gzip.
func Open(path string, opts ReaderOpts) (*Reader, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "maf: open %s", path)
	}
	in := io.Reader(f.Reader(ctx))
	closer := io.Closer(closerFunc(func() error { return f.Close(ctx) }))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(in)
		if err != nil {
			f.Close(ctx)
			return nil, errors.Wrapf(err, "maf: open %s", path)
		}
		in = gz
		closer = closerFunc(func() error {
			gz.Close()
			return f.Close(ctx)
		})
	}
	rd, err := NewReader(in, opts)
	if err != nil {
		closer.Close()
		return nil, err
	}
	rd.closer = closer
	return rd, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Header returns the parsed pragma block.
func (rd *Reader) Header() *Header { return rd.header }

// Scheme returns the resolved scheme the file is bound to.
func (rd *Reader) Scheme() *scheme.Scheme { return rd.scheme }

// Scan implements record.Iterator.
func (rd *Reader) Scan() bool {
	if rd.closed || rd.failure != nil {
		return false
	}
	for rd.scanner.Scan() {
		rd.lineno++
		line := strings.TrimRight(rd.scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, HeaderLinePrefix) {
			continue
		}
		tokens := strings.Split(line, "\t")
		rec, err := record.Decode(rd.scheme, rd.opts.Registry.Types(), tokens, rd.opts.Policy, rd.lineno)
		if err != nil {
			rd.failure = err
			return false
		}
		rd.warnings = append(rd.warnings, rec.Warnings()...)
		if rd.checker != nil {
			if err := rd.checker.Check(rec); err != nil {
				rd.failure = errors.Wrapf(err, "maf: line %d", rd.lineno)
				return false
			}
		}
		rd.cur = rec
		return true
	}
	if err := rd.scanner.Err(); err != nil {
		rd.failure = errors.Wrap(err, "maf: read")
	}
	return false
}

// Record implements record.Iterator.
func (rd *Reader) Record() *record.Record { return rd.cur }

// Err implements record.Iterator.
func (rd *Reader) Err() error { return rd.failure }

// Warnings returns the lenient-mode parse warnings aggregated across all
// records scanned so far.
func (rd *Reader) Warnings() []record.Warning { return rd.warnings }

// Close implements record.Iterator.
func (rd *Reader) Close() error {
	if rd.closed {
		return nil
	}
	rd.closed = true
	if rd.closer != nil {
		return rd.closer.Close()
	}
	return nil
}
