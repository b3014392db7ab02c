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
)

// Writer emits a MAF file: the pragma block, the column header line, then
// one line per record.
type Writer struct {
	scheme  *scheme.Scheme
	bw      *bufio.Writer
	gz      *gzip.Writer
	closer  io.Closer
	failure error
	closed  bool
}

// NewWriter writes the header block for the given scheme to w and returns
// a record writer.  hdr may be nil, in which case a minimal header with
// the scheme's version and annotation-spec pragmas is emitted.
func NewWriter(w io.Writer, s *scheme.Scheme, hdr *Header) (*Writer, error) {
	if hdr == nil {
		hdr = NewHeader()
	}
	hdr.Set(VersionKey, s.Version())
	if s.AnnotationSpec() != s.Version() {
		hdr.Set(AnnotationSpecKey, s.AnnotationSpec())
	}
	wr := &Writer{scheme: s, bw: bufio.NewWriter(w)}
	if _, err := wr.bw.WriteString(hdr.encode() + "\n"); err != nil {
		return nil, errors.Wrap(err, "maf: write header")
	}
	if _, err := wr.bw.WriteString(strings.Join(s.ColumnNames(), "\t") + "\n"); err != nil {
		return nil, errors.Wrap(err, "maf: write column header")
	}
	return wr, nil
}

// Create creates a MAF file at path, gzip-compressing when the path has a
// gzip suffix.
func Create(path string, s *scheme.Scheme, hdr *Header) (*Writer, error) {
	ctx := vcontext.Background()
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "maf: create %s", path)
	}
	out := io.Writer(f.Writer(ctx))
	var gz *gzip.Writer
	if fileio.DetermineType(path) == fileio.Gzip {
		gz = gzip.NewWriter(out)
		out = gz
	}
	wr, err := NewWriter(out, s, hdr)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	wr.gz = gz
	wr.closer = closerFunc(func() error { return f.Close(ctx) })
	return wr, nil
}

// Write encodes one record.  The record must be bound to the writer's
// scheme.
func (wr *Writer) Write(r *record.Record) error {
	if wr.failure != nil {
		return wr.failure
	}
	if r.Scheme() != wr.scheme {
		wr.failure = fmt.Errorf("maf: record scheme %s does not match writer scheme %s",
			r.Scheme().AnnotationSpec(), wr.scheme.AnnotationSpec())
		return wr.failure
	}
	if _, err := wr.bw.WriteString(strings.Join(r.Encode(), "\t")); err != nil {
		wr.failure = errors.Wrap(err, "maf: write record")
		return wr.failure
	}
	if err := wr.bw.WriteByte('\n'); err != nil {
		wr.failure = errors.Wrap(err, "maf: write record")
		return wr.failure
	}
	return nil
}

// WriteAll drains an iterator into the writer, closing the iterator.
func (wr *Writer) WriteAll(it record.Iterator) error {
	defer it.Close()
	for it.Scan() {
		if err := wr.Write(it.Record()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Close flushes buffered output and closes the underlying file, if any.
func (wr *Writer) Close() error {
	if wr.closed {
		return wr.failure
	}
	wr.closed = true
	if err := wr.bw.Flush(); err != nil && wr.failure == nil {
		wr.failure = errors.Wrap(err, "maf: flush")
	}
	if wr.gz != nil {
		if err := wr.gz.Close(); err != nil && wr.failure == nil {
			wr.failure = errors.Wrap(err, "maf: close gzip stream")
		}
	}
	if wr.closer != nil {
		if err := wr.closer.Close(); err != nil && wr.failure == nil {
			wr.failure = err
		}
	}
	return wr.failure
}
