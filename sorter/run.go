package sorter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
	"github.com/grailbio/maf/sortorder"
	"v.io/x/lib/vlog"
)

// Run file format: a gzip stream of newline-terminated lines, one record
// per line, tokens tab-joined in effective column order.  MAF tokens may
// not contain tabs or newlines, so line framing is unambiguous.

func writeRun(w io.Writer, batch []entry) error {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)
	for _, e := range batch {
		if _, err := bw.WriteString(strings.Join(e.rec.Encode(), "\t")); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return gz.Close()
}

// runSource reads a spilled run back in order, re-deriving each record's
// key.  The file is removed on close.
type runSource struct {
	path   string
	scheme *scheme.Scheme
	types  *column.Registry
	order  *sortorder.Order

	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	cur     entry
	failure error
	closed  bool
}

func newRunSource(path string, s *scheme.Scheme, types *column.Registry, order *sortorder.Order) source {
	return &runSource{path: path, scheme: s, types: types, order: order}
}

func (r *runSource) scan() bool {
	if r.failure != nil || r.closed {
		return false
	}
	if r.scanner == nil {
		if !r.open() {
			return false
		}
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.failure = &CorruptRunError{Path: r.path, Msg: err.Error()}
		}
		return false
	}
	tokens := strings.Split(r.scanner.Text(), "\t")
	// Leniently-decoded input records can hold a null in a non-nullable
	// column, and that null round-trips through the run file as the empty
	// token, so the run must be re-decoded leniently too.  Framing
	// corruption still surfaces as a token-count mismatch or a gzip error.
	rec, err := record.Decode(r.scheme, r.types, tokens, record.Lenient, 0)
	if err != nil {
		r.failure = &CorruptRunError{Path: r.path, Msg: err.Error()}
		return false
	}
	key, err := r.order.KeyOf(rec)
	if err != nil {
		// The key was extracted successfully before the spill, so a
		// failure here means the run did not read back what was written.
		r.failure = &CorruptRunError{Path: r.path, Msg: err.Error()}
		return false
	}
	r.cur = entry{key: key, rec: rec}
	return true
}

func (r *runSource) open() bool {
	f, err := os.Open(r.path)
	if err != nil {
		r.failure = &IOError{Op: fmt.Sprintf("reopen spill run %s", r.path), Err: err}
		return false
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		r.failure = &CorruptRunError{Path: r.path, Msg: err.Error()}
		return false
	}
	r.file = f
	r.gz = gz
	r.scanner = bufio.NewScanner(gz)
	// Records can be long; grow the line buffer well past the default.
	r.scanner.Buffer(make([]byte, 64<<10), 16<<20)
	return true
}

func (r *runSource) head() entry { return r.cur }

func (r *runSource) err() error { return r.failure }

func (r *runSource) close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.gz != nil {
		r.gz.Close()
	}
	if r.file != nil {
		r.file.Close()
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		vlog.Errorf("sorter: failed to remove spill run %s: %v", r.path, err)
	}
}

// memorySource serves the final partial batch without spilling it.
type memorySource struct {
	entries []entry
	cur     entry
}

func (m *memorySource) scan() bool {
	if len(m.entries) == 0 {
		return false
	}
	m.cur = m.entries[0]
	m.entries = m.entries[1:]
	return true
}

func (m *memorySource) head() entry { return m.cur }

func (m *memorySource) err() error { return nil }

func (m *memorySource) close() { m.entries = nil }
