/*Package sorter implements disk-backed external sorting of MAF records.
  Records are consumed into bounded in-memory batches; each full batch is
  sorted and spilled to a compressed temporary run file, and the runs are
  k-way merged into a single lazily produced sorted sequence.  Memory use
  is bounded by the batch capacity plus one buffered record per run.
*/
package sorter

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
	"github.com/grailbio/maf/sortorder"
	"v.io/x/lib/vlog"
)

// DefaultBatchCapacity is the number of records kept in memory before
// spilling, when Options.BatchCapacity is unset.
const DefaultBatchCapacity = 1 << 16

// Options controls a sort invocation.
type Options struct {
	// BatchCapacity is the maximum number of records held in memory at a
	// time.  Values <= 0 select DefaultBatchCapacity.
	BatchCapacity int
	// TmpDir is the directory for spill runs.  "" means the system default.
	TmpDir string
	// Types is the codec registry used to re-decode spilled records.  It
	// must cover every type tag of the records' scheme; nil selects a
	// fresh registry with the builtin tags.
	Types *column.Registry
}

// IOError reports a failure to allocate or use temporary spill storage.
// It is fatal; retrying cannot fix exhausted storage.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("sorter: %s: %v", e.Op, e.Err)
}

// CorruptRunError reports a spill run that failed to deserialize.  Runs
// are written and read back within one invocation, so this is an internal
// invariant violation, not a data error.
type CorruptRunError struct {
	Path string
	Msg  string
}

func (e *CorruptRunError) Error() string {
	return fmt.Sprintf("sorter: corrupt run %s: %s", e.Path, e.Msg)
}

// entry pairs a record with its extracted key and input sequence number.
// The sequence number breaks ties so the sort is stable.
type entry struct {
	seq uint64
	key sortorder.RecordKey
	rec *record.Record
}

func (e entry) less(o entry) bool {
	if c := e.key.Compare(o.key); c != 0 {
		return c < 0
	}
	return e.seq < o.seq
}

// Sort orders the input under the given order.  The returned iterator is
// lazy: input is consumed (and spilled) on the first Scan, and records are
// merged out one at a time.  Closing the iterator deletes any remaining
// runs, whether or not the sequence was exhausted.  The input iterator
// remains owned by the caller.
func Sort(in record.Iterator, order *sortorder.Order, opts Options) record.Iterator {
	if opts.BatchCapacity <= 0 {
		opts.BatchCapacity = DefaultBatchCapacity
	}
	if opts.Types == nil {
		opts.Types = column.NewRegistry()
	}
	return &mergeIterator{in: in, order: order, opts: opts}
}

// mergeIterator is the lazy sorted output sequence.
type mergeIterator struct {
	in    record.Iterator
	order *sortorder.Order
	opts  Options

	started bool
	closed  bool
	scheme  *scheme.Scheme // scheme of the first record; all must match
	leafs   llrb.Tree
	sources []source // all sources, for cleanup
	cur     *record.Record
	err     errors.Once
}

// leaf is one merge input: a spilled run or the final in-memory batch.
// seq is the run's creation index; runs are created in input order, so
// comparing seq preserves global stability for equal keys.
type leaf struct {
	seq int
	src source
}

func (l *leaf) Compare(c llrb.Comparable) int {
	o := c.(*leaf)
	if c := l.src.head().key.Compare(o.src.head().key); c != 0 {
		return c
	}
	return l.seq - o.seq
}

// source produces entries in key order.  head is valid after a true scan.
type source interface {
	scan() bool
	head() entry
	err() error
	// close releases the source's storage.  Idempotent.
	close()
}

// start consumes the whole input, spilling full batches, then seeds the
// merge tree.
func (m *mergeIterator) start() {
	var (
		batch   = make([]entry, 0, m.opts.BatchCapacity)
		seq     uint64
		spilled int
	)
	spill := func() {
		sortBatch(batch)
		src := m.newRunSource(spilled, batch)
		if src == nil {
			return // error already recorded
		}
		m.sources = append(m.sources, src)
		spilled++
		batch = batch[:0]
	}
	for m.in.Scan() {
		rec := m.in.Record()
		if m.scheme == nil {
			m.scheme = rec.Scheme()
		} else if rec.Scheme() != m.scheme {
			m.err.Set(fmt.Errorf("sorter: record scheme %s does not match %s",
				rec.Scheme().AnnotationSpec(), m.scheme.AnnotationSpec()))
			return
		}
		key, err := m.order.KeyOf(rec)
		if err != nil {
			m.err.Set(err)
			return
		}
		batch = append(batch, entry{seq: seq, key: key, rec: rec})
		seq++
		if len(batch) >= m.opts.BatchCapacity {
			spill()
			if m.err.Err() != nil {
				return
			}
		}
	}
	if err := m.in.Err(); err != nil {
		m.err.Set(err)
		return
	}
	if len(batch) > 0 {
		// The final partial batch is merged directly from memory.
		sortBatch(batch)
		m.sources = append(m.sources, &memorySource{entries: batch})
	}
	vlog.VI(1).Infof("sorter: %d records, %d runs (%d spilled)", seq, len(m.sources), spilled)
	for i, src := range m.sources {
		if src.scan() {
			m.leafs.Insert(&leaf{seq: i, src: src})
		} else if err := src.err(); err != nil {
			m.err.Set(err)
			return
		} else {
			src.close()
		}
	}
}

func sortBatch(batch []entry) {
	sort.Slice(batch, func(i, j int) bool { return batch[i].less(batch[j]) })
}

// Scan implements record.Iterator.
func (m *mergeIterator) Scan() bool {
	if m.closed || m.err.Err() != nil {
		return false
	}
	if !m.started {
		m.started = true
		m.start()
		if m.err.Err() != nil {
			return false
		}
	}
	if m.leafs.Len() == 0 {
		return false
	}
	var top *leaf
	m.leafs.Do(func(item llrb.Comparable) (done bool) {
		top = item.(*leaf)
		return true
	})
	m.cur = top.src.head().rec
	// The leaf's key is about to change; remove it before advancing.
	m.leafs.DeleteMin()
	if top.src.scan() {
		m.leafs.Insert(top)
	} else if err := top.src.err(); err != nil {
		m.err.Set(err)
		return false
	} else {
		// Run fully consumed; delete its storage immediately.
		top.src.close()
	}
	return true
}

// Record implements record.Iterator.
func (m *mergeIterator) Record() *record.Record { return m.cur }

// Err implements record.Iterator.
func (m *mergeIterator) Err() error { return m.err.Err() }

// Close implements record.Iterator.  All remaining runs are deleted even
// when the merge was abandoned early.
func (m *mergeIterator) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	for _, src := range m.sources {
		src.close()
	}
	m.sources = nil
	m.leafs = llrb.Tree{}
	m.cur = nil
	return m.err.Err()
}

// newRunSource spills a sorted batch to a new temporary run file and
// returns a source reading it back.  On failure it records an *IOError
// and returns nil.
func (m *mergeIterator) newRunSource(runIndex int, batch []entry) source {
	if len(batch) == 0 {
		return nil
	}
	tmp, err := ioutil.TempFile(m.opts.TmpDir, fmt.Sprintf("mafsort-run%04d-*.gz", runIndex))
	if err != nil {
		m.err.Set(&IOError{Op: "create spill run", Err: err})
		return nil
	}
	path := tmp.Name()
	vlog.VI(1).Infof("sorter: spilling %d records to %s", len(batch), path)
	if err := writeRun(tmp, batch); err != nil {
		tmp.Close()
		os.Remove(path)
		m.err.Set(&IOError{Op: "write spill run", Err: err})
		return nil
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		m.err.Set(&IOError{Op: "close spill run", Err: err})
		return nil
	}
	return newRunSource(path, m.scheme, m.opts.Types, m.order)
}
