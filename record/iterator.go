package record

// Iterator is the lazy-sequence contract shared by record producers: MAF
// readers, the external sorter's merged output, and in-memory slices.
type Iterator interface {
	// Scan advances to the next record, returning false at end of sequence
	// or on error.  The error, if any, is available through Err.
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record.  It must be called only after a
	// call to Scan returns true.
	Record() *Record

	// Err returns the error encountered during iteration, or nil.
	Err() error

	// Close releases resources held by the iterator.  It must be called
	// whether or not the sequence was fully consumed, and is idempotent.
	Close() error
}

// SliceIterator iterates over an in-memory slice of records.
type SliceIterator struct {
	recs []*Record
	cur  *Record
}

// NewSliceIterator returns an Iterator over recs.
func NewSliceIterator(recs []*Record) *SliceIterator {
	return &SliceIterator{recs: recs}
}

// Scan implements Iterator.
func (it *SliceIterator) Scan() bool {
	if len(it.recs) == 0 {
		it.cur = nil
		return false
	}
	it.cur = it.recs[0]
	it.recs = it.recs[1:]
	return true
}

// Record implements Iterator.
func (it *SliceIterator) Record() *Record { return it.cur }

// Err implements Iterator.
func (it *SliceIterator) Err() error { return nil }

// Close implements Iterator.
func (it *SliceIterator) Close() error {
	it.recs = nil
	it.cur = nil
	return nil
}
