package sortorder

import (
	"fmt"

	"github.com/grailbio/maf/record"
)

// ViolationError reports a record observed out of order relative to its
// predecessor in the same stream.
type ViolationError struct {
	Order string
	Prev  string // previous record's key
	Cur   string // offending record's key
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("sortorder: records out of %s order: %q followed %q", e.Order, e.Cur, e.Prev)
}

// Checker verifies that a stream of records is monotonic under an order.
// The zero value is not usable; construct with NewChecker.
type Checker struct {
	order *Order
	last  RecordKey
	seen  bool
}

// NewChecker returns a checker for the given order.
func NewChecker(order *Order) *Checker {
	return &Checker{order: order}
}

// Check extracts the record's key and verifies it does not precede the
// previously checked record.  Key-extraction failures (*OrderError) are
// returned as-is.
func (c *Checker) Check(r *record.Record) error {
	key, err := c.order.KeyOf(r)
	if err != nil {
		return err
	}
	if c.seen && key.Compare(c.last) < 0 {
		return &ViolationError{Order: c.order.Name(), Prev: c.last.String(), Cur: key.String()}
	}
	c.last = key
	c.seen = true
	return nil
}
