package sorter_test

import (
	"fmt"
	"io/ioutil"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
	"github.com/grailbio/maf/sorter"
	"github.com/grailbio/maf/sortorder"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTypes = column.NewRegistry()

func testScheme(t *testing.T) *scheme.Scheme {
	r := scheme.NewRegistry(testTypes)
	require.NoError(t, r.Add(&scheme.Descriptor{
		Version:        "test-1.0",
		AnnotationSpec: "test-1.0",
		Columns: [][]string{
			{"Chromosome", "String"},
			{"Start_Position", "OneBasedInteger"},
			{"End_Position", "OneBasedInteger"},
			{"Hugo_Symbol", "NullableString"},
		},
	}))
	s, err := r.Resolve("test-1.0")
	require.NoError(t, err)
	return s
}

func makeRecord(t *testing.T, s *scheme.Scheme, chrom string, start, end int64, label string) *record.Record {
	tokens := []string{chrom, fmt.Sprint(start), fmt.Sprint(end), label}
	rec, err := record.Decode(s, testTypes, tokens, record.Strict, 0)
	require.NoError(t, err)
	return rec
}

func drain(t *testing.T, it record.Iterator) []*record.Record {
	var out []*record.Record
	for it.Scan() {
		out = append(out, it.Record())
	}
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
	return out
}

func checkSorted(t *testing.T, order *sortorder.Order, recs []*record.Record) {
	c := sortorder.NewChecker(order)
	for _, r := range recs {
		require.NoError(t, c.Check(r))
	}
}

func TestSortInMemory(t *testing.T) {
	s := testScheme(t)
	in := []*record.Record{
		makeRecord(t, s, "chr10", 5, 6, "c"),
		makeRecord(t, s, "chr2", 100, 300, "a"),
		makeRecord(t, s, "chr2", 100, 200, "b"),
		makeRecord(t, s, "chrX", 1, 1, "d"),
	}
	out := drain(t, sorter.Sort(record.NewSliceIterator(in), sortorder.Coordinate(), sorter.Options{Types: testTypes}))
	require.Len(t, out, 4)
	labels := make([]string, len(out))
	for i, r := range out {
		v, err := r.Get("Hugo_Symbol")
		require.NoError(t, err)
		labels[i] = v.Str()
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, labels)
	checkSorted(t, sortorder.Coordinate(), out)
}

func TestSortSpills(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	s := testScheme(t)
	const n = 1000
	rnd := rand.New(rand.NewSource(0))
	in := make([]*record.Record, n)
	for i := range in {
		chrom := fmt.Sprintf("chr%d", rnd.Intn(22)+1)
		start := int64(rnd.Intn(1000) + 1)
		in[i] = makeRecord(t, s, chrom, start, start+int64(rnd.Intn(50)), fmt.Sprintf("g%04d", i))
	}
	order := sortorder.Coordinate()
	// A small batch capacity forces many spill runs.
	out := drain(t, sorter.Sort(record.NewSliceIterator(in), order, sorter.Options{
		BatchCapacity: 64,
		TmpDir:        tempDir,
		Types:         testTypes,
	}))
	require.Len(t, out, n)
	checkSorted(t, order, out)

	// The output is a permutation of the input: every input label appears
	// exactly once.
	seen := make(map[string]bool, n)
	for _, r := range out {
		v, err := r.Get("Hugo_Symbol")
		require.NoError(t, err)
		require.False(t, seen[v.Str()], "duplicate record %s", v.Str())
		seen[v.Str()] = true
	}
	assert.Len(t, seen, n)

	// All spill runs were deleted as the merge consumed them.
	left, err := ioutil.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSortStable(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	s := testScheme(t)
	// Many records with the same coordinate key, distinguished only by
	// label: they must come out in input order, across spill boundaries.
	const n = 300
	in := make([]*record.Record, n)
	for i := range in {
		in[i] = makeRecord(t, s, "chr1", 10, 20, fmt.Sprintf("g%04d", i))
	}
	out := drain(t, sorter.Sort(record.NewSliceIterator(in), sortorder.Coordinate(), sorter.Options{
		BatchCapacity: 32,
		TmpDir:        tempDir,
		Types:         testTypes,
	}))
	require.Len(t, out, n)
	for i, r := range out {
		v, err := r.Get("Hugo_Symbol")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("g%04d", i), v.Str())
	}
}

func TestSortEmpty(t *testing.T) {
	it := sorter.Sort(record.NewSliceIterator(nil), sortorder.Coordinate(), sorter.Options{Types: testTypes})
	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
	assert.NoError(t, it.Close())
}

func TestSortEarlyClose(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	s := testScheme(t)
	in := make([]*record.Record, 200)
	for i := range in {
		in[i] = makeRecord(t, s, "chr1", int64(200-i), int64(200-i), fmt.Sprintf("g%04d", i))
	}
	it := sorter.Sort(record.NewSliceIterator(in), sortorder.Coordinate(), sorter.Options{
		BatchCapacity: 16,
		TmpDir:        tempDir,
		Types:         testTypes,
	})
	require.True(t, it.Scan())
	require.NoError(t, it.Close())
	assert.False(t, it.Scan(), "scan after close")
	require.NoError(t, it.Close())

	// Abandoning the merge must still delete every spill run.
	left, err := ioutil.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSortKeyError(t *testing.T) {
	s := testScheme(t)
	in := []*record.Record{makeRecord(t, s, "chr1", 1, 1, "a")}
	order := sortorder.New("bad", sortorder.Key{Column: "Tumor_Sample_Barcode"})
	it := sorter.Sort(record.NewSliceIterator(in), order, sorter.Options{Types: testTypes})
	assert.False(t, it.Scan())
	require.Error(t, it.Err())
	assert.IsType(t, &sortorder.OrderError{}, it.Err())
	it.Close()
}

func TestSortLenientSpill(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	r := scheme.NewRegistry(testTypes)
	require.NoError(t, r.Add(&scheme.Descriptor{
		Version:        "lenient-1.0",
		AnnotationSpec: "lenient-1.0",
		Columns: [][]string{
			{"Chromosome", "String"},
			{"Start_Position", "OneBasedInteger"},
			{"End_Position", "OneBasedInteger"},
			{"Gene", "String"},
		},
	}))
	s, err := r.Resolve("lenient-1.0")
	require.NoError(t, err)
	mk := func(chrom, start, gene string) *record.Record {
		rec, err := record.Decode(s, testTypes, []string{chrom, start, start, gene}, record.Lenient, 0)
		require.NoError(t, err)
		return rec
	}
	// The first record's empty Gene is a lenient-mode null in a
	// non-nullable column.  It must survive the spill round trip rather
	// than fail the merge.
	bad := mk("chr2", "5", "")
	require.Len(t, bad.Warnings(), 1)
	out := drain(t, sorter.Sort(record.NewSliceIterator([]*record.Record{bad, mk("chr1", "10", "TP53")}),
		sortorder.Coordinate(), sorter.Options{
			BatchCapacity: 1,
			TmpDir:        tempDir,
			Types:         testTypes,
		}))
	require.Len(t, out, 2)
	v, err := out[0].Get("Gene")
	require.NoError(t, err)
	assert.Equal(t, "TP53", v.Str())
	v, err = out[1].Get("Gene")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestSortMixedSchemes(t *testing.T) {
	// Two registries resolving the same descriptor yield distinct scheme
	// identities; mixing them in one input is an error, not a silent
	// re-decode against the wrong scheme.
	s1, s2 := testScheme(t), testScheme(t)
	in := []*record.Record{
		makeRecord(t, s1, "chr1", 1, 1, "a"),
		makeRecord(t, s2, "chr1", 2, 2, "b"),
	}
	it := sorter.Sort(record.NewSliceIterator(in), sortorder.Coordinate(), sorter.Options{Types: testTypes})
	assert.False(t, it.Scan())
	require.Error(t, it.Err())
	assert.Contains(t, it.Err().Error(), "scheme")
	it.Close()
}

type failingIterator struct {
	record.SliceIterator
	failure error
}

func (it *failingIterator) Err() error { return it.failure }

func TestSortInputError(t *testing.T) {
	it := sorter.Sort(&failingIterator{failure: fmt.Errorf("stream broke")}, sortorder.Coordinate(),
		sorter.Options{Types: testTypes})
	assert.False(t, it.Scan())
	require.Error(t, it.Err())
	assert.True(t, strings.Contains(it.Err().Error(), "stream broke"))
	it.Close()
}
