package overlap_test

import (
	"fmt"
	"testing"

	"github.com/grailbio/maf/column"
	"github.com/grailbio/maf/overlap"
	"github.com/grailbio/maf/record"
	"github.com/grailbio/maf/scheme"
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
			{"Strand", "Strand"},
		},
	}))
	s, err := r.Resolve("test-1.0")
	require.NoError(t, err)
	return s
}

func stream(t *testing.T, s *scheme.Scheme, spans ...[3]interface{}) record.Iterator {
	recs := make([]*record.Record, len(spans))
	for i, sp := range spans {
		tokens := []string{sp[0].(string), fmt.Sprint(sp[1]), fmt.Sprint(sp[2]), "+"}
		rec, err := record.Decode(s, testTypes, tokens, record.Strict, 0)
		require.NoError(t, err)
		recs[i] = rec
	}
	return record.NewSliceIterator(recs)
}

// spans flattens a group back to stream-indexed interval strings.
func spans(t *testing.T, g overlap.Group) map[int][]string {
	out := make(map[int][]string)
	for i, recs := range g {
		for _, r := range recs {
			span, err := r.Locatable()
			require.NoError(t, err)
			out[i] = append(out[i], span.String())
		}
	}
	return out
}

func TestOverlapPair(t *testing.T) {
	s := testScheme(t)
	it := overlap.Iterate(
		stream(t, s, [3]interface{}{"chr1", 10, 20}),
		stream(t, s, [3]interface{}{"chr1", 15, 25}, [3]interface{}{"chr1", 30, 40}),
	)
	defer it.Close()

	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{
		0: {"chr1:10-20"},
		1: {"chr1:15-25"},
	}, spans(t, it.Group()))

	// The second record of stream 1 overlaps nothing: stream 0 is absent
	// from its group entirely.
	require.True(t, it.Scan())
	g := it.Group()
	_, present := g[0]
	assert.False(t, present)
	assert.Equal(t, map[int][]string{1: {"chr1:30-40"}}, spans(t, g))

	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
}

func TestOverlapWindowGrows(t *testing.T) {
	s := testScheme(t)
	// Stream 1's [5,25] bridges stream 0's [1,10] and [15,15]: consuming it
	// widens the window so all three cluster together, as does [30,40] via
	// the touching endpoint with [25,30].
	it := overlap.Iterate(
		stream(t, s,
			[3]interface{}{"chr1", 1, 10},
			[3]interface{}{"chr1", 15, 15},
			[3]interface{}{"chr1", 30, 40}),
		stream(t, s,
			[3]interface{}{"chr1", 5, 25},
			[3]interface{}{"chr1", 25, 30}),
	)
	defer it.Close()

	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{
		0: {"chr1:1-10", "chr1:15-15", "chr1:30-40"},
		1: {"chr1:5-25", "chr1:25-30"},
	}, spans(t, it.Group()))
	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
}

func TestOverlapCrossChromosome(t *testing.T) {
	s := testScheme(t)
	// Identical positions on different chromosomes never group.
	it := overlap.Iterate(
		stream(t, s, [3]interface{}{"chr1", 10, 20}),
		stream(t, s, [3]interface{}{"chr2", 10, 20}),
	)
	defer it.Close()

	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{0: {"chr1:10-20"}}, spans(t, it.Group()))
	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{1: {"chr2:10-20"}}, spans(t, it.Group()))
	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
}

func TestOverlapChromosomeOrder(t *testing.T) {
	s := testScheme(t)
	// chr2 sorts before chr10 canonically; the group order must follow.
	it := overlap.Iterate(
		stream(t, s, [3]interface{}{"chr10", 1, 1}),
		stream(t, s, [3]interface{}{"chr2", 1, 1}),
	)
	defer it.Close()

	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{1: {"chr2:1-1"}}, spans(t, it.Group()))
	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{0: {"chr10:1-1"}}, spans(t, it.Group()))
	assert.False(t, it.Scan())
}

func TestOverlapOrderViolation(t *testing.T) {
	s := testScheme(t)
	it := overlap.Iterate(
		stream(t, s, [3]interface{}{"chr1", 100, 100}, [3]interface{}{"chr1", 10, 10}),
	)
	defer it.Close()

	// The violation surfaces once the out-of-order record is reached.
	for it.Scan() {
	}
	require.Error(t, it.Err())
	oe, ok := it.Err().(*overlap.OrderError)
	require.True(t, ok)
	assert.Equal(t, 0, oe.Stream)
}

func TestOverlapContigs(t *testing.T) {
	s := testScheme(t)
	mk := func() []record.Iterator {
		return []record.Iterator{
			stream(t, s, [3]interface{}{"b", 1, 1}),
			stream(t, s, [3]interface{}{"a", 1, 1}),
		}
	}
	// Explicit contig list ranks "b" before "a".
	it := overlap.New(mk(), overlap.Options{Contigs: []string{"b", "a"}})
	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{0: {"b:1-1"}}, spans(t, it.Group()))
	require.True(t, it.Scan())
	assert.Equal(t, map[int][]string{1: {"a:1-1"}}, spans(t, it.Group()))
	assert.False(t, it.Scan())
	require.NoError(t, it.Close())

	// A chromosome outside the list is an error.
	it = overlap.New(mk(), overlap.Options{Contigs: []string{"b"}})
	assert.False(t, it.Scan())
	require.Error(t, it.Err())
	require.NoError(t, it.Close())
}

func TestOverlapEmpty(t *testing.T) {
	s := testScheme(t)
	it := overlap.Iterate(stream(t, s), stream(t, s))
	assert.False(t, it.Scan())
	assert.NoError(t, it.Err())
	require.NoError(t, it.Close())
	assert.False(t, it.Scan(), "scan after close")
}

func TestGroupString(t *testing.T) {
	s := testScheme(t)
	it := overlap.Iterate(
		stream(t, s, [3]interface{}{"chr1", 10, 20}),
		stream(t, s, [3]interface{}{"chr1", 15, 25}),
	)
	defer it.Close()
	require.True(t, it.Scan())
	assert.Equal(t, "{0:[chr1:10-20] 1:[chr1:15-25]}", it.Group().String())
}
