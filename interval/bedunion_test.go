package interval_test

import (
	"strings"
	"testing"

	"github.com/grailbio/maf/interval"
	"github.com/grailbio/maf/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBED = `# comment
track name=test
chr1	100	200
chr1	200	300
chr1	500	600
chr2	50	60
chr2	10	20
chr3	7	7
`

func TestContains(t *testing.T) {
	u, err := interval.New(strings.NewReader(testBED), interval.Opts{})
	require.NoError(t, err)

	// [100,300) merged from the two touching chr1 intervals; positions are
	// 1-based, so BED position 100 is position 101.
	assert.False(t, u.Contains("chr1", 100))
	assert.True(t, u.Contains("chr1", 101))
	assert.True(t, u.Contains("chr1", 300))
	assert.False(t, u.Contains("chr1", 301))
	assert.True(t, u.Contains("chr1", 501))
	assert.False(t, u.Contains("chr1", 450))

	// Out-of-order chr2 input still queries correctly.
	assert.True(t, u.Contains("chr2", 15))
	assert.True(t, u.Contains("chr2", 55))
	assert.False(t, u.Contains("chr2", 30))

	// chr3's empty interval was dropped.
	assert.False(t, u.Contains("chr3", 7))
	assert.False(t, u.Contains("chrX", 1))
}

func TestOverlapsSpan(t *testing.T) {
	u, err := interval.New(strings.NewReader(testBED), interval.Opts{})
	require.NoError(t, err)

	span := func(chrom string, start, end int64) record.Span {
		return record.Span{Chromosome: chrom, Start: start, End: end}
	}
	assert.True(t, u.OverlapsSpan(span("chr1", 150, 160)))
	assert.True(t, u.OverlapsSpan(span("chr1", 1, 101)), "span ends inside an interval")
	assert.True(t, u.OverlapsSpan(span("chr1", 250, 550)), "span bridges the gap")
	assert.True(t, u.OverlapsSpan(span("chr1", 300, 400)), "inclusive end inside")
	assert.False(t, u.OverlapsSpan(span("chr1", 301, 500)), "exactly the gap")
	assert.False(t, u.OverlapsSpan(span("chr1", 1, 100)))
	assert.False(t, u.OverlapsSpan(span("chr4", 100, 200)))
}

func TestOneBasedInput(t *testing.T) {
	u, err := interval.New(strings.NewReader("chr1\t101\t200\n"), interval.Opts{OneBasedInput: true})
	require.NoError(t, err)
	assert.True(t, u.Contains("chr1", 101))
	assert.False(t, u.Contains("chr1", 100))
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		"chr1\t100\n",
		"chr1\tx\t200\n",
		"chr1\t100\ty\n",
		"chr1\t200\t100\n",
	} {
		_, err := interval.New(strings.NewReader(doc), interval.Opts{})
		require.Errorf(t, err, "%q", doc)
	}
}

func TestChromosomes(t *testing.T) {
	u, err := interval.New(strings.NewReader(testBED), interval.Opts{})
	require.NoError(t, err)
	// chr3 contributed only an empty interval and has no entry at all.
	assert.ElementsMatch(t, []string{"chr1", "chr2"}, u.Chromosomes())
}
