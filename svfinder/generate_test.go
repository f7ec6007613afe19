package svfinder

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/svfinder/encoding/bamprovider"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	e := newTestEnv(t)
	recs := e.testReads()
	graph := newTestGraph()
	factory := func() []bamprovider.Provider {
		return []bamprovider.Provider{bamprovider.NewFakeProvider(e.header, recs)}
	}
	opts := DefaultGenerateOpts
	opts.CheckResult = true
	opts.Parallelism = 2

	results, err := Generate(vcontext.Background(), graph, factory, opts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 0}, results[0].Edge)
	assert.Len(t, results[0].Candidates, 1)
	assert.True(t, results[0].Skipped)
	assert.Equal(t, svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1}, results[1].Edge)
	assert.Len(t, results[1].Candidates, 2)
	assert.Empty(t, results[1].Incomplete)
	assert.False(t, results[1].Skipped)

	opts.Regions = []interval.GenomeInterval{interval.NewGenomeInterval(1, 5000, 5100)}
	results, err = Generate(vcontext.Background(), graph, factory, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1}, results[0].Edge)

	// Only the first two reads fit, and their mates are never seen.
	opts.MaxPairsPerSample = 2
	opts.ExcludeUnpaired = false
	results, err = Generate(vcontext.Background(), graph, factory, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []int{0}, results[0].Incomplete)
}

func TestGenerateError(t *testing.T) {
	e := newTestEnv(t)
	factory := func() []bamprovider.Provider {
		return []bamprovider.Provider{bamprovider.NewFakeErrorProvider(e.header, os.ErrNotExist)}
	}
	_, err := Generate(vcontext.Background(), newTestGraph(), factory, DefaultGenerateOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge locus=0 nodes=0:")
}

func TestWriteTSV(t *testing.T) {
	e := newTestEnv(t)
	recs := e.testReads()
	factory := func() []bamprovider.Provider {
		return []bamprovider.Provider{bamprovider.NewFakeProvider(e.header, recs)}
	}
	graph := newTestGraph()
	results, err := Generate(vcontext.Background(), graph, factory, DefaultGenerateOpts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTSVTo(&buf, graph.RefNames, results))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, tsvHeader, lines[0])
	assert.Equal(t, "0\t0\t0\t0\tchr1\t941\t1141\tCOMPLEX\t0\t0\t.\t.\t.\tUNKNOWN\t0\t0\t0\t0\t1\t.\t1", lines[1])
	assert.Equal(t, "0\t0\t1\t0\tchr1\t1001\t1620\tRIGHT_OPEN\t3\t3\tchr2\t4501\t5120\tLEFT_OPEN\t3\t3\t3\t0\t0\t.\t0", lines[2])
	assert.Equal(t, "0\t0\t1\t1\tchr1\t941\t1141\tCOMPLEX\t0\t0\t.\t.\t.\tUNKNOWN\t0\t0\t0\t0\t1\t.\t0", lines[3])

	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	for _, name := range []string{"out.tsv", "out.tsv.gz", "out.tsv.bgz"} {
		path := filepath.Join(tempDir, name)
		require.NoError(t, WriteTSV(ctx, path, graph.RefNames, results))
		f, err := os.Open(path)
		require.NoError(t, err)
		var data []byte
		if strings.HasSuffix(name, "gz") {
			// A bgzf file is a valid multi-member gzip file.
			gz, err := gzip.NewReader(f)
			require.NoError(t, err)
			data, err = ioutil.ReadAll(gz)
			require.NoError(t, err)
		} else {
			data, err = ioutil.ReadAll(f)
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())
		assert.Equal(t, buf.String(), string(data))
	}
}
