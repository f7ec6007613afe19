package svfinder

import (
	"fmt"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/encoding/bamprovider"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/svfinder/svscan"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

type recordingObserver struct {
	NopObserver
	rejected     []svgraph.EdgeInfo
	scans        []interval.GenomeInterval
	repeats      []bool
	truncated    []int
	created      int
	merged       int
	consolidated [][2]int
	evaluated    []svgraph.EdgeInfo
}

func (o *recordingObserver) EdgeRejected(edge svgraph.EdgeInfo, fwd, rev uint32) {
	o.rejected = append(o.rejected, edge)
}

func (o *recordingObserver) NodeScanned(edge svgraph.EdgeInfo, search interval.GenomeInterval, isExpectRepeat bool) {
	o.scans = append(o.scans, search)
	o.repeats = append(o.repeats, isExpectRepeat)
}

func (o *recordingObserver) GroupTruncated(sample int) { o.truncated = append(o.truncated, sample) }

func (o *recordingObserver) CandidateCreated(int, *sv.Candidate) { o.created++ }

func (o *recordingObserver) CandidateMerged(int, *sv.Candidate, *sv.Observation) { o.merged++ }

func (o *recordingObserver) CandidateConsolidated(from, into int) {
	o.consolidated = append(o.consolidated, [2]int{from, into})
}

func (o *recordingObserver) EdgeEvaluated(edge svgraph.EdgeInfo, svs []sv.Candidate) {
	o.evaluated = append(o.evaluated, edge)
}

type testEnv struct {
	t          *testing.T
	header     *sam.Header
	chr1, chr2 *sam.Reference
}

func newTestEnv(t *testing.T) *testEnv {
	chr1, err := sam.NewReference("chr1", "", "", 1000000, nil, nil)
	assert.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 1000000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	assert.NoError(t, err)
	header.SortOrder = sam.Coordinate
	return &testEnv{t: t, header: header, chr1: chr1, chr2: chr2}
}

func (e *testEnv) read(name string, ref *sam.Reference, pos int, cigar string, mateRef *sam.Reference, matePos int, mapq byte, flags sam.Flags) *sam.Record {
	co, err := sam.ParseCigar([]byte(cigar))
	assert.NoError(e.t, err)
	_, n := co.Lengths()
	seq := make([]byte, n)
	qual := make([]byte, n)
	for i := range seq {
		seq[i] = 'C'
		qual[i] = 35
	}
	if mateRef == nil {
		matePos = -1
	}
	r, err := sam.NewRecord(name, ref, mateRef, pos, matePos, 0, mapq, co, seq, qual, nil)
	assert.NoError(e.t, err)
	r.Flags = flags
	return r
}

// interchromPair creates a read pair with read1 forward on chr1 at pos1 and
// read2 reverse on chr2 at pos2.
func (e *testEnv) interchromPair(name string, pos1, pos2 int) (*sam.Record, *sam.Record) {
	r1 := e.read(name, e.chr1, pos1, "100M", e.chr2, pos2, 60, sam.Paired|sam.MateReverse|sam.Read1)
	r2 := e.read(name, e.chr2, pos2, "100M", e.chr1, pos1, 60, sam.Paired|sam.Reverse|sam.Read2)
	return r1, r2
}

func newTestNode(refID int32, begin, end interval.PosType) svgraph.Node {
	return svgraph.Node{
		Interval:      interval.NewGenomeInterval(refID, begin, end),
		EvidenceRange: interval.NewRange(begin, end),
	}
}

// newTestGraph creates a graph with two loci:
//
//   locus 0: n0(chr1:1000-1100) <-> n1(chr2:5000-5100), counts 3/3, plus a
//            self-edge on n0 with count 3.
//   locus 1: n0(chr1:50000-50100) <-> n1(chr1:80000-80100), counts 1/2,
//            one below and one at the threshold of 2.
func newTestGraph() *svgraph.Set {
	g := svgraph.NewSet([]string{"chr1", "chr2"}, 2)
	l0 := svgraph.Locus{Nodes: []svgraph.Node{newTestNode(0, 1000, 1100), newTestNode(1, 5000, 5100)}}
	l0.AddEdge(0, 1, 3)
	l0.AddEdge(1, 0, 3)
	l0.AddEdge(0, 0, 3)
	g.AddLocus(l0)
	l1 := svgraph.Locus{Nodes: []svgraph.Node{newTestNode(0, 50000, 50100), newTestNode(0, 80000, 80100)}}
	l1.AddEdge(0, 1, 1)
	l1.AddEdge(1, 0, 2)
	g.AddLocus(l1)
	return g
}

// testReads returns, sorted by coordinate:
//
//   - three chr1:1000-chr2:5000 pairs supporting edge 0:0-1,
//   - a proper pair on chr1,
//   - an anomalous pair whose mate is far from any node,
//   - a pair whose read2 fails the mapq filter,
//   - an unpaired read with a soft clip near chr1:1000.
func (e *testEnv) testReads() []*sam.Record {
	var chr1, chr2 []*sam.Record
	for i := 0; i < 3; i++ {
		r1, r2 := e.interchromPair(fmt.Sprintf("sv%d", i), 1000+10*i, 5000+10*i)
		chr1 = append(chr1, r1)
		chr2 = append(chr2, r2)
	}
	lonely1, lonely2 := e.interchromPair("lonely", 1030, 5030)
	lonely2.MapQ = 0
	chr1 = append(chr1,
		lonely1,
		e.read("clip", e.chr1, 1040, "30S70M", nil, 0, 60, 0),
		e.read("proper", e.chr1, 1050, "100M", e.chr1, 1250, 60, sam.Paired|sam.MateReverse|sam.Read1),
		e.read("far", e.chr1, 1060, "100M", e.chr2, 90000, 60, sam.Paired|sam.MateReverse|sam.Read1),
		e.read("proper", e.chr1, 1250, "100M", e.chr1, 1050, 60, sam.Paired|sam.Reverse|sam.Read2),
	)
	chr1[len(chr1)-3].TempLen = 300
	chr1[len(chr1)-1].TempLen = -300
	chr2 = append(chr2, lonely2)
	return append(chr1, chr2...)
}

func (e *testEnv) newFinder(graph *svgraph.Set, recs []*sam.Record, opts Opts) (*Finder, bamprovider.Provider) {
	p := bamprovider.NewFakeProvider(e.header, recs)
	f, err := NewFinder(graph, svscan.NewReadScanner(svscan.DefaultOpts, nil), []bamprovider.Provider{p}, opts)
	assert.NoError(e.t, err)
	return f, p
}

func closeFinder(t *testing.T, f *Finder, p bamprovider.Provider) {
	assert.NoError(t, f.Close())
	assert.NoError(t, p.Close())
}

func TestFindCandidateSV(t *testing.T) {
	e := newTestEnv(t)
	graph := newTestGraph()
	opts := DefaultOpts
	opts.CheckResult = true
	obs := &recordingObserver{}
	opts.Observer = obs
	f, p := e.newFinder(graph, e.testReads(), opts)
	defer closeFinder(t, f, p)

	svs, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	// The pair candidate and the soft-clip candidate.
	assert.EQ(t, len(svs), 2)
	c := svs[0]
	expect.EQ(t, c.CandidateIndex, 0)
	expect.EQ(t, c.BP1.Interval, interval.NewGenomeInterval(0, 1000, 1620))
	expect.EQ(t, c.BP1.State, sv.RightOpen)
	expect.EQ(t, c.BP2.Interval, interval.NewGenomeInterval(1, 4500, 5120))
	expect.EQ(t, c.BP2.State, sv.LeftOpen)
	expect.EQ(t, c.BP1.LocalPairCount, uint32(3))
	expect.EQ(t, c.BP2.LocalPairCount, uint32(3))
	expect.EQ(t, c.BP1.PairCount, uint32(3))
	expect.EQ(t, c.BP2.PairCount, uint32(3))

	clip := svs[1]
	expect.EQ(t, clip.CandidateIndex, 1)
	expect.EQ(t, clip.BP1.State, sv.Complex)
	expect.EQ(t, clip.BP1.Interval, interval.NewGenomeInterval(0, 940, 1141))
	expect.False(t, clip.BP2.Interval.Valid())

	g := f.Data().Group(0)
	expect.False(t, g.Incomplete())
	expect.False(t, g.Skipped())
	// sv0-2, lonely and clip.
	assert.EQ(t, g.Len(), 5)
	for i := 0; i < 3; i++ {
		expect.True(t, g.Pair(i).IsComplete())
		expect.EQ(t, g.Pair(i).Links, []Link{{Index: 0, Type: sv.Pair}})
	}
	expect.False(t, g.Pair(3).IsComplete())
	expect.EQ(t, len(g.Pair(3).Links), 0)

	expect.EQ(t, obs.scans, []interval.GenomeInterval{
		interval.NewGenomeInterval(0, 1000, 1100),
		interval.NewGenomeInterval(1, 5000, 5100),
	})
	expect.EQ(t, obs.repeats, []bool{false, false})
	expect.EQ(t, obs.created, 2)
	expect.EQ(t, obs.merged, 2)
	expect.EQ(t, len(obs.consolidated), 0)
	expect.EQ(t, obs.evaluated, []svgraph.EdgeInfo{{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1}})
}

func TestFindCandidateSVIncludeUnpaired(t *testing.T) {
	e := newTestEnv(t)
	opts := DefaultOpts
	opts.CheckResult = true
	opts.ExcludeUnpaired = false
	f, p := e.newFinder(newTestGraph(), e.testReads(), opts)
	defer closeFinder(t, f, p)

	svs, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	assert.EQ(t, len(svs), 2)
	// The lonely read counts as a read, but not as a pair.
	expect.EQ(t, svs[0].BP1.LocalPairCount, uint32(4))
	expect.EQ(t, svs[0].BP2.LocalPairCount, uint32(3))
	expect.EQ(t, svs[0].BP1.PairCount, uint32(3))
	expect.EQ(t, svs[0].BP2.PairCount, uint32(3))
	expect.EQ(t, f.Data().Group(0).Pair(3).Links, []Link{{Index: 0, Type: sv.Pair}})
}

func TestFindCandidateSVStraddlingRead(t *testing.T) {
	e := newTestEnv(t)
	// read1 covers chr1:950-1050 and so starts before n0(chr1:1000-1100).
	r1, r2 := e.interchromPair("straddle", 950, 5000)
	recs := []*sam.Record{r1, r2}
	opts := DefaultOpts
	opts.CheckResult = true
	f, p := e.newFinder(newTestGraph(), recs, opts)
	defer closeFinder(t, f, p)

	svs, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	g := f.Data().Group(0)
	assert.EQ(t, g.Len(), 1)
	expect.True(t, g.Pair(0).IsComplete())
	assert.EQ(t, len(svs), 1)
	expect.EQ(t, svs[0].BP1.PairCount, uint32(1))
	expect.EQ(t, svs[0].BP2.PairCount, uint32(1))
	expect.EQ(t, g.Pair(0).Links, []Link{{Index: 0, Type: sv.Pair}})
}

func TestFindCandidateSVRejectedEdge(t *testing.T) {
	e := newTestEnv(t)
	opts := DefaultOpts
	obs := &recordingObserver{}
	opts.Observer = obs
	// Any scan would fail.
	p := bamprovider.NewFakeErrorProvider(e.header, errors.New("scanned"))
	f, err := NewFinder(newTestGraph(), svscan.NewReadScanner(svscan.DefaultOpts, nil), []bamprovider.Provider{p}, opts)
	assert.NoError(t, err)

	edge := svgraph.EdgeInfo{LocusIndex: 1, NodeIndex1: 0, NodeIndex2: 1}
	svs, err := f.FindCandidateSV(edge)
	assert.NoError(t, err)
	expect.EQ(t, len(svs), 0)
	expect.EQ(t, obs.rejected, []svgraph.EdgeInfo{edge})
	fwd, rev := f.graph.EdgeCounts(edge)
	expect.EQ(t, fwd, f.graph.MinMergeEdgeCount-1)
	expect.EQ(t, rev, f.graph.MinMergeEdgeCount)
	expect.EQ(t, len(obs.scans), 0)

	// Edges that don't name nodes of the graph are rejected before any scan.
	for _, bad := range []svgraph.EdgeInfo{{LocusIndex: 7}, {LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 9}} {
		_, err = f.FindCandidateSV(bad)
		expect.True(t, errors.Is(errors.Invalid, err))
		expect.HasSubstr(t, err.Error(), bad.String())
	}
	expect.EQ(t, len(obs.scans), 0)

	_, err = f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	expect.HasSubstr(t, err.Error(), "scanned")
	expect.HasSubstr(t, f.Close().Error(), "scanned")
	expect.HasSubstr(t, p.Close().Error(), "scanned")
}

func TestFindCandidateSVSelfEdge(t *testing.T) {
	e := newTestEnv(t)
	opts := DefaultOpts
	opts.CheckResult = true
	obs := &recordingObserver{}
	opts.Observer = obs
	f, p := e.newFinder(newTestGraph(), e.testReads(), opts)
	defer closeFinder(t, f, p)

	svs, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 0})
	assert.NoError(t, err)
	// Only the soft-clipped read has a locus within n0 alone.
	assert.EQ(t, len(svs), 1)
	expect.EQ(t, svs[0].BP1.State, sv.Complex)
	expect.True(t, f.Data().Group(0).Skipped())
	expect.EQ(t, len(obs.scans), 1)

	// State is reset between edges.
	_, err = f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	expect.False(t, f.Data().Group(0).Skipped())
	// A self-edge's two nodes are on the same reference.
	expect.EQ(t, obs.repeats, []bool{true, false, false})
}

func TestFindCandidateSVCapacity(t *testing.T) {
	e := newTestEnv(t)
	var recs []*sam.Record
	for i := 0; i < 8; i++ {
		r1, _ := e.interchromPair(fmt.Sprintf("p%d", i), 1000+i, 5000+i)
		recs = append(recs, r1)
	}
	opts := DefaultOpts
	opts.MaxPairsPerSample = 5
	obs := &recordingObserver{}
	opts.Observer = obs
	f, p := e.newFinder(newTestGraph(), recs, opts)
	defer closeFinder(t, f, p)

	_, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	g := f.Data().Group(0)
	expect.EQ(t, g.Len(), 5)
	expect.True(t, g.Incomplete())
	expect.EQ(t, obs.truncated, []int{0})
}

func TestFindCandidateSVDefaultCapacity(t *testing.T) {
	e := newTestEnv(t)
	n := MaxPairsPerSample + 1
	recs := make([]*sam.Record, n)
	for i := range recs {
		// Sorted positions spread over n0(chr1:1000-1100).
		recs[i], _ = e.interchromPair(fmt.Sprintf("p%d", i), 1000+i*100/n, 5000)
	}
	opts := DefaultOpts
	obs := &recordingObserver{}
	opts.Observer = obs
	f, p := e.newFinder(newTestGraph(), recs, opts)
	defer closeFinder(t, f, p)

	_, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	assert.NoError(t, err)
	g := f.Data().Group(0)
	expect.EQ(t, g.Len(), 4000)
	expect.True(t, g.Incomplete())
	expect.EQ(t, g.Pair(g.Len()-1).Read1.Name, "p3999")
	expect.EQ(t, obs.truncated, []int{0})
}

func TestFindCandidateSVCollision(t *testing.T) {
	e := newTestEnv(t)
	r1, _ := e.interchromPair("dup", 1000, 5000)
	dup := *r1
	dup.Pos = 1010
	recs := []*sam.Record{r1, &dup}

	opts := DefaultOpts
	f, p := e.newFinder(newTestGraph(), recs, opts)
	_, err := f.FindCandidateSV(svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1})
	expect.True(t, errors.Is(errors.Integrity, err))
	closeFinder(t, f, p)

	// Nodes on one chromosome expect repeats by default.
	graph := svgraph.NewSet([]string{"chr1", "chr2"}, 2)
	l := svgraph.Locus{Nodes: []svgraph.Node{newTestNode(0, 1000, 1100), newTestNode(0, 9000, 9100)}}
	l.AddEdge(0, 1, 3)
	l.AddEdge(1, 0, 3)
	graph.AddLocus(l)
	r1 = e.read("dup", e.chr1, 1000, "100M", e.chr1, 9000, 60, sam.Paired|sam.MateReverse|sam.Read1)
	r1.TempLen = 8100
	dup = *r1
	dup.Pos = 1010
	recs = []*sam.Record{r1, &dup}
	edge := svgraph.EdgeInfo{LocusIndex: 0, NodeIndex1: 0, NodeIndex2: 1}

	f, p = e.newFinder(graph, recs, opts)
	_, err = f.FindCandidateSV(edge)
	assert.NoError(t, err)
	expect.EQ(t, f.Data().Group(0).Len(), 1)
	closeFinder(t, f, p)

	opts.SameChromAsRepeat = false
	f, p = e.newFinder(graph, recs, opts)
	_, err = f.FindCandidateSV(edge)
	expect.True(t, errors.Is(errors.Integrity, err))
	closeFinder(t, f, p)
}

func TestLocusMatches(t *testing.T) {
	local := newTestNode(0, 1000, 1100)
	remote := newTestNode(1, 5000, 5100)
	in := func(refID int32, begin, end interval.PosType, out bool) svscan.LocusNode {
		return svscan.LocusNode{Interval: interval.NewGenomeInterval(refID, begin, end), OutCount: out}
	}
	for _, test := range []struct {
		locus svscan.ReadLocus
		match bool
	}{
		{svscan.ReadLocus{Nodes: []svscan.LocusNode{in(0, 1050, 1060, true)}}, true},
		{svscan.ReadLocus{Nodes: []svscan.LocusNode{in(0, 2000, 2060, true)}}, false},
		{svscan.ReadLocus{Nodes: []svscan.LocusNode{in(0, 1050, 1060, true), in(1, 5050, 5060, false)}}, true},
		{svscan.ReadLocus{Nodes: []svscan.LocusNode{in(1, 5050, 5060, false), in(0, 1050, 1060, true)}}, true},
		{svscan.ReadLocus{Nodes: []svscan.LocusNode{in(0, 1050, 1060, true), in(1, 7050, 7060, false)}}, false},
	} {
		match, err := locusMatches(test.locus, &local, &remote)
		assert.NoError(t, err)
		expect.EQ(t, match, test.match)
	}
	_, err := locusMatches(svscan.ReadLocus{Nodes: []svscan.LocusNode{in(0, 1050, 1060, false), in(1, 5050, 5060, false)}}, &local, &remote)
	expect.True(t, errors.Is(errors.Invalid, err))
	_, err = locusMatches(svscan.ReadLocus{}, &local, &remote)
	expect.True(t, errors.Is(errors.Invalid, err))
}
