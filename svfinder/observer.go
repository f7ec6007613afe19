package svfinder

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
	"github.com/grailbio/svfinder/svgraph"
)

// Observer receives events from a Finder. Handles identify candidates by
// their creation order within one edge; they equal candidate indices until
// consolidation. Implementations need not be thread safe; a Finder calls its
// observer from one goroutine.
type Observer interface {
	// EdgeRejected is called for an edge whose directed counts are below the
	// graph's threshold.
	EdgeRejected(edge svgraph.EdgeInfo, fwd, rev uint32)
	// NodeScanned is called once per node scan, before any read is read.
	NodeScanned(edge svgraph.EdgeInfo, search interval.GenomeInterval, isExpectRepeat bool)
	// GroupTruncated is called when a sample group reaches its capacity.
	GroupTruncated(sample int)
	// CandidateCreated is called when an observation starts a new candidate.
	CandidateCreated(handle int, c *sv.Candidate)
	// CandidateMerged is called when an observation joins a candidate.
	CandidateMerged(handle int, c *sv.Candidate, o *sv.Observation)
	// CandidateConsolidated is called when candidate "from" is folded into
	// candidate "into" during consolidation.
	CandidateConsolidated(from, into int)
	// EdgeEvaluated is called with the final candidates of an edge.
	EdgeEvaluated(edge svgraph.EdgeInfo, svs []sv.Candidate)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) EdgeRejected(svgraph.EdgeInfo, uint32, uint32) {}
func (NopObserver) NodeScanned(svgraph.EdgeInfo, interval.GenomeInterval, bool) {}
func (NopObserver) GroupTruncated(int) {}
func (NopObserver) CandidateCreated(int, *sv.Candidate) {}
func (NopObserver) CandidateMerged(int, *sv.Candidate, *sv.Observation) {}
func (NopObserver) CandidateConsolidated(int, int) {}
func (NopObserver) EdgeEvaluated(svgraph.EdgeInfo, []sv.Candidate) {}

// LogObserver writes every event to log.Debug.
type LogObserver struct{}

func (LogObserver) EdgeRejected(edge svgraph.EdgeInfo, fwd, rev uint32) {
	log.Debug.Printf("svfinder: edge %v: rejected, counts %d/%d", edge, fwd, rev)
}

func (LogObserver) NodeScanned(edge svgraph.EdgeInfo, search interval.GenomeInterval, isExpectRepeat bool) {
	log.Debug.Printf("svfinder: edge %v: scanning %v, expectRepeat=%v", edge, search, isExpectRepeat)
}

func (LogObserver) GroupTruncated(sample int) {
	log.Debug.Printf("svfinder: sample %d: group full, marking incomplete", sample)
}

func (LogObserver) CandidateCreated(handle int, c *sv.Candidate) {
	log.Debug.Printf("svfinder: new candidate %d: %v", handle, c)
}

func (LogObserver) CandidateMerged(handle int, c *sv.Candidate, o *sv.Observation) {
	log.Debug.Printf("svfinder: candidate %d absorbed %v: %v", handle, o, c)
}

func (LogObserver) CandidateConsolidated(from, into int) {
	log.Debug.Printf("svfinder: consolidated candidate %d into %d", from, into)
}

func (LogObserver) EdgeEvaluated(edge svgraph.EdgeInfo, svs []sv.Candidate) {
	log.Debug.Printf("svfinder: edge %v: %d candidates", edge, len(svs))
	for i := range svs {
		log.Debug.Printf("svfinder: edge %v: %v", edge, svs[i])
	}
}
