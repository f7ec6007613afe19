// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/encoding/bamprovider"
	"github.com/grailbio/svfinder/sv"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/svfinder/svscan"
)

// Finder evaluates the edges of one graph against one set of alignment
// inputs, one edge at a time. A Finder is not thread safe. Run several Finders
// on separate providers to evaluate edges in parallel.
type Finder struct {
	opts       Opts
	observer   Observer
	graph      *svgraph.Set
	chromIndex map[string]int32
	classifier svscan.Classifier
	streams    []*bamprovider.Stream

	data  *CandidateSetData
	arena candidateArena
}

// NewFinder creates a Finder. providers[i] supplies the reads of sample i. The
// Finder does not own the providers; the caller must close them after calling
// Finder.Close.
func NewFinder(graph *svgraph.Set, classifier svscan.Classifier, providers []bamprovider.Provider, opts Opts) (*Finder, error) {
	f := &Finder{
		opts:       opts,
		observer:   opts.observer(),
		graph:      graph,
		chromIndex: graph.ChromIndex(),
		classifier: classifier,
		data:       NewCandidateSetData(len(providers), opts.capacity()),
	}
	for _, p := range providers {
		s, err := bamprovider.NewStream(p)
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
		f.streams = append(f.streams, s)
	}
	return f, nil
}

// Data returns the evidence collected for the last edge evaluated. It is
// overwritten by the next FindCandidateSV call.
func (f *Finder) Data() *CandidateSetData { return f.data }

// FindCandidateSV evaluates one edge and returns its candidates, with
// Candidate.CandidateIndex equal to the position in the list. An edge that
// does not name nodes of the graph is an Invalid error. An edge with a
// directed count below the graph's MinMergeEdgeCount yields no candidates and
// no reads are scanned.
//
// On return, the links of the read pairs in Data refer to indices in the
// result.
func (f *Finder) FindCandidateSV(edge svgraph.EdgeInfo) ([]sv.Candidate, error) {
	f.data.Clear()
	if err := f.graph.CheckEdge(edge); err != nil {
		return nil, err
	}
	if !f.graph.IsEdgeAdmitted(edge) {
		fwd, rev := f.graph.EdgeCounts(edge)
		f.observer.EdgeRejected(edge, fwd, rev)
		return nil, nil
	}
	locus := f.graph.Locus(edge.LocusIndex)
	if err := f.addNodeData(edge, locus, edge.NodeIndex1, edge.NodeIndex2); err != nil {
		return nil, err
	}
	if edge.IsSelfEdge() {
		// Counts from a self-edge scan are not meaningful.
		f.data.SetSkipped()
	} else if err := f.addNodeData(edge, locus, edge.NodeIndex2, edge.NodeIndex1); err != nil {
		return nil, err
	}

	f.candidatesFromData()
	svs := consolidateOverlap(f.data, &f.arena, f.observer)
	if f.opts.CheckResult {
		if err := checkResult(f.data, svs, f.opts.ExcludeUnpaired); err != nil {
			return nil, err
		}
	}
	f.observer.EdgeEvaluated(edge, svs)
	return svs, nil
}

// Close releases the streams.
func (f *Finder) Close() error {
	e := errors.Once{}
	for _, s := range f.streams {
		e.Set(s.Close())
	}
	f.streams = nil
	return e.Err()
}
