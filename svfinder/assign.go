// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"github.com/grailbio/svfinder/sv"
)

// candidateArena holds the candidates of one edge during assignment. A
// candidate's handle is its creation ordinal and stays valid until
// consolidation, which is the only step that removes candidates.
type candidateArena struct {
	cands []sv.Candidate
}

func (a *candidateArena) reset() { a.cands = a.cands[:0] }

func (a *candidateArena) len() int { return len(a.cands) }

func (a *candidateArena) get(h int) *sv.Candidate { return &a.cands[h] }

// assign merges o into the first candidate, in creation order, that it
// intersects. If there is none, o becomes a new candidate. It returns the
// handle of the candidate that holds o.
func (a *candidateArena) assign(o *sv.Observation, observer Observer) int {
	for h := range a.cands {
		c := &a.cands[h]
		if c.Intersects(&o.Candidate) {
			c.Merge(&o.Candidate)
			observer.CandidateMerged(h, c, o)
			return h
		}
	}
	h := len(a.cands)
	c := o.Candidate
	c.CandidateIndex = h
	a.cands = append(a.cands, c)
	observer.CandidateCreated(h, &a.cands[h])
	return h
}

// assignPairObservations assigns the observations of one read pair to
// candidates and links the pair to the candidates of its spanning
// observations. Pair-type observations are dropped if isExcludePairType.
func assignPairObservations(isExcludePairType bool, obs []sv.Observation, pair *ReadPair, a *candidateArena, observer Observer) {
	for i := range obs {
		o := &obs[i]
		if isExcludePairType && o.Type.IsPairType() {
			continue
		}
		h := a.assign(o, observer)
		if o.IsSpanning() {
			pair.Links = append(pair.Links, Link{Index: h, Type: o.Type})
		}
	}
}

// candidatesFromData translates every collected read pair into observations
// and assigns them to candidates in sample order, then pair order. Links left
// from a previous call are dropped.
func (f *Finder) candidatesFromData() {
	f.arena.reset()
	for sample := 0; sample < f.data.NumGroups(); sample++ {
		group := f.data.Group(sample)
		for i := 0; i < group.Len(); i++ {
			pair := group.Pair(i)
			pair.Links = pair.Links[:0]
			local, remote := pair.Local()
			if local == nil {
				continue
			}
			obs := f.classifier.BreakendPair(local, remote, sample, f.chromIndex)
			// Pair-type evidence needs both reads, unfiltered.
			isExcludePairType := f.opts.ExcludeUnpaired && remote == nil
			assignPairObservations(isExcludePairType, obs, pair, &f.arena, f.observer)
		}
	}
}
