// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"fmt"

	"github.com/biogo/hts/sam"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
)

// Link ties a read pair to a candidate it supports.
type Link struct {
	// Index is a candidate handle during assignment and a final candidate
	// index after consolidation.
	Index int
	Type  sv.EvidenceType
}

// ReadPair holds the collected reads of one fragment. Either read may be nil.
type ReadPair struct {
	Read1, Read2 *sam.Record
	// Links lists the spanning observations of the pair.
	Links []Link
}

// IsComplete is true iff both reads were collected.
func (p *ReadPair) IsComplete() bool {
	return p.Read1 != nil && p.Read2 != nil
}

// Local returns read1 as the local read if it was collected, else read2.
// remote is the other read, possibly nil.
func (p *ReadPair) Local() (local, remote *sam.Record) {
	if p.Read1 != nil {
		return p.Read1, p.Read2
	}
	return p.Read2, p.Read1
}

func (p *ReadPair) name() string {
	if p.Read1 != nil {
		return p.Read1.Name
	}
	return p.Read2.Name
}

type groupState int

const (
	groupOpen groupState = iota
	// groupClosed rejects all further reads, including mates of pairs already
	// in the group.
	groupClosed
)

// SampleGroup collects the read pairs of one sample for one edge.
type SampleGroup struct {
	capacity int
	state    groupState
	skipped  bool
	pairs    []ReadPair
	// index maps farm.Hash64(QNAME) to indexes in pairs.
	index map[uint64][]int
}

func newSampleGroup(capacity int) SampleGroup {
	return SampleGroup{capacity: capacity, index: make(map[uint64][]int)}
}

func (g *SampleGroup) clear() {
	g.state = groupOpen
	g.skipped = false
	g.pairs = g.pairs[:0]
	for k := range g.index {
		delete(g.index, k)
	}
}

// Len is the number of read pairs in the group.
func (g *SampleGroup) Len() int { return len(g.pairs) }

// Pair returns the i'th read pair, in order of first appearance.
func (g *SampleGroup) Pair(i int) *ReadPair { return &g.pairs[i] }

// Incomplete is true if the group hit its capacity. The read and pair counts
// derived from an incomplete group are lower bounds.
func (g *SampleGroup) Incomplete() bool { return g.state == groupClosed }

// Skipped is true if the group was not meant to be counted, e.g., for a
// self-edge.
func (g *SampleGroup) Skipped() bool { return g.skipped }

// Open is true if the group accepts new reads.
func (g *SampleGroup) Open() bool { return g.state == groupOpen }

// reserve checks for room for one more read pair. It closes the group and
// returns false once the group is at capacity.
func (g *SampleGroup) reserve() bool {
	if g.state == groupClosed {
		return false
	}
	if len(g.pairs) >= g.capacity {
		g.state = groupClosed
		return false
	}
	return true
}

func (g *SampleGroup) find(name string, hash uint64) int {
	for _, i := range g.index[hash] {
		if g.pairs[i].name() == name {
			return i
		}
	}
	return -1
}

// add stores r in the slot chosen by its first-of-pair flag, pairing it with
// a mate already in the group. A read whose slot is already filled is ignored
// if isExpectRepeat, else it is a name collision.
//
// REQUIRES: g.reserve() returned true.
func (g *SampleGroup) add(r *sam.Record, isExpectRepeat bool) error {
	hash := farm.Hash64([]byte(r.Name))
	i := g.find(r.Name, hash)
	if i < 0 {
		i = len(g.pairs)
		g.pairs = append(g.pairs, ReadPair{})
		g.index[hash] = append(g.index[hash], i)
	}
	p := &g.pairs[i]
	slot := &p.Read2
	if r.Flags&sam.Read1 != 0 {
		slot = &p.Read1
	}
	if *slot != nil {
		if isExpectRepeat {
			return nil
		}
		return errors.E(errors.Integrity, fmt.Sprintf("read name collision: %s (flags %v) at %v:%d, previous %v:%d",
			r.Name, r.Flags, r.Ref.Name(), r.Pos, (*slot).Ref.Name(), (*slot).Pos))
	}
	*slot = r
	return nil
}

// CandidateSetData holds everything collected for one edge.
type CandidateSetData struct {
	groups []SampleGroup
	// searchIntervals lists the regions scanned for the current edge.
	searchIntervals []interval.GenomeInterval
}

// NewCandidateSetData creates an empty CandidateSetData with one group per
// sample.
func NewCandidateSetData(nSamples, capacity int) *CandidateSetData {
	d := &CandidateSetData{groups: make([]SampleGroup, nSamples)}
	for i := range d.groups {
		d.groups[i] = newSampleGroup(capacity)
	}
	return d
}

// Clear resets d for a new edge.
func (d *CandidateSetData) Clear() {
	for i := range d.groups {
		d.groups[i].clear()
	}
	d.searchIntervals = d.searchIntervals[:0]
}

// NumGroups is the number of samples.
func (d *CandidateSetData) NumGroups() int { return len(d.groups) }

// Group returns the group of the given sample.
func (d *CandidateSetData) Group(sample int) *SampleGroup { return &d.groups[sample] }

// SetSkipped marks every group skipped.
func (d *CandidateSetData) SetSkipped() {
	for i := range d.groups {
		d.groups[i].skipped = true
	}
}

// setNewSearchInterval records a scan of gi. It returns true if gi intersects
// a region already scanned for this edge, in which case the scan may see the
// same reads again.
func (d *CandidateSetData) setNewSearchInterval(gi interval.GenomeInterval) bool {
	repeat := false
	for _, prev := range d.searchIntervals {
		if prev.Intersects(gi) {
			repeat = true
			break
		}
	}
	d.searchIntervals = append(d.searchIntervals, gi)
	return repeat
}
