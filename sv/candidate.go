// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package sv

import (
	"fmt"
	"strings"

	"github.com/grailbio/svfinder/interval"
)

// Breakend is one side of a candidate SV.
type Breakend struct {
	// Interval is the region the breakpoint is expected to lie in.
	Interval interval.GenomeInterval
	State    BreakendState
	// LocalPairCount is the number of pair-type reads anchored on this side.
	LocalPairCount uint32
	// PairCount is the number of complete read pairs spanning the candidate.
	// A spanning pair is counted once on each breakend.
	PairCount uint32
	// Evidence is the number of observations merged into this breakend, per
	// EvidenceType.
	Evidence [NumEvidenceTypes]uint32
}

// NewBreakend creates an unanchored breakend.
func NewBreakend() Breakend {
	return Breakend{Interval: interval.GenomeInterval{RefID: interval.InvalidRefID}}
}

// Intersects is true iff both breakends have the same state and either both
// are unanchored or their intervals overlap.
func (b *Breakend) Intersects(other *Breakend) bool {
	if b.State != other.State {
		return false
	}
	if !b.Interval.Valid() && !other.Interval.Valid() {
		return true
	}
	return b.Interval.Intersects(other.Interval)
}

// Merge adds other's interval and counts into b.
func (b *Breakend) Merge(other *Breakend) {
	b.Interval.Merge(other.Interval)
	b.LocalPairCount += other.LocalPairCount
	b.PairCount += other.PairCount
	for i := range b.Evidence {
		b.Evidence[i] += other.Evidence[i]
	}
}

// EvidenceTotal is the sum of b.Evidence.
func (b *Breakend) EvidenceTotal() uint32 {
	var n uint32
	for _, c := range b.Evidence {
		n += c
	}
	return n
}

func (b Breakend) String() string {
	buf := strings.Builder{}
	fmt.Fprintf(&buf, "%v %v localPairs=%d pairs=%d", b.Interval, b.State, b.LocalPairCount, b.PairCount)
	for t, c := range b.Evidence {
		if c > 0 {
			fmt.Fprintf(&buf, " %v=%d", EvidenceType(t), c)
		}
	}
	return buf.String()
}

// Candidate is a tentative SV: a pair of breakends plus its position in the
// result list.
type Candidate struct {
	BP1, BP2 Breakend
	// CandidateIndex is the candidate's position in the list that owns it.
	CandidateIndex int
}

// NewCandidate creates a candidate with two unanchored breakends.
func NewCandidate() Candidate {
	return Candidate{BP1: NewBreakend(), BP2: NewBreakend()}
}

// intersectsSameOrder is true iff bp1 matches other.bp1 and bp2 matches other.bp2.
func (c *Candidate) intersectsSameOrder(other *Candidate) bool {
	return c.BP1.Intersects(&other.BP1) && c.BP2.Intersects(&other.BP2)
}

// intersectsSwapped is true iff bp1 matches other.bp2 and bp2 matches other.bp1.
func (c *Candidate) intersectsSwapped(other *Candidate) bool {
	return c.BP1.Intersects(&other.BP2) && c.BP2.Intersects(&other.BP1)
}

// Intersects is true iff the breakends of c and other overlap pairwise, in
// either order.
func (c *Candidate) Intersects(other *Candidate) bool {
	return c.intersectsSameOrder(other) || c.intersectsSwapped(other)
}

// Merge folds other into c. The breakends are matched the same way
// Intersects matches them, preferring the same-order match.
//
// REQUIRES: c.Intersects(other)
func (c *Candidate) Merge(other *Candidate) {
	switch {
	case c.intersectsSameOrder(other):
		c.BP1.Merge(&other.BP1)
		c.BP2.Merge(&other.BP2)
	case c.intersectsSwapped(other):
		c.BP1.Merge(&other.BP2)
		c.BP2.Merge(&other.BP1)
	default:
		panic(fmt.Sprintf("merging disjoint candidates: %v, %v", c, other))
	}
}

// ReadCount is the number of pair-type reads supporting c, summed over both
// breakends.
func (c *Candidate) ReadCount() uint32 {
	return c.BP1.LocalPairCount + c.BP2.LocalPairCount
}

// PairCount is the pair support of c, summed over both breakends.
func (c *Candidate) PairCount() uint32 {
	return c.BP1.PairCount + c.BP2.PairCount
}

func (c Candidate) String() string {
	return fmt.Sprintf("index=%d bp1={%v} bp2={%v}", c.CandidateIndex, c.BP1, c.BP2)
}

// Observation is an SV hypothesis derived from a single read or read pair.
type Observation struct {
	Candidate
	Type EvidenceType
}

// IsSpanning is true iff both breakends of the observation are anchored with
// a simple orientation.
func (o *Observation) IsSpanning() bool {
	return o.BP1.State.IsSimple() && o.BP2.State.IsSimple()
}

func (o Observation) String() string {
	return fmt.Sprintf("%v %v", o.Type, o.Candidate)
}
