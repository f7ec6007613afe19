// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svscan

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
)

// padded returns [begin-pad, end+pad) on refID, with the start clamped at 0.
func padded(refID int32, begin, end, pad int) interval.GenomeInterval {
	r := interval.Range{Begin: interval.PosType(begin - pad), End: interval.PosType(end + pad)}
	r.ClampBegin(0)
	return interval.GenomeInterval{RefID: refID, Range: r}
}

// pairBreakend computes the breakend implied by one read of an anomalous pair
// aligned at [pos,end). The breakpoint lies downstream of the read in its
// direction, no further than a proper fragment length.
func pairBreakend(refID int32, pos, end int, reverse bool, maxProper int) sv.Breakend {
	bp := sv.NewBreakend()
	var r interval.Range
	if reverse {
		bp.State = sv.LeftOpen
		r = interval.Range{Begin: interval.PosType(end - maxProper), End: interval.PosType(end)}
	} else {
		bp.State = sv.RightOpen
		r = interval.Range{Begin: interval.PosType(pos), End: interval.PosType(pos + maxProper)}
	}
	r.ClampBegin(0)
	bp.Interval = interval.GenomeInterval{RefID: refID, Range: r}
	return bp
}

func refID(ref *sam.Reference, chromIndex map[string]int32) (int32, bool) {
	if ref == nil {
		return interval.InvalidRefID, false
	}
	id, ok := chromIndex[ref.Name()]
	return id, ok
}

// localBreakend computes the breakend of the read r in an anomalous pair.
func (s *ReadScanner) localBreakend(r *sam.Record, sample int, chromIndex map[string]int32) (sv.Breakend, bool) {
	id, ok := refID(r.Ref, chromIndex)
	if !ok {
		return sv.Breakend{}, false
	}
	return pairBreakend(id, r.Pos, r.End(), r.Flags&sam.Reverse != 0, s.sampleStats(sample).MaxProper), true
}

// mateBreakend computes the breakend of r's mate from the mate fields of r.
// The mate is assumed to be as long as r.
func (s *ReadScanner) mateBreakend(r *sam.Record, sample int, chromIndex map[string]int32) (sv.Breakend, bool) {
	id, ok := refID(r.MateRef, chromIndex)
	if !ok {
		return sv.Breakend{}, false
	}
	mateEnd := r.MatePos + r.Seq.Length
	if mateEnd <= r.MatePos {
		mateEnd = r.MatePos + 1
	}
	return pairBreakend(id, r.MatePos, mateEnd, r.Flags&sam.MateReverse != 0, s.sampleStats(sample).MaxProper), true
}

// splitBreakends computes the two breakends implied by r and one of its
// supplementary alignments.
func (s *ReadScanner) splitBreakends(r *sam.Record, sa supplementary, chromIndex map[string]int32) (bp1, bp2 sv.Breakend, ok bool) {
	id1, ok1 := refID(r.Ref, chromIndex)
	id2, ok2 := chromIndex[sa.refName]
	if !ok1 || !ok2 {
		return bp1, bp2, false
	}
	bp1, bp2 = sv.NewBreakend(), sv.NewBreakend()
	// The primary alignment breaks on its clipped side.
	head, tail := clipLengths(r.Cigar)
	if tail >= head {
		bp1.State = sv.RightOpen
		bp1.Interval = padded(id1, r.End()-1, r.End(), s.opts.SplitReadPad)
	} else {
		bp1.State = sv.LeftOpen
		bp1.Interval = padded(id1, r.Pos, r.Pos+1, s.opts.SplitReadPad)
	}
	saHead, saTail := clipLengths(sa.cigar)
	if saHead >= saTail {
		bp2.State = sv.LeftOpen
		bp2.Interval = padded(id2, sa.pos, sa.pos+1, s.opts.SplitReadPad)
	} else {
		bp2.State = sv.RightOpen
		bp2.Interval = padded(id2, sa.end()-1, sa.end(), s.opts.SplitReadPad)
	}
	return bp1, bp2, true
}

// localAssemblyBreakend computes the breakend of a read carrying local
// assembly evidence.
func (s *ReadScanner) localAssemblyBreakend(r *sam.Record, chromIndex map[string]int32) (sv.Breakend, bool) {
	id, ok := refID(r.Ref, chromIndex)
	if !ok {
		return sv.Breakend{}, false
	}
	event, ok := s.localEventRange(r)
	if !ok {
		return sv.Breakend{}, false
	}
	bp := sv.NewBreakend()
	bp.State = sv.Complex
	bp.Interval = padded(id, int(event.Begin), int(event.End), s.opts.LocalPad)
	return bp, true
}

// SVLoci implements Classifier. Each locus has its read's own alignment as
// the out-count node. Filtered reads and reads on unknown references yield
// nothing.
func (s *ReadScanner) SVLoci(r *sam.Record, sample int, chromIndex map[string]int32) []ReadLocus {
	if s.IsReadFiltered(r) {
		return nil
	}
	var loci []ReadLocus
	if s.isLargeAnomalous(r, sample) {
		local, ok1 := s.localBreakend(r, sample, chromIndex)
		remote, ok2 := s.mateBreakend(r, sample, chromIndex)
		if ok1 && ok2 {
			loci = append(loci, ReadLocus{Nodes: []LocusNode{
				{Interval: local.Interval, OutCount: true},
				{Interval: remote.Interval},
			}})
		}
	}
	if bp, ok := s.localAssemblyBreakend(r, chromIndex); ok {
		loci = append(loci, ReadLocus{Nodes: []LocusNode{{Interval: bp.Interval, OutCount: true}}})
	}
	if sas, ok := parseSupplementary(r); ok {
		for _, sa := range sas {
			bp1, bp2, ok := s.splitBreakends(r, sa, chromIndex)
			if !ok {
				continue
			}
			loci = append(loci, ReadLocus{Nodes: []LocusNode{
				{Interval: bp1.Interval, OutCount: true},
				{Interval: bp2.Interval},
			}})
		}
	}
	return loci
}

// BreakendPair implements Classifier.
//
// An anomalous large-fragment pair yields one Pair observation with bp1 on
// local. Each pair-type read contributes one to the LocalPairCount of its own
// breakend, and a pair with both reads present contributes one to the
// PairCount of each breakend. Supplementary alignments of either read yield
// SplitRead observations and local events yield non-spanning LocalAssembly
// observations.
func (s *ReadScanner) BreakendPair(local, remote *sam.Record, sample int, chromIndex map[string]int32) []sv.Observation {
	if local == nil {
		return nil
	}
	var obs []sv.Observation
	if !s.IsReadFiltered(local) && s.isLargeAnomalous(local, sample) {
		bp1, ok1 := s.localBreakend(local, sample, chromIndex)
		var (
			bp2 sv.Breakend
			ok2 bool
		)
		if remote != nil {
			bp2, ok2 = s.localBreakend(remote, sample, chromIndex)
		} else {
			bp2, ok2 = s.mateBreakend(local, sample, chromIndex)
		}
		if ok1 && ok2 {
			o := sv.Observation{Candidate: sv.NewCandidate(), Type: sv.Pair}
			o.BP1, o.BP2 = bp1, bp2
			o.BP1.LocalPairCount = 1
			o.BP1.Evidence[sv.Pair] = 1
			o.BP2.Evidence[sv.Pair] = 1
			if remote != nil {
				o.BP2.LocalPairCount = 1
				o.BP1.PairCount = 1
				o.BP2.PairCount = 1
			}
			obs = append(obs, o)
		}
	}
	for _, r := range []*sam.Record{local, remote} {
		if r == nil || s.IsReadFiltered(r) {
			continue
		}
		if sas, ok := parseSupplementary(r); ok {
			for _, sa := range sas {
				bp1, bp2, ok := s.splitBreakends(r, sa, chromIndex)
				if !ok {
					continue
				}
				o := sv.Observation{Candidate: sv.NewCandidate(), Type: sv.SplitRead}
				o.BP1, o.BP2 = bp1, bp2
				o.BP1.Evidence[sv.SplitRead] = 1
				o.BP2.Evidence[sv.SplitRead] = 1
				obs = append(obs, o)
			}
		}
		if bp, ok := s.localAssemblyBreakend(r, chromIndex); ok {
			o := sv.Observation{Candidate: sv.NewCandidate(), Type: sv.LocalAssembly}
			o.BP1 = bp
			o.BP1.Evidence[sv.LocalAssembly] = 1
			obs = append(obs, o)
		}
	}
	return obs
}
