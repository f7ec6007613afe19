// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svscan

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
)

// LocusNode is one region of a ReadLocus.
type LocusNode struct {
	Interval interval.GenomeInterval
	// OutCount is set on the node where the read itself is aligned. The other
	// node of a two-node locus is where the read's mate or supplementary
	// alignment is expected.
	OutCount bool
}

// ReadLocus is the small SV graph implied by a single read: one node for local
// evidence, two nodes for evidence linking two regions.
type ReadLocus struct {
	Nodes []LocusNode
}

// Classifier decides how an aligned read relates to SV discovery. The sample
// argument selects per-sample statistics. chromIndex maps reference names to
// the RefIDs used by the evidence graph; reads on references missing from the
// map yield no loci or observations.
type Classifier interface {
	// IsReadFiltered is true for reads that must never be used as evidence.
	IsReadFiltered(r *sam.Record) bool
	// IsProperPair is true if the read and its mate align as expected for a
	// normal fragment. The proper-pair flag bit is not consulted.
	IsProperPair(r *sam.Record, sample int) bool
	// IsLargeFragment is true if the read's template is larger than any normal
	// fragment.
	IsLargeFragment(r *sam.Record, sample int) bool
	// IsLocalAssemblyEvidence is true if the read's own alignment suggests a
	// nearby breakpoint.
	IsLocalAssemblyEvidence(r *sam.Record) bool
	// SVLoci lists the loci supported by the read.
	SVLoci(r *sam.Record, sample int, chromIndex map[string]int32) []ReadLocus
	// BreakendPair translates a read pair into SV observations. remote may be
	// nil if the mate was not found.
	BreakendPair(local, remote *sam.Record, sample int, chromIndex map[string]int32) []sv.Observation
}

// ReadScanner is the default Classifier.
type ReadScanner struct {
	opts  Opts
	stats []FragmentStats
}

// NewReadScanner creates a ReadScanner. stats[i] describes sample i; samples
// beyond len(stats) use DefaultFragmentStats.
func NewReadScanner(opts Opts, stats []FragmentStats) *ReadScanner {
	return &ReadScanner{opts: opts, stats: stats}
}

func (s *ReadScanner) sampleStats(sample int) FragmentStats {
	if sample < len(s.stats) {
		return s.stats[sample]
	}
	return DefaultFragmentStats
}

const filteredFlags = sam.Unmapped | sam.Secondary | sam.QCFail | sam.Duplicate | sam.Supplementary

// IsReadFiltered implements Classifier.
func (s *ReadScanner) IsReadFiltered(r *sam.Record) bool {
	if r.Flags&filteredFlags != 0 || r.Ref == nil {
		return true
	}
	return int(r.MapQ) < s.opts.MinMapq
}

func hasMappedMate(r *sam.Record) bool {
	return r.Flags&sam.Paired != 0 && r.Flags&sam.MateUnmapped == 0 && r.MateRef != nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsProperPair implements Classifier.
func (s *ReadScanner) IsProperPair(r *sam.Record, sample int) bool {
	if !hasMappedMate(r) || r.Ref.ID() != r.MateRef.ID() {
		return false
	}
	fwd := r.Flags&sam.Reverse == 0
	mateFwd := r.Flags&sam.MateReverse == 0
	if fwd == mateFwd {
		return false
	}
	// FR orientation: the forward read must come first.
	if fwd && r.Pos > r.MatePos {
		return false
	}
	if !fwd && r.MatePos > r.Pos {
		return false
	}
	stats := s.sampleStats(sample)
	tlen := abs(r.TempLen)
	return tlen >= stats.MinProper && tlen <= stats.MaxProper
}

// IsLargeFragment implements Classifier.
func (s *ReadScanner) IsLargeFragment(r *sam.Record, sample int) bool {
	if !hasMappedMate(r) {
		return false
	}
	if r.Ref.ID() != r.MateRef.ID() {
		return true
	}
	return abs(r.TempLen) >= s.sampleStats(sample).MinLarge
}

// IsLocalAssemblyEvidence implements Classifier.
func (s *ReadScanner) IsLocalAssemblyEvidence(r *sam.Record) bool {
	if _, ok := s.localEventRange(r); ok {
		return true
	}
	_, ok := parseSupplementary(r)
	return ok
}

// isLargeAnomalous is true for pair-type evidence.
func (s *ReadScanner) isLargeAnomalous(r *sam.Record, sample int) bool {
	return !s.IsProperPair(r, sample) && s.IsLargeFragment(r, sample)
}

// localEventRange returns the smallest reference range covering every
// qualifying indel and soft-clip junction of the read.
func (s *ReadScanner) localEventRange(r *sam.Record) (interval.Range, bool) {
	var (
		result interval.Range
		found  bool
	)
	add := func(begin, end int) {
		found = true
		result.Merge(interval.Range{Begin: interval.PosType(begin), End: interval.PosType(end)})
	}
	pos := r.Pos
	last := len(r.Cigar) - 1
	for i, co := range r.Cigar {
		switch co.Type() {
		case sam.CigarSoftClipped:
			if co.Len() >= s.opts.MinSoftClip && (i == 0 || i == last) {
				add(pos, pos+1)
			}
		case sam.CigarInsertion:
			if co.Len() >= s.opts.MinIndelSize {
				add(pos, pos+1)
			}
		case sam.CigarDeletion:
			if co.Len() >= s.opts.MinIndelSize {
				add(pos, pos+co.Len())
			}
		}
		pos += co.Len() * co.Type().Consumes().Reference
	}
	return result, found
}
