// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package sv

// EvidenceType tags the kind of read evidence an observation came from.
type EvidenceType uint8

const (
	// UnknownEvidence is a sentinel.
	UnknownEvidence EvidenceType = iota
	// Pair is an anomalous read pair whose two reads anchor the two breakends.
	Pair
	// SplitRead is a read with a supplementary alignment. It anchors both
	// breakends, but it is a single-read observation.
	SplitRead
	// LocalAssembly is a soft-clip or a large indel that points at a breakend
	// somewhere near the read, to be resolved by assembly downstream.
	LocalAssembly

	// NumEvidenceTypes is the number of EvidenceType values, including
	// UnknownEvidence.
	NumEvidenceTypes = int(LocalAssembly) + 1
)

// IsPairType is true iff the evidence counts toward the read-pair support of a
// candidate.
func (t EvidenceType) IsPairType() bool { return t == Pair }

func (t EvidenceType) String() string {
	switch t {
	case Pair:
		return "PAIR"
	case SplitRead:
		return "SPLIT"
	case LocalAssembly:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// BreakendState describes which side of a breakend the novel adjacency is on.
type BreakendState uint8

const (
	// UnknownState means the breakend is not anchored.
	UnknownState BreakendState = iota
	// RightOpen means the reference is kept to the left of the breakpoint and
	// the novel sequence starts to its right (a forward-strand read ending at
	// the breakpoint).
	RightOpen
	// LeftOpen is the mirror of RightOpen.
	LeftOpen
	// Complex means an unresolved local event somewhere in the interval.
	Complex
)

// IsSimple is true for the two oriented states.
func (s BreakendState) IsSimple() bool {
	return s == RightOpen || s == LeftOpen
}

func (s BreakendState) String() string {
	switch s {
	case RightOpen:
		return "RIGHT_OPEN"
	case LeftOpen:
		return "LEFT_OPEN"
	case Complex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}
