// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
	"math"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Range is a half-open range [Begin, End).
type Range struct {
	Begin, End PosType
}

// NewRange creates a new Range.
//
// REQUIRES: begin <= end
func NewRange(begin, end PosType) Range {
	if end < begin {
		panic(fmt.Sprintf("inverted range [%d,%d)", begin, end))
	}
	return Range{begin, end}
}

// Size returns End-Begin.
func (r Range) Size() PosType { return r.End - r.Begin }

// Empty is true iff the range covers no position.
func (r Range) Empty() bool { return r.End <= r.Begin }

// Intersects returns true iff r and other share at least one position.
func (r Range) Intersects(other Range) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.Begin < other.End && other.Begin < r.End
}

// Contains returns true iff pos is in [Begin, End).
func (r Range) Contains(pos PosType) bool {
	return r.Begin <= pos && pos < r.End
}

// Merge extends r so that it covers other as well. Merging with an empty range
// is a no-op, and merging into an empty range copies other.
func (r *Range) Merge(other Range) {
	if other.Empty() {
		return
	}
	if r.Empty() {
		*r = other
		return
	}
	if other.Begin < r.Begin {
		r.Begin = other.Begin
	}
	if other.End > r.End {
		r.End = other.End
	}
}

// ClampBegin raises Begin to at least min, keeping the range non-inverted.
func (r *Range) ClampBegin(min PosType) {
	if r.Begin < min {
		r.Begin = min
	}
	if r.End < r.Begin {
		r.End = r.Begin
	}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Begin, r.End)
}

// InvalidRefID marks a GenomeInterval that isn't anchored anywhere, e.g., the
// remote breakend of a local assembly observation.
const InvalidRefID = int32(-1)

// GenomeInterval is a Range on one reference sequence.
type GenomeInterval struct {
	RefID int32
	Range Range
}

// NewGenomeInterval creates a GenomeInterval on refID covering [begin,end).
func NewGenomeInterval(refID int32, begin, end PosType) GenomeInterval {
	return GenomeInterval{RefID: refID, Range: NewRange(begin, end)}
}

// Valid is true iff the interval is anchored on a reference.
func (gi GenomeInterval) Valid() bool { return gi.RefID >= 0 }

// Intersects returns true iff both intervals are on the same reference and
// their ranges overlap.
func (gi GenomeInterval) Intersects(other GenomeInterval) bool {
	if gi.RefID != other.RefID || !gi.Valid() {
		return false
	}
	return gi.Range.Intersects(other.Range)
}

// Merge extends gi to cover other.
//
// REQUIRES: both intervals are on the same reference, or gi is not yet anchored.
func (gi *GenomeInterval) Merge(other GenomeInterval) {
	if !gi.Valid() {
		*gi = other
		return
	}
	if !other.Valid() {
		return
	}
	if gi.RefID != other.RefID {
		panic(fmt.Sprintf("merge across references: %v, %v", *gi, other))
	}
	gi.Range.Merge(other.Range)
}

func (gi GenomeInterval) String() string {
	return fmt.Sprintf("%d:%v", gi.RefID, gi.Range)
}
