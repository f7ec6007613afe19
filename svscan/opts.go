// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svscan

// Opts configures ReadScanner.
type Opts struct {
	// MinMapq is the minimum mapping quality of a read to be considered at all.
	MinMapq int
	// MinIndelSize is the minimum size of an insertion or deletion in a CIGAR
	// string to count as local assembly evidence.
	MinIndelSize int
	// MinSoftClip is the minimum length of a soft clip at either read end to
	// count as local assembly evidence.
	MinSoftClip int
	// LocalPad is added to both sides of a local event (indel or soft clip) to
	// form the breakend interval of a local assembly observation.
	LocalPad int
	// SplitReadPad is added to both sides of each breakpoint implied by a
	// supplementary alignment.
	SplitReadPad int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MinMapq:      15,
	MinIndelSize: 10,
	MinSoftClip:  20,
	LocalPad:     100,
	SplitReadPad: 20,
}

// FragmentStats summarizes the fragment size distribution of one sample.
type FragmentStats struct {
	// MinProper and MaxProper bound the template length of a proper pair.
	MinProper, MaxProper int
	// MinLarge is the smallest template length that counts as a large
	// fragment. Pairs mapped to different references are always large.
	MinLarge int
}

// DefaultFragmentStats are used for samples without their own statistics.
var DefaultFragmentStats = FragmentStats{
	MinProper: 50,
	MaxProper: 600,
	MinLarge:  1000,
}
