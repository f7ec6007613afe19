// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

// MaxPairsPerSample is the capacity of one SampleGroup. Once it is reached the
// group is closed and marked incomplete.
const MaxPairsPerSample = 4000

// Opts configures a Finder.
type Opts struct {
	// ExcludeUnpaired drops pair-type observations of read pairs where only
	// one read was collected.
	ExcludeUnpaired bool
	// SameChromAsRepeat makes the collector expect repeated reads whenever the
	// two nodes of an edge are on the same reference. A read seen twice is
	// then ignored instead of being reported as a name collision. This is
	// looser than necessary: two distant regions of one chromosome rarely
	// share reads, but reads with very large deletions can be scanned from
	// both.
	SameChromAsRepeat bool
	// CheckResult validates the read and pair counts of every candidate
	// against the collected read pairs after each edge.
	CheckResult bool
	// MaxPairsPerSample overrides the package constant when positive. Used in
	// tests.
	MaxPairsPerSample int
	// Observer receives progress events. nil means NopObserver.
	Observer Observer
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	ExcludeUnpaired:   true,
	SameChromAsRepeat: true,
}

func (o Opts) capacity() int {
	if o.MaxPairsPerSample > 0 {
		return o.MaxPairsPerSample
	}
	return MaxPairsPerSample
}

func (o Opts) observer() Observer {
	if o.Observer == nil {
		return NopObserver{}
	}
	return o.Observer
}
