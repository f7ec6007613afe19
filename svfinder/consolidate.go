// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"github.com/grailbio/svfinder/sv"
	"github.com/willf/bitset"
)

// consolidateOverlap merges candidates that intersect each other, compacts
// the survivors into a dense list and rewrites the links of every read pair
// in data to the new indices.
//
// Each pass walks the live candidates in handle order as "outer" and merges
// outer into the first live candidate with a smaller handle that it
// intersects. A merge can widen a candidate enough to reach one it was already
// checked against, so passes repeat until one merges nothing.
func consolidateOverlap(data *CandidateSetData, a *candidateArena, observer Observer) []sv.Candidate {
	n := a.len()
	deleted := bitset.New(uint(n))
	// movedTo[h] is the handle h was merged into, or -1.
	movedTo := make([]int, n)
	for h := range movedTo {
		movedTo[h] = -1
	}
	for {
		merged := false
		for outer := 0; outer < n; outer++ {
			if deleted.Test(uint(outer)) {
				continue
			}
			oc := a.get(outer)
			for inner := 0; inner < outer; inner++ {
				if deleted.Test(uint(inner)) {
					continue
				}
				ic := a.get(inner)
				if !ic.Intersects(oc) {
					continue
				}
				ic.Merge(oc)
				deleted.Set(uint(outer))
				movedTo[outer] = inner
				merged = true
				observer.CandidateConsolidated(outer, inner)
				break
			}
		}
		if !merged {
			break
		}
	}

	// finalIndex maps each handle to the dense index of the survivor that
	// holds its evidence.
	finalIndex := make([]int, n)
	svs := make([]sv.Candidate, 0, n-int(deleted.Count()))
	for h := 0; h < n; h++ {
		if deleted.Test(uint(h)) {
			continue
		}
		finalIndex[h] = len(svs)
		c := *a.get(h)
		c.CandidateIndex = len(svs)
		svs = append(svs, c)
	}
	for h := 0; h < n; h++ {
		if !deleted.Test(uint(h)) {
			continue
		}
		// Survivors always have smaller handles than what they absorbed, so
		// the chain ends at a survivor.
		target := movedTo[h]
		for deleted.Test(uint(target)) {
			target = movedTo[target]
		}
		finalIndex[h] = finalIndex[target]
	}

	for sample := 0; sample < data.NumGroups(); sample++ {
		group := data.Group(sample)
		for i := 0; i < group.Len(); i++ {
			links := group.Pair(i).Links
			for j := range links {
				links[j].Index = finalIndex[links[j].Index]
			}
		}
	}
	return svs
}
