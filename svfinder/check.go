// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/sv"
)

type evidenceCount struct {
	reads, pairs uint32
}

// checkResult recomputes the read and pair support of every candidate from
// the links of the collected read pairs and compares it with the counts on
// the candidates. Each set read of a pair-type link adds one read, and a link
// from a complete pair adds two pairs. With excludeUnpaired, the recorded read
// count may be smaller than the observed one. Pair counts must always match,
// on the candidate and on each of its breakends.
func checkResult(data *CandidateSetData, svs []sv.Candidate, excludeUnpaired bool) error {
	observed := make([]evidenceCount, len(svs))
	for sample := 0; sample < data.NumGroups(); sample++ {
		group := data.Group(sample)
		for i := 0; i < group.Len(); i++ {
			pair := group.Pair(i)
			for _, link := range pair.Links {
				if link.Index < 0 || link.Index >= len(svs) {
					return errors.E(errors.Integrity, fmt.Sprintf(
						"svfinder: sample %d read %s links to candidate %d, but there are %d candidates",
						sample, pair.name(), link.Index, len(svs)))
				}
				if !link.Type.IsPairType() {
					continue
				}
				c := &observed[link.Index]
				if pair.Read1 != nil {
					c.reads++
				}
				if pair.Read2 != nil {
					c.reads++
				}
				if pair.IsComplete() {
					c.pairs += 2
				}
			}
		}
	}
	for i := range svs {
		c := &svs[i]
		recorded := evidenceCount{reads: c.ReadCount(), pairs: c.PairCount()}
		readsOK := recorded.reads == observed[i].reads
		if excludeUnpaired {
			readsOK = recorded.reads <= observed[i].reads
		}
		if !readsOK || recorded.pairs != observed[i].pairs || c.BP1.PairCount != c.BP2.PairCount {
			return errors.E(errors.Integrity, fmt.Sprintf(
				"svfinder: candidate %d: recorded reads=%d pairs=%d (bp1 pairs=%d, bp2 pairs=%d), observed reads=%d pairs=%d: %v",
				i, recorded.reads, recorded.pairs, c.BP1.PairCount, c.BP2.PairCount,
				observed[i].reads, observed[i].pairs, c))
		}
	}
	return nil
}
