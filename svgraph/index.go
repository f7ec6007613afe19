// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svgraph

import (
	"sort"

	storeinterval "github.com/biogo/store/interval"
	"github.com/grailbio/base/log"
	"github.com/grailbio/svfinder/interval"
)

// NodeRef names one node of a Set.
type NodeRef struct {
	LocusIndex int
	NodeIndex  NodeIndex
}

// nodeEntry is a node stored in the per-reference interval tree.
type nodeEntry struct {
	id  uintptr
	ref NodeRef
	r   interval.Range
}

func (e nodeEntry) Overlap(b storeinterval.IntRange) bool {
	return int(e.r.End) > b.Start && int(e.r.Begin) < b.End
}
func (e nodeEntry) ID() uintptr { return e.id }
func (e nodeEntry) Range() storeinterval.IntRange {
	return storeinterval.IntRange{Start: int(e.r.Begin), End: int(e.r.End)}
}

type rangeQuery interval.Range

func (q rangeQuery) Overlap(b storeinterval.IntRange) bool {
	return int(q.End) > b.Start && int(q.Begin) < b.End
}

// nodeIndex maps RefID to an interval tree of the nodes on that reference.
type nodeIndex struct {
	trees map[int32]*storeinterval.IntTree
}

func newNodeIndex(s *Set) *nodeIndex {
	idx := &nodeIndex{trees: map[int32]*storeinterval.IntTree{}}
	var id uintptr
	for li := range s.Loci {
		for ni, n := range s.Loci[li].Nodes {
			tree := idx.trees[n.Interval.RefID]
			if tree == nil {
				tree = &storeinterval.IntTree{}
				idx.trees[n.Interval.RefID] = tree
			}
			e := nodeEntry{id: id, ref: NodeRef{li, NodeIndex(ni)}, r: n.Interval.Range}
			if err := tree.Insert(e, true); err != nil {
				log.Panicf("locus %d node %d: %v", li, ni, err)
			}
			id++
		}
	}
	for _, tree := range idx.trees {
		tree.AdjustRanges()
	}
	return idx
}

// Overlapping returns the nodes whose interval intersects gi, sorted by
// (locus, node). The region index is built on first use.
func (s *Set) Overlapping(gi interval.GenomeInterval) []NodeRef {
	if s.index == nil {
		s.index = newNodeIndex(s)
	}
	tree := s.index.trees[gi.RefID]
	if tree == nil || gi.Range.Empty() {
		return nil
	}
	matches := tree.Get(rangeQuery(gi.Range))
	refs := make([]NodeRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m.(nodeEntry).ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].LocusIndex != refs[j].LocusIndex {
			return refs[i].LocusIndex < refs[j].LocusIndex
		}
		return refs[i].NodeIndex < refs[j].NodeIndex
	})
	return refs
}

// EdgesInRegion filters edges to those with at least one node intersecting
// any of the regions. The order of edges is preserved.
func (s *Set) EdgesInRegion(edges []EdgeInfo, regions ...interval.GenomeInterval) []EdgeInfo {
	hit := map[NodeRef]bool{}
	for _, gi := range regions {
		for _, ref := range s.Overlapping(gi) {
			hit[ref] = true
		}
	}
	var result []EdgeInfo
	for _, e := range edges {
		if hit[NodeRef{e.LocusIndex, e.NodeIndex1}] || hit[NodeRef{e.LocusIndex, e.NodeIndex2}] {
			result = append(result, e)
		}
	}
	return result
}
