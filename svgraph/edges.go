// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svgraph

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// EdgeInfo identifies one undirected edge of the graph.
type EdgeInfo struct {
	LocusIndex int
	NodeIndex1 NodeIndex
	NodeIndex2 NodeIndex
}

// IsSelfEdge is true iff both ends of the edge are the same node.
func (e EdgeInfo) IsSelfEdge() bool { return e.NodeIndex1 == e.NodeIndex2 }

func (e EdgeInfo) String() string {
	return fmt.Sprintf("locus=%d nodes=%d:%d", e.LocusIndex, e.NodeIndex1, e.NodeIndex2)
}

// CheckEdge returns an Invalid error if e does not name a locus of s and two
// of its nodes.
func (s *Set) CheckEdge(e EdgeInfo) error {
	if e.LocusIndex < 0 || e.LocusIndex >= len(s.Loci) {
		return errors.E(errors.Invalid, fmt.Sprintf("svgraph: edge %v: locus out of range [0,%d)", e, len(s.Loci)))
	}
	n := NodeIndex(len(s.Loci[e.LocusIndex].Nodes))
	if e.NodeIndex1 >= n || e.NodeIndex2 >= n {
		return errors.E(errors.Invalid, fmt.Sprintf("svgraph: edge %v: node out of range [0,%d)", e, n))
	}
	return nil
}

// EdgeCounts returns the counts of the node1->node2 and node2->node1 edges.
func (s *Set) EdgeCounts(e EdgeInfo) (fwd, rev uint32) {
	l := &s.Loci[e.LocusIndex]
	return l.EdgeCount(e.NodeIndex1, e.NodeIndex2), l.EdgeCount(e.NodeIndex2, e.NodeIndex1)
}

// IsEdgeAdmitted is true iff both directed counts of the edge reach
// s.MinMergeEdgeCount.
func (s *Set) IsEdgeAdmitted(e EdgeInfo) bool {
	fwd, rev := s.EdgeCounts(e)
	return fwd >= s.MinMergeEdgeCount && rev >= s.MinMergeEdgeCount
}

// Edges lists every edge in the set once, with NodeIndex1 <= NodeIndex2, in
// (locus, node1, node2) order. If admittedOnly, edges failing IsEdgeAdmitted
// are skipped.
func (s *Set) Edges(admittedOnly bool) []EdgeInfo {
	var edges []EdgeInfo
	for li := range s.Loci {
		l := &s.Loci[li]
		for ni := range l.Nodes {
			from := NodeIndex(ni)
			for _, to := range l.Nodes[ni].SortedEdges() {
				if to < from {
					continue
				}
				e := EdgeInfo{LocusIndex: li, NodeIndex1: from, NodeIndex2: to}
				if admittedOnly && !s.IsEdgeAdmitted(e) {
					continue
				}
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// BinEdges splits edges into at most binCount contiguous bins of roughly equal
// total weight, where an edge's weight is the sum of its directed counts. Every
// edge appears in exactly one bin and the bin order follows the input order.
// Empty bins are dropped.
func (s *Set) BinEdges(edges []EdgeInfo, binCount int) [][]EdgeInfo {
	if binCount < 1 {
		binCount = 1
	}
	weights := make([]uint64, len(edges))
	var total uint64
	for i, e := range edges {
		fwd, rev := s.EdgeCounts(e)
		weights[i] = uint64(fwd) + uint64(rev)
		total += weights[i]
	}
	var bins [][]EdgeInfo
	var cum uint64
	start := 0
	for i := range edges {
		cum += weights[i]
		// Close the bin once it crosses its share of the total weight.
		limit := total * uint64(len(bins)+1) / uint64(binCount)
		if cum >= limit && len(bins) < binCount-1 {
			bins = append(bins, edges[start:i+1])
			start = i + 1
		}
	}
	if start < len(edges) {
		bins = append(bins, edges[start:])
	}
	return bins
}
