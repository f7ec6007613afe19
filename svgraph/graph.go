// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svgraph

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/interval"
)

// NodeIndex identifies a node within its Locus.
type NodeIndex uint32

// Edge is the evidence weight of a directed edge.
type Edge struct {
	Count uint32
}

// Node is one genomic region of a Locus.
type Node struct {
	// Interval is the region the breakend is expected to be in.
	Interval interval.GenomeInterval
	// EvidenceRange is a looser range on the same reference covering all the
	// reads that contributed evidence to this node.
	EvidenceRange interval.Range
	// Edges maps the destination node to the edge weight.
	Edges map[NodeIndex]Edge
}

// EdgeCount returns the count of the edge to node "to", or 0 if there is no
// such edge.
func (n *Node) EdgeCount(to NodeIndex) uint32 {
	return n.Edges[to].Count
}

// SortedEdges returns the destinations of n's edges in ascending order.
func (n *Node) SortedEdges() []NodeIndex {
	dests := make([]NodeIndex, 0, len(n.Edges))
	for to := range n.Edges {
		dests = append(dests, to)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
	return dests
}

// Locus is a connected component of the evidence graph.
type Locus struct {
	Nodes []Node
}

// Node returns the i'th node.
//
// REQUIRES: i < len(l.Nodes)
func (l *Locus) Node(i NodeIndex) *Node {
	return &l.Nodes[i]
}

// EdgeCount returns the count of the edge from->to.
func (l *Locus) EdgeCount(from, to NodeIndex) uint32 {
	return l.Nodes[from].EdgeCount(to)
}

// AddEdge adds count to the from->to edge. It does not touch the reverse edge.
func (l *Locus) AddEdge(from, to NodeIndex, count uint32) {
	n := &l.Nodes[from]
	if n.Edges == nil {
		n.Edges = map[NodeIndex]Edge{}
	}
	e := n.Edges[to]
	e.Count += count
	n.Edges[to] = e
}

// checkState validates the node indices and edge symmetry of the locus.
func (l *Locus) checkState(locusIndex int) error {
	nNodes := NodeIndex(len(l.Nodes))
	for i := range l.Nodes {
		from := NodeIndex(i)
		n := &l.Nodes[i]
		if n.Interval.Range.Empty() || !n.Interval.Valid() {
			return errors.E(errors.Invalid, fmt.Sprintf("locus %d node %d: invalid interval %v", locusIndex, from, n.Interval))
		}
		for to := range n.Edges {
			if to >= nNodes {
				return errors.E(errors.Invalid, fmt.Sprintf("locus %d node %d: edge to nonexistent node %d (nodes=%d)",
					locusIndex, from, to, nNodes))
			}
			if _, ok := l.Nodes[to].Edges[from]; !ok {
				return errors.E(errors.Invalid, fmt.Sprintf("locus %d: edge %d->%d has no reverse edge", locusIndex, from, to))
			}
		}
	}
	return nil
}

// Set is the whole evidence graph.
type Set struct {
	// RefNames lists the reference sequence names. A GenomeInterval.RefID is an
	// index into this list.
	RefNames []string
	// MinMergeEdgeCount is the noise threshold: an edge is evaluated only when
	// both of its directed counts reach it.
	MinMergeEdgeCount uint32
	Loci              []Locus

	chromIndex map[string]int32
	index      *nodeIndex
}

// NewSet creates an empty Set.
func NewSet(refNames []string, minMergeEdgeCount uint32) *Set {
	s := &Set{RefNames: refNames, MinMergeEdgeCount: minMergeEdgeCount}
	s.init()
	return s
}

func (s *Set) init() {
	s.chromIndex = make(map[string]int32, len(s.RefNames))
	for i, name := range s.RefNames {
		s.chromIndex[name] = int32(i)
	}
	s.index = nil
}

// AddLocus appends a locus and returns its index. It invalidates any region
// index built by Overlapping.
func (s *Set) AddLocus(l Locus) int {
	s.Loci = append(s.Loci, l)
	s.index = nil
	return len(s.Loci) - 1
}

// Locus returns the i'th locus.
func (s *Set) Locus(i int) *Locus {
	return &s.Loci[i]
}

// ChromIndex returns the map from reference name to RefID. The caller must not
// modify the map.
func (s *Set) ChromIndex() map[string]int32 {
	return s.chromIndex
}

// CheckState validates every locus in the set.
func (s *Set) CheckState() error {
	for i := range s.Loci {
		if err := s.Loci[i].checkState(i); err != nil {
			return err
		}
		for j, n := range s.Loci[i].Nodes {
			if int(n.Interval.RefID) >= len(s.RefNames) {
				return errors.E(errors.Invalid, fmt.Sprintf("locus %d node %d: refid %d out of range (%d refs)",
					i, j, n.Interval.RefID, len(s.RefNames)))
			}
		}
	}
	return nil
}
