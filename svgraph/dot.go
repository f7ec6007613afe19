// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svgraph

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

// LocusDOT renders locus i as a Graphviz digraph. Node labels show the
// breakend interval (with the reference name) and edges are labeled with their
// counts; edges below s.MinMergeEdgeCount are dashed.
func (s *Set) LocusDOT(i int) (string, error) {
	l := &s.Loci[i]
	graphName := fmt.Sprintf("locus%d", i)
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	nodeName := func(ni NodeIndex) string { return fmt.Sprintf("n%d", ni) }
	for ni := range l.Nodes {
		n := &l.Nodes[ni]
		refName := fmt.Sprint(n.Interval.RefID)
		if int(n.Interval.RefID) < len(s.RefNames) {
			refName = s.RefNames[n.Interval.RefID]
		}
		label := fmt.Sprintf("%q", fmt.Sprintf("%d %s:%d-%d", ni, refName, n.Interval.Range.Begin, n.Interval.Range.End))
		if err := g.AddNode(graphName, nodeName(NodeIndex(ni)), map[string]string{"label": label}); err != nil {
			return "", err
		}
	}
	for ni := range l.Nodes {
		from := NodeIndex(ni)
		for _, to := range l.Nodes[ni].SortedEdges() {
			count := l.EdgeCount(from, to)
			attrs := map[string]string{"label": fmt.Sprintf("%q", fmt.Sprint(count))}
			if count < s.MinMergeEdgeCount {
				attrs["style"] = "dashed"
			}
			if err := g.AddEdge(nodeName(from), nodeName(to), true, attrs); err != nil {
				return "", err
			}
		}
	}
	return g.String(), nil
}
