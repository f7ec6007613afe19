// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/svfinder/svscan"
)

// addNodeData scans the search interval of the local node in every sample and
// adds the reads that support the edge to the sample groups.
func (f *Finder) addNodeData(edge svgraph.EdgeInfo, locus *svgraph.Locus, localIndex, remoteIndex svgraph.NodeIndex) error {
	local := locus.Node(localIndex)
	remote := locus.Node(remoteIndex)

	search := local.Interval
	search.Range.Merge(local.EvidenceRange)

	isExpectRepeat := f.data.setNewSearchInterval(search)
	if !isExpectRepeat && f.opts.SameChromAsRepeat {
		isExpectRepeat = local.Interval.RefID == remote.Interval.RefID
	}
	f.observer.NodeScanned(edge, search, isExpectRepeat)

	refName := f.graph.RefNames[search.RefID]
	for sample, stream := range f.streams {
		group := f.data.Group(sample)
		if err := stream.SetRegion(refName, int(search.Range.Begin), int(search.Range.End)); err != nil {
			return err
		}
		for stream.Scan() {
			if err := f.addNodeRead(local, remote, stream.Record(), sample, isExpectRepeat, group); err != nil {
				return err
			}
		}
		if err := stream.Err(); err != nil {
			return errors.E(err, fmt.Sprintf("svfinder: scan %s sample %d", search, sample))
		}
	}
	return nil
}

// addNodeRead adds r to group if it is SV evidence with a locus that
// intersects the local node and, for a two-node locus, the remote node.
func (f *Finder) addNodeRead(local, remote *svgraph.Node, r *sam.Record, sample int, isExpectRepeat bool, group *SampleGroup) error {
	c := f.classifier
	if c.IsReadFiltered(r) {
		return nil
	}
	// The proper-pair flag is not trusted.
	isLargeAnomalous := !c.IsProperPair(r, sample) && c.IsLargeFragment(r, sample)
	if !isLargeAnomalous && !c.IsLocalAssemblyEvidence(r) {
		return nil
	}
	wasOpen := group.Open()
	if !group.reserve() {
		if wasOpen {
			f.observer.GroupTruncated(sample)
		}
		return nil
	}
	for _, locus := range c.SVLoci(r, sample, f.chromIndex) {
		match, err := locusMatches(locus, local, remote)
		if err != nil {
			return errors.E(err, fmt.Sprintf("read %s at %s:%d", r.Name, r.Ref.Name(), r.Pos))
		}
		if match {
			// The first matching locus is enough.
			return group.add(r, isExpectRepeat)
		}
	}
	return nil
}

// locusMatches checks a read locus against the local node and, if the locus
// has two nodes, against the remote node as well. The out-count node of the
// locus is the one compared with the local node.
func locusMatches(locus svscan.ReadLocus, local, remote *svgraph.Node) (bool, error) {
	switch len(locus.Nodes) {
	case 1:
		return locus.Nodes[0].Interval.Intersects(local.Interval), nil
	case 2:
		readLocal, readRemote := locus.Nodes[0], locus.Nodes[1]
		if !readLocal.OutCount {
			readLocal, readRemote = readRemote, readLocal
		}
		if !readLocal.OutCount {
			return false, errors.E(errors.Invalid, fmt.Sprintf("read locus has no out-count node: %+v", locus))
		}
		if !readRemote.Interval.Intersects(remote.Interval) {
			return false, nil
		}
		return readLocal.Interval.Intersects(local.Interval), nil
	default:
		return false, errors.E(errors.Invalid, fmt.Sprintf("read locus with %d nodes", len(locus.Nodes)))
	}
}
