// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/svfinder/encoding/bamprovider"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/sv"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/svfinder/svscan"
)

// GenerateOpts configures Generate.
type GenerateOpts struct {
	Opts
	ScanOpts svscan.Opts
	// FragmentStats lists the fragment size statistics of each sample.
	FragmentStats []svscan.FragmentStats
	// Parallelism is the number of edge bins evaluated concurrently. Defaults
	// to the number of CPUs.
	Parallelism int
	// Regions, if not empty, restricts evaluation to edges with a node that
	// intersects one of them.
	Regions []interval.GenomeInterval
}

// DefaultGenerateOpts sets the default values to GenerateOpts.
var DefaultGenerateOpts = GenerateOpts{
	Opts:     DefaultOpts,
	ScanOpts: svscan.DefaultOpts,
}

// ProviderFactory creates one provider per sample. Generate calls it once per
// edge bin and closes the providers it returns.
type ProviderFactory func() []bamprovider.Provider

// BAMProviders returns a factory that opens the given indexed BAM files.
func BAMProviders(paths []string) ProviderFactory {
	return func() []bamprovider.Provider {
		providers := make([]bamprovider.Provider, len(paths))
		for i, path := range paths {
			providers[i] = bamprovider.NewProvider(path)
		}
		return providers
	}
}

// EdgeResult is the outcome of evaluating one edge.
type EdgeResult struct {
	Edge       svgraph.EdgeInfo
	Candidates []sv.Candidate
	// Incomplete lists the samples whose evidence group hit its capacity. The
	// counts of those samples are lower bounds.
	Incomplete []int
	// Skipped is set for edges whose evidence was collected but whose counts
	// are not meaningful, e.g., self-edges.
	Skipped bool
}

// Generate evaluates every admitted edge of graph, in parallel, and returns
// the results of the edges that produced candidates, in edge order.
func Generate(ctx context.Context, graph *svgraph.Set, newProviders ProviderFactory, opts GenerateOpts) ([]EdgeResult, error) {
	edges := graph.Edges(true)
	if len(opts.Regions) > 0 {
		edges = graph.EdgesInRegion(edges, opts.Regions...)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	bins := graph.BinEdges(edges, parallelism)
	log.Printf("svfinder: evaluating %d edges in %d bins", len(edges), len(bins))

	results := make([][]EdgeResult, len(bins))
	err := traverse.Each(len(bins), func(bin int) error {
		r, err := generateBin(ctx, graph, bins[bin], newProviders, opts)
		results[bin] = r
		return err
	})
	if err != nil {
		return nil, err
	}
	var all []EdgeResult
	nCandidates := 0
	for _, r := range results {
		for _, er := range r {
			nCandidates += len(er.Candidates)
		}
		all = append(all, r...)
	}
	log.Printf("svfinder: %d candidates from %d edges", nCandidates, len(all))
	return all, nil
}

func generateBin(ctx context.Context, graph *svgraph.Set, edges []svgraph.EdgeInfo, newProviders ProviderFactory, opts GenerateOpts) (results []EdgeResult, err error) {
	providers := newProviders()
	e := errors.Once{}
	defer func() {
		for _, p := range providers {
			e.Set(p.Close())
		}
		if err == nil {
			err = e.Err()
		}
	}()
	classifier := svscan.NewReadScanner(opts.ScanOpts, opts.FragmentStats)
	finder, err := NewFinder(graph, classifier, providers, opts.Opts)
	if err != nil {
		return nil, err
	}
	defer func() { e.Set(finder.Close()) }()

	for _, edge := range edges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		svs, err := finder.FindCandidateSV(edge)
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("svfinder: edge %v", edge))
		}
		if len(svs) == 0 {
			continue
		}
		r := EdgeResult{Edge: edge, Candidates: svs}
		data := finder.Data()
		for sample := 0; sample < data.NumGroups(); sample++ {
			g := data.Group(sample)
			if g.Incomplete() {
				r.Incomplete = append(r.Incomplete, sample)
			}
			if g.Skipped() {
				r.Skipped = true
			}
		}
		results = append(results, r)
	}
	return results, nil
}
