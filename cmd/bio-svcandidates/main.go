// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// bio-svcandidates generates structural variant candidates from an evidence
// graph and a set of indexed BAM files.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/svfinder/interval"
	"github.com/grailbio/svfinder/svfinder"
	"github.com/grailbio/svfinder/svgraph"
	"github.com/grailbio/svfinder/svscan"
	"v.io/x/lib/cmdline"
)

// loadRegions collects the -region and -bed restrictions, resolved against
// the graph's references.
func loadRegions(ctx context.Context, graph *svgraph.Set, regionFlag, bedPath string) ([]interval.GenomeInterval, error) {
	var regions []interval.Region
	if regionFlag != "" {
		for _, str := range strings.Split(regionFlag, ",") {
			r, err := interval.ParseRegion(str)
			if err != nil {
				return nil, err
			}
			regions = append(regions, r)
		}
	}
	if bedPath != "" {
		bed, err := interval.ReadBEDFile(ctx, bedPath)
		if err != nil {
			return nil, err
		}
		if len(bed) == 0 {
			return nil, fmt.Errorf("%s: no regions", bedPath)
		}
		regions = append(regions, bed...)
	}
	return interval.ResolveAll(regions, graph.ChromIndex())
}

func newCmdFind() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "find",
		Short:    "Generate SV candidates for every admitted edge of a graph",
		ArgsName: "graphpath outpath bampath...",
		Long: `
find evaluates every edge of the graph whose directed counts both reach the
graph's minimum edge count. Each BAM file is one sample and must be indexed.
The candidates are written to outpath as TSV, gzipped if outpath ends in .gz
and bgzipped if it ends in .bgz.`,
	}
	opts := svfinder.DefaultGenerateOpts
	stats := svscan.DefaultFragmentStats
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", 0, "Number of edge bins evaluated in parallel; 0 = runtime.NumCPU()")
	cmd.Flags.BoolVar(&opts.ExcludeUnpaired, "exclude-unpaired", opts.ExcludeUnpaired, "Ignore pair evidence from read pairs with only one read collected")
	cmd.Flags.BoolVar(&opts.SameChromAsRepeat, "same-chrom-as-repeat", opts.SameChromAsRepeat, "Tolerate reads seen twice when both nodes of an edge are on one chromosome")
	cmd.Flags.BoolVar(&opts.CheckResult, "check", opts.CheckResult, "Cross-check candidate counts against the collected reads")
	cmd.Flags.IntVar(&opts.ScanOpts.MinMapq, "min-mapq", opts.ScanOpts.MinMapq, "Reads with MAPQ below this level are skipped")
	cmd.Flags.IntVar(&opts.ScanOpts.MinIndelSize, "min-indel", opts.ScanOpts.MinIndelSize, "Minimum indel size counted as local evidence")
	cmd.Flags.IntVar(&opts.ScanOpts.MinSoftClip, "min-softclip", opts.ScanOpts.MinSoftClip, "Minimum soft clip length counted as local evidence")
	cmd.Flags.IntVar(&opts.ScanOpts.LocalPad, "local-pad", opts.ScanOpts.LocalPad, "Padding around local evidence")
	cmd.Flags.IntVar(&opts.ScanOpts.SplitReadPad, "split-pad", opts.ScanOpts.SplitReadPad, "Padding around split read breakpoints")
	cmd.Flags.IntVar(&stats.MinProper, "min-proper", stats.MinProper, "Minimum template length of a proper pair")
	cmd.Flags.IntVar(&stats.MaxProper, "max-proper", stats.MaxProper, "Maximum template length of a proper pair")
	cmd.Flags.IntVar(&stats.MinLarge, "min-large", stats.MinLarge, "Minimum template length of a large fragment")
	region := cmd.Flags.String("region", "", "Comma-separated regions; only evaluate edges with a node in one of them. Each is formatted as chr:begin-end (1-based, closed), chr:pos or chr")
	bedPath := cmd.Flags.String("bed", "", "Only evaluate edges with a node in one of the regions of this BED file")
	debug := cmd.Flags.Bool("debug", false, "Log every candidate decision at debug level")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 3 {
			return fmt.Errorf("find takes graphpath outpath bampath..., but got %v", argv)
		}
		ctx := vcontext.Background()
		graph, err := svgraph.Read(ctx, argv[0])
		if err != nil {
			return err
		}
		if opts.Regions, err = loadRegions(ctx, graph, *region, *bedPath); err != nil {
			return err
		}
		bamPaths := argv[2:]
		opts.FragmentStats = make([]svscan.FragmentStats, len(bamPaths))
		for i := range opts.FragmentStats {
			opts.FragmentStats[i] = stats
		}
		if *debug {
			opts.Observer = svfinder.LogObserver{}
		}
		results, err := svfinder.Generate(ctx, graph, svfinder.BAMProviders(bamPaths), opts)
		if err != nil {
			return err
		}
		return svfinder.WriteTSV(ctx, argv[1], graph.RefNames, results)
	})
	return cmd
}

func newCmdEdges() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "edges",
		Short:    "List the edges of a graph",
		ArgsName: "graphpath",
	}
	all := cmd.Flags.Bool("all", false, "List all edges, not only the admitted ones")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("edges takes one graphpath argument, but got %v", argv)
		}
		graph, err := svgraph.Read(vcontext.Background(), argv[0])
		if err != nil {
			return err
		}
		for _, e := range graph.Edges(!*all) {
			fwd, rev := graph.EdgeCounts(e)
			locus := graph.Locus(e.LocusIndex)
			fmt.Fprintf(env.Stdout, "%d\t%d\t%d\t%v\t%v\t%d\t%d\n", e.LocusIndex, e.NodeIndex1, e.NodeIndex2,
				locus.Node(e.NodeIndex1).Interval, locus.Node(e.NodeIndex2).Interval, fwd, rev)
		}
		return nil
	})
	return cmd
}

func newCmdDot() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dot",
		Short:    "Print one locus of a graph in Graphviz format",
		ArgsName: "graphpath locusindex",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("dot takes graphpath locusindex, but got %v", argv)
		}
		graph, err := svgraph.Read(vcontext.Background(), argv[0])
		if err != nil {
			return err
		}
		i, err := strconv.Atoi(argv[1])
		if err != nil || i < 0 || i >= len(graph.Loci) {
			return fmt.Errorf("dot: invalid locus index %s (%d loci)", argv[1], len(graph.Loci))
		}
		dot, err := graph.LocusDOT(i)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Stdout, dot)
		return err
	})
	return cmd
}

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-svcandidates",
		Short:    "Generate structural variant candidates from an evidence graph",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdFind(),
			newCmdEdges(),
			newCmdDot(),
		},
	}
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdRoot())
}
