// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svfinder

import (
	"context"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/svfinder/sv"
	"github.com/klauspost/compress/gzip"
)

const tsvHeader = "#LOCUS\tNODE1\tNODE2\tINDEX" +
	"\tCHROM1\tBEGIN1\tEND1\tSTATE1\tREADS1\tPAIRS1" +
	"\tCHROM2\tBEGIN2\tEND2\tSTATE2\tREADS2\tPAIRS2" +
	"\tPAIR\tSPLIT\tLOCAL\tINCOMPLETE\tSKIPPED"

// writeBreakend writes the CHROM/BEGIN/END/STATE/READS/PAIRS columns of bp.
// Coordinates are converted to 1-based, inclusive, as is customary for text
// files. An unanchored breakend is written as dots.
func writeBreakend(w *tsv.Writer, refNames []string, bp *sv.Breakend) {
	if bp.Interval.Valid() && int(bp.Interval.RefID) < len(refNames) {
		w.WriteString(refNames[bp.Interval.RefID])
		w.WriteUint32(uint32(bp.Interval.Range.Begin + 1))
		w.WriteUint32(uint32(bp.Interval.Range.End))
	} else {
		w.WriteString(".")
		w.WriteString(".")
		w.WriteString(".")
	}
	w.WriteString(bp.State.String())
	w.WriteUint32(bp.LocalPairCount)
	w.WriteUint32(bp.PairCount)
}

// observationCount is the number of observations of type t in c. Spanning
// observations are counted on both breakends, local ones on one.
func observationCount(c *sv.Candidate, t sv.EvidenceType) uint32 {
	if n := c.BP1.Evidence[t]; n > c.BP2.Evidence[t] {
		return n
	}
	return c.BP2.Evidence[t]
}

func incompleteString(samples []int) string {
	if len(samples) == 0 {
		return "."
	}
	s := make([]string, len(samples))
	for i, sample := range samples {
		s[i] = strconv.Itoa(sample)
	}
	return strings.Join(s, ",")
}

// WriteTSVTo writes one line per candidate to out. SKIPPED is 1 for
// candidates of edges whose counts are not meaningful, such as self-edges.
func WriteTSVTo(out io.Writer, refNames []string, results []EdgeResult) error {
	w := tsv.NewWriter(out)
	w.WriteString(tsvHeader)
	if err := w.EndLine(); err != nil {
		return err
	}
	for _, r := range results {
		for i := range r.Candidates {
			c := &r.Candidates[i]
			w.WriteUint32(uint32(r.Edge.LocusIndex))
			w.WriteUint32(uint32(r.Edge.NodeIndex1))
			w.WriteUint32(uint32(r.Edge.NodeIndex2))
			w.WriteUint32(uint32(c.CandidateIndex))
			writeBreakend(w, refNames, &c.BP1)
			writeBreakend(w, refNames, &c.BP2)
			for _, t := range []sv.EvidenceType{sv.Pair, sv.SplitRead, sv.LocalAssembly} {
				w.WriteUint32(observationCount(c, t))
			}
			w.WriteString(incompleteString(r.Incomplete))
			if r.Skipped {
				w.WriteString("1")
			} else {
				w.WriteString("0")
			}
			if err := w.EndLine(); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// WriteTSV writes the candidates to path. The output is gzipped if path ends
// in ".gz" and bgzipped if it ends in ".bgz".
func WriteTSV(ctx context.Context, path string, refNames []string, results []EdgeResult) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "svfinder: create "+path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	var w io.WriteCloser
	switch {
	case strings.HasSuffix(path, ".gz"):
		w = gzip.NewWriter(out.Writer(ctx))
	case strings.HasSuffix(path, ".bgz"):
		w = bgzf.NewWriter(out.Writer(ctx), runtime.NumCPU())
	default:
		return WriteTSVTo(out.Writer(ctx), refNames, results)
	}
	if err := WriteTSVTo(w, refNames, results); err != nil {
		w.Close() // nolint: errcheck
		return err
	}
	return w.Close()
}
