// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svgraph

// This file defines the recordio layout of a Set. Each locus is stored as one
// gob-encoded record; the reference names and the noise threshold are stored
// in the trailer.

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/pkg/errors"
)

const (
	// <fileVersionHeader, fileVersion> is stored in a recordio header.
	fileVersionHeader = "svgraphversion"
	fileVersion       = "SVGRAPH_V1"
)

// setFileTrailer is stored in the trailer section of the recordio file.
type setFileTrailer struct {
	RefNames          []string
	MinMergeEdgeCount uint32
	NumLoci           int
}

// Write stores s in path.
func Write(ctx context.Context, path string, s *Set) (err error) {
	recordiozstd.Init()
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "svgraph create %s", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(fileVersionHeader, fileVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	for i := range s.Loci {
		b := bytes.NewBuffer(nil)
		if err := gob.NewEncoder(b).Encode(&s.Loci[i]); err != nil {
			return errors.Wrapf(err, "svgraph encode locus %d", i)
		}
		w.Append(b.Bytes())
	}
	b := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(b).Encode(setFileTrailer{
		RefNames:          s.RefNames,
		MinMergeEdgeCount: s.MinMergeEdgeCount,
		NumLoci:           len(s.Loci),
	}); err != nil {
		return errors.Wrap(err, "svgraph encode trailer")
	}
	w.SetTrailer(b.Bytes())
	if err := w.Finish(); err != nil {
		return errors.Wrapf(err, "svgraph write %s", path)
	}
	return nil
}

// Read loads a Set written by Write and validates it with CheckState.
func Read(ctx context.Context, path string) (s *Set, err error) {
	recordiozstd.Init()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "svgraph open %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	versionFound := false
	for _, kv := range r.Header() {
		if kv.Key == fileVersionHeader {
			if v, ok := kv.Value.(string); !ok || v != fileVersion {
				return nil, errors.Errorf("svgraph %s: version mismatch, got %v, expect %v", path, kv.Value, fileVersion)
			}
			versionFound = true
			break
		}
	}
	if !versionFound {
		return nil, errors.Errorf("svgraph %s: %s not found", path, fileVersionHeader)
	}
	trailer := setFileTrailer{}
	if err := gob.NewDecoder(bytes.NewReader(r.Trailer())).Decode(&trailer); err != nil {
		return nil, errors.Wrapf(err, "svgraph %s: decode trailer", path)
	}
	s = NewSet(trailer.RefNames, trailer.MinMergeEdgeCount)
	for r.Scan() {
		l := Locus{}
		if err := gob.NewDecoder(bytes.NewReader(r.Get().([]byte))).Decode(&l); err != nil {
			return nil, errors.Wrapf(err, "svgraph %s: decode locus %d", path, len(s.Loci))
		}
		s.AddLocus(l)
	}
	if err := r.Finish(); err != nil {
		return nil, errors.Wrapf(err, "svgraph read %s", path)
	}
	if len(s.Loci) != trailer.NumLoci {
		return nil, errors.Errorf("svgraph %s: found %d loci, trailer says %d", path, len(s.Loci), trailer.NumLoci)
	}
	if err := s.CheckState(); err != nil {
		return nil, err
	}
	return s, nil
}
