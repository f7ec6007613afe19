package bamprovider

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
)

// Stream is a seekable, region-restricted view of one Provider. SetRegion
// repositions the stream; Scan and Record then walk the reads that overlap
// that region. A Stream is not thread safe.
type Stream struct {
	p      Provider
	header *sam.Header
	refs   refMap
	iter   Iterator
}

// NewStream creates a Stream on p. The stream does not own p; the caller must
// close p after closing the stream.
func NewStream(p Provider) (*Stream, error) {
	header, err := p.GetHeader()
	if err != nil {
		return nil, err
	}
	return &Stream{p: p, header: header, refs: newRefMap(header)}, nil
}

// Header returns the header of the underlying provider.
func (s *Stream) Header() *sam.Header { return s.header }

// SetRegion closes the current iteration, if any, and restricts subsequent
// Scan calls to reads that overlap [begin, end) on reference refName. A
// reference that isn't in the BAM header yields no reads.
func (s *Stream) SetRegion(refName string, begin, end int) error {
	if err := s.closeIter(); err != nil {
		return err
	}
	region, ok := s.refs.region(refName, begin, end)
	if !ok {
		s.iter = emptyIterator
		return nil
	}
	s.iter = s.p.NewIterator(region)
	return nil
}

// Scan advances to the next read in the region.
//
// REQUIRES: SetRegion has been called.
func (s *Stream) Scan() bool {
	return s.iter.Scan()
}

// Record returns the current read.
func (s *Stream) Record() *sam.Record {
	return s.iter.Record()
}

// Err returns the error of the current iteration, if any.
func (s *Stream) Err() error {
	if s.iter == nil {
		return nil
	}
	return s.iter.Err()
}

func (s *Stream) closeIter() error {
	if s.iter == nil {
		return nil
	}
	err := s.iter.Close()
	s.iter = nil
	if err != nil {
		return errors.E(err, "bamprovider stream: read failed")
	}
	return nil
}

// Close ends the current iteration. It does not close the provider.
func (s *Stream) Close() error {
	return s.closeIter()
}
