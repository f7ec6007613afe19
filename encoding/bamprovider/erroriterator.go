package bamprovider

import (
	"github.com/biogo/hts/sam"
)

// doneIterator is an Iterator that is exhausted from the start.
type doneIterator struct {
	err error
}

func (i doneIterator) Scan() bool { return false }

func (i doneIterator) Record() *sam.Record {
	panic("bamprovider: Record called on an empty iterator")
}

func (i doneIterator) Err() error   { return i.err }
func (i doneIterator) Close() error { return i.err }

// NewErrorIterator creates an Iterator that yields no record and returns err
// from Err and Close.
func NewErrorIterator(err error) Iterator {
	return doneIterator{err: err}
}

// emptyIterator yields nothing, without error. Used for regions that cannot
// hold any read, e.g., on a reference missing from the BAM header.
var emptyIterator Iterator = doneIterator{}
