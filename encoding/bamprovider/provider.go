package bamprovider

import (
	"fmt"

	"github.com/biogo/hts/sam"
)

// Region is a half-open, 0-based range [Start, End) on Ref. An iterator for a
// region yields the reads whose alignment overlaps it, including reads that
// start before Start.
type Region struct {
	Ref        *sam.Reference
	Start, End int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Ref.Name(), r.Start, r.End)
}

// Provider gives region-restricted access to the reads of one sample. Thread
// safe.
type Provider interface {
	// GetHeader returns the header of the sample's alignments. The caller must
	// not modify it.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over the reads that overlap region, in
	// coordinate order. Errors are reported by the iterator.
	//
	// REQUIRES: Close has not been called.
	NewIterator(region Region) Iterator

	// Close releases the provider. It returns the first error seen by the
	// provider or by any of its iterators.
	//
	// REQUIRES: every iterator has been closed.
	Close() error
}

// Iterator walks the reads of one region. Thread compatible.
type Iterator interface {
	// Scan advances to the next read. It returns false at the end of the
	// region or on error.
	Scan() bool

	// Record returns the current read.
	//
	// REQUIRES: the last call to Scan returned true.
	Record() *sam.Record

	// Err returns the error that stopped Scan, or nil at the normal end of
	// the region.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index is the path of the BAM index. Defaults to path + ".bai".
	Index string
}

// NewProvider creates a Provider that reads the indexed BAM file at path.
// path may be any path supported by github.com/grailbio/base/file.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	b := &BAMProvider{Path: path}
	for _, o := range optList {
		if o.Index != "" {
			b.Index = o.Index
		}
	}
	return b
}
