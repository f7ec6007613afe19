package bamprovider

import (
	"sort"

	"github.com/biogo/hts/sam"
)

// fakeProvider serves reads from memory. For tests only.
type fakeProvider struct {
	header *sam.Header
	recs   []*sam.Record
	err    error

	nActive int
}

// fakeIterator walks recs, the provider's reads on the region's reference that
// start before its end, and yields those that overlap the region.
type fakeIterator struct {
	p      *fakeProvider
	region Region
	recs   []*sam.Record
	rec    *sam.Record
}

// NewFakeProvider creates a provider that returns header from GetHeader and
// serves recs, which must be sorted by (reference ID, position). Unmapped
// reads are never returned.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	return &fakeProvider{header: header, recs: recs}
}

// NewFakeErrorProvider creates a provider whose iterators all fail with err.
// Close also returns err.
func NewFakeErrorProvider(header *sam.Header, err error) Provider {
	return &fakeProvider{header: header, err: err}
}

func (b *fakeProvider) GetHeader() (*sam.Header, error) {
	return b.header, nil
}

func (b *fakeProvider) Close() error {
	if b.nActive != 0 {
		panic("fakeProvider: iterators still active")
	}
	return b.err
}

// before is true if rec sorts before position pos on refID.
func before(rec *sam.Record, refID, pos int) bool {
	if rec.Ref == nil {
		return false
	}
	if rec.Ref.ID() != refID {
		return rec.Ref.ID() < refID
	}
	return rec.Pos < pos
}

func (b *fakeProvider) NewIterator(region Region) Iterator {
	if b.err != nil {
		return NewErrorIterator(b.err)
	}
	b.nActive++
	refID := region.Ref.ID()
	lo := sort.Search(len(b.recs), func(i int) bool { return !before(b.recs[i], refID, 0) })
	hi := sort.Search(len(b.recs), func(i int) bool { return !before(b.recs[i], refID, region.End) })
	if hi < lo {
		hi = lo
	}
	return &fakeIterator{p: b, region: region, recs: b.recs[lo:hi]}
}

func (i *fakeIterator) Scan() bool {
	for len(i.recs) > 0 {
		i.rec, i.recs = i.recs[0], i.recs[1:]
		if i.rec.End() > i.region.Start {
			return true
		}
	}
	return false
}

// Record returns a copy of the current read, so the code under test cannot
// alter the test input.
func (i *fakeIterator) Record() *sam.Record {
	r := *i.rec
	return &r
}

func (i *fakeIterator) Err() error { return nil }

func (i *fakeIterator) Close() error {
	i.p.nActive--
	return nil
}
