package bamprovider

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for a coordinate-sorted BAM file and its
// .bai index. The header and the index are loaded once and shared by all
// iterators. Each iterator owns a file handle and a BAM reader; released
// iterators are pooled, since an edge scan seeks many small regions one after
// another.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	// Index is the pathname of *.bam.bai file. If "", Path + ".bai"
	Index string
	err   errors.Once

	mu      sync.Mutex
	loaded  bool
	header  *sam.Header
	index   *bam.Index
	nActive int
	pool    []*bamIterator
}

type bamIterator struct {
	provider *BAMProvider
	in       file.File
	reader   *bam.Reader

	region Region
	done   bool
	err    error
	rec    *sam.Record
}

func (b *BAMProvider) indexPath() string {
	if b.Index == "" {
		return b.Path + ".bai"
	}
	return b.Index
}

// load reads the header and the index.
//
// REQUIRES: b.mu is held.
func (b *BAMProvider) load(ctx context.Context) error {
	if b.loaded {
		return b.err.Err()
	}
	b.loaded = true
	in, err := file.Open(ctx, b.Path)
	if err != nil {
		b.err.Set(errors.E(err, fmt.Sprintf("bamprovider: open %s", b.Path)))
		return b.err.Err()
	}
	defer in.Close(ctx) // nolint: errcheck
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		b.err.Set(errors.E(err, fmt.Sprintf("bamprovider: read header %s", b.Path)))
		return b.err.Err()
	}
	b.header = reader.Header()
	reader.Close() // nolint: errcheck

	indexIn, err := file.Open(ctx, b.indexPath())
	if err != nil {
		b.err.Set(errors.E(err, fmt.Sprintf("bamprovider: open index %s", b.indexPath())))
		return b.err.Err()
	}
	defer indexIn.Close(ctx) // nolint: errcheck
	if b.index, err = bam.ReadIndex(indexIn.Reader(ctx)); err != nil {
		b.err.Set(errors.E(err, fmt.Sprintf("bamprovider: read index %s", b.indexPath())))
		return b.err.Err()
	}
	vlog.VI(1).Infof("bamprovider %s: %d references", b.Path, len(b.header.Refs()))
	return nil
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(vcontext.Background()); err != nil {
		return nil, err
	}
	return b.header, nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nActive > 0 {
		vlog.Fatalf("bamprovider %s: %d iterators still active", b.Path, b.nActive)
	}
	for _, iter := range b.pool {
		b.err.Set(iter.release())
	}
	b.pool = nil
	return b.err.Err()
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator(region Region) Iterator {
	if region.Ref == nil {
		return NewErrorIterator(fmt.Errorf("bamprovider %s: region %+v has no reference", b.Path, region))
	}
	iter, err := b.acquire()
	if err != nil {
		return NewErrorIterator(err)
	}
	iter.seek(region)
	return iter
}

// acquire returns a pooled iterator, or opens a new one.
func (b *BAMProvider) acquire() (*bamIterator, error) {
	ctx := vcontext.Background()
	b.mu.Lock()
	if err := b.load(ctx); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.nActive++
	if n := len(b.pool); n > 0 {
		iter := b.pool[n-1]
		b.pool = b.pool[:n-1]
		b.mu.Unlock()
		return iter, nil
	}
	b.mu.Unlock()

	iter := &bamIterator{provider: b}
	var err error
	if iter.in, err = file.Open(ctx, b.Path); err == nil {
		iter.reader, err = bam.NewReader(iter.in.Reader(ctx), 1)
	}
	if err != nil {
		b.err.Set(iter.release())
		b.mu.Lock()
		b.nActive--
		b.mu.Unlock()
		return nil, errors.E(err, fmt.Sprintf("bamprovider: open %s", b.Path))
	}
	return iter, nil
}

// recycle returns iter to the pool. An iterator that failed is not reused.
func (b *BAMProvider) recycle(iter *bamIterator) {
	if iter.err != nil {
		b.err.Set(iter.err)
		b.err.Set(iter.release())
		iter = nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if iter != nil {
		b.pool = append(b.pool, iter)
	}
	b.nActive--
	if b.nActive < 0 {
		vlog.Fatalf("bamprovider %s: negative active iterator count", b.Path)
	}
}

// chunks returns the index chunks that may hold reads overlapping region.
func (b *BAMProvider) chunks(region Region) ([]bgzf.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chunks, err := b.index.Chunks(region.Ref, region.Start, region.End)
	if err == index.ErrInvalid {
		// biogo reports a reference without reads as invalid.
		return nil, nil
	}
	return chunks, err
}

// seek positions the iterator at the first chunk of region.
func (i *bamIterator) seek(region Region) {
	i.region, i.done, i.err, i.rec = region, false, nil, nil
	if region.Start >= region.End {
		i.done = true
		return
	}
	chunks, err := i.provider.chunks(region)
	if err != nil {
		i.err = err
		return
	}
	if len(chunks) == 0 {
		i.done = true
		return
	}
	i.err = i.reader.Seek(chunks[0].Begin)
}

// compare places rec relative to the iterator's region: negative before it,
// zero if it overlaps, positive after. A read that starts before the region
// but ends inside it overlaps. Unmapped reads sort after every reference.
func (i *bamIterator) compare(rec *sam.Record) int {
	if rec.Ref == nil {
		return 1
	}
	if d := rec.Ref.ID() - i.region.Ref.ID(); d != 0 {
		return d
	}
	switch {
	case rec.Pos >= i.region.End:
		return 1
	case rec.End() <= i.region.Start:
		// Later reads may still reach into the region.
		return -1
	}
	return 0
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
	for !i.done && i.err == nil {
		rec, err := i.reader.Read()
		if err != nil {
			if err != io.EOF {
				i.err = err
			}
			i.done = true
			return false
		}
		switch c := i.compare(rec); {
		case c < 0:
			continue
		case c > 0:
			i.done = true
		default:
			i.rec = rec
			return true
		}
	}
	return false
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record { return i.rec }

// Err implements the Iterator interface.
func (i *bamIterator) Err() error { return i.err }

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	err := i.err
	i.provider.recycle(i)
	return err
}

// release closes the file handle and the reader of i.
func (i *bamIterator) release() error {
	e := errors.Once{}
	if i.reader != nil {
		e.Set(i.reader.Close())
		i.reader = nil
	}
	if i.in != nil {
		e.Set(i.in.Close(vcontext.Background()))
		i.in = nil
	}
	return e.Err()
}
