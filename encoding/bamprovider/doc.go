// Package bamprovider provides region-restricted access to coordinate-sorted,
// indexed BAM files.
//
// The Provider is an interface for reading a BAM file, one genomic region at a
// time. Stream is implemented on top of Provider: it holds at most one open
// Iterator and re-seeks whenever SetRegion is called, which is the access
// pattern of the SV evidence collector.
package bamprovider
