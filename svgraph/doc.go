// Package svgraph holds the genome-wide SV evidence graph consumed by the
// candidate engine.
//
// A Set is a list of disconnected Loci. Each Locus is a small directed graph
// whose Nodes are genomic regions suspected to contain one side of an SV, and
// whose edges count the read evidence linking two regions. An edge from node A
// to node B is counted on A ("out" count) when evidence was first seen at A,
// and the B node carries the reverse edge. Self-edges represent evidence that
// stays within a single region.
//
// Graph construction is done elsewhere; this package only reads, validates,
// indexes and enumerates the graph.
package svgraph
