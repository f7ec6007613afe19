// Package svfinder generates SV candidates from the edges of an evidence
// graph.
//
// For one edge, Finder re-scans the alignments under both nodes and keeps the
// reads that support the edge, grouped by sample into read pairs. Each pair is
// translated into breakend observations which are assigned, in order, to a
// growing list of candidates: an observation joins the first candidate it
// intersects, or starts a new one. Since candidates widen as they absorb
// observations, a consolidation step then merges candidates that have come to
// intersect and renumbers the survivors densely, rewriting every read pair's
// links to match. An optional check recomputes the read and pair support of
// every candidate from the read pairs and compares it with the candidate's own
// counts.
//
// Generate runs Finder over every admitted edge of a graph in parallel.
package svfinder
