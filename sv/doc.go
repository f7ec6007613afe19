// Package sv defines the structural-variant evidence types shared by the read
// classifier and the candidate engine: breakends, candidates and the
// observations derived from individual reads or read pairs.
package sv
