// Package svscan classifies aligned reads as SV evidence.
//
// The Classifier answers three questions about a read: whether it is filtered
// outright (low mapping quality, duplicates, ...), whether it is anomalous
// large-fragment pair evidence or local assembly evidence, and which graph
// loci and breakend observations it implies. ReadScanner is the default
// implementation, driven by per-sample fragment size statistics.
package svscan
