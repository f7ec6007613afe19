/*Package interval defines the half-open genomic coordinate ranges used by the
  SV candidate engine.
  A GenomeInterval is a (reference ID, [Begin, End)) pair. Intervals are plain
  values: Merge grows a range in place to cover another, and Intersects tests
  for a non-empty overlap on the same reference.
  A Region names an interval by chromosome instead of reference ID. Regions are
  parsed from "chr:begin-end" strings or read from (optionally gzipped) BED
  files, and resolved against a chromosome index before use.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
