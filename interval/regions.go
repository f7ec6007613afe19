package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// Region is a named interval with 0-based, half-open coordinates. Unlike a
// GenomeInterval, it is not yet tied to a reference list.
type Region struct {
	RefName string
	Range   Range
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%v", r.RefName, r.Range)
}

// Resolve converts r to a GenomeInterval using the reference name to ID map.
func (r Region) Resolve(chromIndex map[string]int32) (GenomeInterval, error) {
	refID, ok := chromIndex[r.RefName]
	if !ok {
		return GenomeInterval{}, fmt.Errorf("interval.Resolve: unknown reference %s", r.RefName)
	}
	return GenomeInterval{RefID: refID, Range: r.Range}, nil
}

// ResolveAll calls Resolve on each region.
func ResolveAll(regions []Region, chromIndex map[string]int32) ([]GenomeInterval, error) {
	result := make([]GenomeInterval, len(regions))
	for i, r := range regions {
		var err error
		if result[i], err = r.Resolve(chromIndex); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ParseRegion parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// The range [0, PosTypeMax) is returned if there is no positional
// restriction. The contig ID is everything before the last colon, so names
// containing colons work as long as a position is given.
func ParseRegion(region string) (result Region, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.Range = Range{0, PosTypeMax}
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty contig ID in %s", region)
		return
	}
	result.RefName = region[:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegion: position %v in region string out of range", rangeStr)
			return
		}
		result.Range = Range{PosType(pos1 - 1), PosType(pos1)}
		return
	}
	var start1, end int64
	if start1, err = strconv.ParseInt(rangeStr[:dashPos], 10, 64); err != nil {
		return
	}
	if end, err = strconv.ParseInt(rangeStr[dashPos+1:], 10, 64); err != nil {
		return
	}
	if start1 <= 0 || end < start1 || end >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegion: invalid range string %v", rangeStr)
		return
	}
	result.Range = Range{PosType(start1 - 1), PosType(end)}
	return
}

// ReadBED reads the first three columns of a BED file. Blank lines and
// "#", "track" and "browser" header lines are skipped. Empty intervals are
// dropped. Unlike a BED union, the regions are neither sorted nor merged.
func ReadBED(reader io.Reader) ([]Region, error) {
	scanner := bufio.NewScanner(reader)
	var regions []Region
	lineIdx := 0
	totBases := 0
	for scanner.Scan() {
		lineIdx++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") || fields[0] == "track" || fields[0] == "browser" {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("interval.ReadBED: line %d has fewer tokens than expected", lineIdx)
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval.ReadBED: line %d: %v", lineIdx, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval.ReadBED: line %d: %v", lineIdx, err)
		}
		if start < 0 || end < start || end >= PosTypeMax {
			return nil, fmt.Errorf("interval.ReadBED: invalid coordinate pair on line %d", lineIdx)
		}
		if end == start {
			continue
		}
		regions = append(regions, Region{RefName: fields[0], Range: Range{PosType(start), PosType(end)}})
		totBases += int(end - start)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Printf("BED loaded, %d region(s), %d base(s).", len(regions), totBases)
	return regions, nil
}

// ReadBEDFile is a wrapper for ReadBED that takes a path instead of an
// io.Reader. Gzipped files are decompressed.
func ReadBEDFile(ctx context.Context, path string) (regions []Region, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadBED(reader)
}
