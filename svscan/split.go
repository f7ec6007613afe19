// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package svscan

import (
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

var saTag = sam.NewTag("SA")

// supplementary is one entry of an SA aux tag.
type supplementary struct {
	refName string
	// pos is 0-based.
	pos     int
	reverse bool
	cigar   sam.Cigar
	mapq    int
}

// end is the exclusive reference end of the alignment.
func (s supplementary) end() int {
	ref, _ := s.cigar.Lengths()
	return s.pos + ref
}

// parseSupplementary parses the SA tag of r. Entries that cannot be parsed
// are skipped. It returns false if r has no usable SA entry.
func parseSupplementary(r *sam.Record) ([]supplementary, bool) {
	aux := r.AuxFields.Get(saTag)
	if aux == nil {
		return nil, false
	}
	value, ok := aux.Value().(string)
	if !ok {
		return nil, false
	}
	var result []supplementary
	for _, entry := range strings.Split(value, ";") {
		if entry == "" {
			continue
		}
		if s, ok := parseSupplementaryEntry(entry); ok {
			result = append(result, s)
		}
	}
	return result, len(result) > 0
}

// parseSupplementaryEntry parses "rname,pos,strand,CIGAR,mapQ,NM".
func parseSupplementaryEntry(entry string) (supplementary, bool) {
	fields := strings.Split(entry, ",")
	if len(fields) < 5 {
		return supplementary{}, false
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return supplementary{}, false
	}
	if fields[2] != "+" && fields[2] != "-" {
		return supplementary{}, false
	}
	cigar, err := sam.ParseCigar([]byte(fields[3]))
	if err != nil || len(cigar) == 0 {
		return supplementary{}, false
	}
	mapq, err := strconv.Atoi(fields[4])
	if err != nil {
		return supplementary{}, false
	}
	return supplementary{
		refName: fields[0],
		pos:     pos - 1,
		reverse: fields[2] == "-",
		cigar:   cigar,
		mapq:    mapq,
	}, true
}

// isClip is true for soft and hard clips.
func isClip(t sam.CigarOpType) bool {
	return t == sam.CigarSoftClipped || t == sam.CigarHardClipped
}

// clipLengths returns the total clip length at the start and at the end of
// the cigar.
func clipLengths(cigar sam.Cigar) (head, tail int) {
	for _, co := range cigar {
		if !isClip(co.Type()) {
			break
		}
		head += co.Len()
	}
	for i := len(cigar) - 1; i >= 0; i-- {
		if !isClip(cigar[i].Type()) {
			break
		}
		tail += cigar[i].Len()
	}
	return head, tail
}
