package bamprovider

import (
	"github.com/biogo/hts/sam"
)

// refMap indexes the references of a header by name.
type refMap map[string]*sam.Reference

func newRefMap(h *sam.Header) refMap {
	m := make(refMap, len(h.Refs()))
	for _, ref := range h.Refs() {
		m[ref.Name()] = ref
	}
	return m
}

// region converts [begin, end) on refName to a Region clipped to the
// reference bounds. ok is false if refName is not in the map.
func (m refMap) region(refName string, begin, end int) (r Region, ok bool) {
	ref := m[refName]
	if ref == nil {
		return Region{}, false
	}
	if begin < 0 {
		begin = 0
	}
	if end > ref.Len() {
		end = ref.Len()
	}
	return Region{Ref: ref, Start: begin, End: end}, true
}
