// Package index holds the in-memory, append-only log index: a
// contiguous run of parsed records plus one presence BitSet per
// top-level-key front hash.
package index

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/llqtool/llq/bitset"
	"github.com/llqtool/llq/query"
)

// Index is a contiguous run of the log starting at StartIdx. A fresh
// Index from the ingestor always has StartIdx 0 or the next unsent line
// number; Merge stitches two such partials together.
type Index struct {
	StartIdx int
	Lines    []*query.Record
	Bitsets  map[uint64]*bitset.BitSet
}

// New returns an empty Index starting at startIdx.
func New(startIdx int) *Index {
	return &Index{StartIdx: startIdx, Bitsets: make(map[uint64]*bitset.BitSet)}
}

// Append adds rec as the next line and flips its top-level keys'
// presence bits.
func (idx *Index) Append(rec *query.Record) {
	lineNum := len(idx.Lines)
	for i := 0; i < rec.Len(); i++ {
		h := query.NewPath([]string{rec.Key(i)}).FrontHash()
		bs, ok := idx.Bitsets[h]
		if !ok {
			bs = bitset.New(lineNum + 1)
			idx.Bitsets[h] = bs
		}
		bs.Set(lineNum, true)
	}
	idx.Lines = append(idx.Lines, rec)
}

// end returns the absolute index of idx's last line, or
// idx.StartIdx-1 when idx is empty (so the contiguity arithmetic below
// works the same whether or not idx has any lines yet).
func (idx *Index) end() int {
	return idx.StartIdx + len(idx.Lines) - 1
}

// Merge appends other onto idx in place: other.StartIdx must not leave
// a gap after idx's current end. Already-covered lines in other's
// overlap with idx are skipped, so Merge is idempotent when other is
// entirely contained in idx's range. idx.StartIdx never changes.
func Merge(idx, other *Index) error {
	if other.StartIdx < idx.StartIdx {
		return fmt.Errorf("llq: IndexGap: other.StartIdx %d precedes idx.StartIdx %d", other.StartIdx, idx.StartIdx)
	}

	aEnd := idx.end()
	bStart := other.StartIdx

	if bStart > aEnd+1 {
		return fmt.Errorf("llq: IndexGap: merging index starting at %d leaves a gap after end %d", bStart, aEnd)
	}

	skip := aEnd + 1 - bStart

	for i := skip; i < len(other.Lines); i++ {
		idx.Lines = append(idx.Lines, other.Lines[i])
	}

	for _, h := range maps.Keys(other.Bitsets) {
		otherBS := other.Bitsets[h]
		bs, ok := idx.Bitsets[h]
		if !ok {
			bs = bitset.New(len(idx.Lines))
			idx.Bitsets[h] = bs
		}
		for i := skip; i < otherBS.Size(); i++ {
			absIdx := bStart + i - idx.StartIdx
			bs.Set(absIdx, otherBS.Get(i))
		}
	}

	return nil
}
