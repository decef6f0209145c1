package selector

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/bits-and-blooms/bitset"
)

// memberSet records which ids were already drawn.
type memberSet interface {
	// testAndSet marks id as taken and reports whether it already was.
	testAndSet(id uint64) bool
	cardinality() uint64
}

type denseSet struct {
	bits *bitset.BitSet
}

func newDenseSet(total uint64) *denseSet {
	return &denseSet{bits: bitset.New(uint(total))}
}

func (d *denseSet) testAndSet(id uint64) bool {
	if d.bits.Test(uint(id)) {
		return true
	}
	d.bits.Set(uint(id))

	return false
}

func (d *denseSet) cardinality() uint64 {
	return uint64(d.bits.Count())
}

type sparseSet struct {
	bm *roaring64.Bitmap
}

func newSparseSet() *sparseSet {
	return &sparseSet{bm: roaring64.New()}
}

func (s *sparseSet) testAndSet(id uint64) bool {
	if s.bm.Contains(id) {
		return true
	}
	s.bm.Add(id)

	return false
}

func (s *sparseSet) cardinality() uint64 {
	return s.bm.GetCardinality()
}
