package core

// mask.go implements whole-column boolean masks as packed bitmaps.
//
// A Mask has one bit per row, laid out like an Arrow validity bitmap (LSB
// first). Combining masks works a byte (eight rows) at a time, and turning a
// mask into row positions skips empty bytes, so sparse violation sets are
// cheap to extract from large columns.

import (
	"math/bits"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// Mask is a fixed-length bitmap over the rows of a column.
type Mask struct {
	bits []byte
	n    int
}

// NewMask returns an all-false mask over n rows.
func NewMask(n int) Mask {
	return Mask{bits: make([]byte, bitutil.BytesForBits(int64(n))), n: n}
}

// FullMask returns an all-true mask over n rows.
func FullMask(n int) Mask {
	return NewMask(n).Not()
}

// Len returns the number of rows the mask covers.
func (m Mask) Len() int { return m.n }

// Set marks row i.
func (m Mask) Set(i int) { bitutil.SetBit(m.bits, i) }

// Get reports whether row i is marked.
func (m Mask) Get(i int) bool { return bitutil.BitIsSet(m.bits, i) }

// Count returns the number of marked rows.
func (m Mask) Count() int {
	if m.n == 0 {
		return 0
	}
	return bitutil.CountSetBits(m.bits, 0, m.n)
}

// Any reports whether at least one row is marked.
func (m Mask) Any() bool {
	for _, b := range m.bits {
		if b != 0 {
			return true
		}
	}
	return false
}

// Or returns the union of two masks of equal length.
func (m Mask) Or(o Mask) Mask {
	out := NewMask(m.n)
	for i := range out.bits {
		out.bits[i] = m.bits[i] | o.bits[i]
	}
	return out
}

// AndNot returns the rows marked in m but not in o.
func (m Mask) AndNot(o Mask) Mask {
	out := NewMask(m.n)
	for i := range out.bits {
		out.bits[i] = m.bits[i] &^ o.bits[i]
	}
	return out
}

// Not returns the complement of m.
func (m Mask) Not() Mask {
	out := NewMask(m.n)
	for i := range out.bits {
		out.bits[i] = ^m.bits[i]
	}
	out.clearTail()
	return out
}

// Indices returns the marked row positions in ascending order.
func (m Mask) Indices() []int {
	idx := make([]int, 0, m.Count())
	for byteIdx, b := range m.bits {
		for b != 0 {
			bit := bits.TrailingZeros8(b)
			idx = append(idx, byteIdx*8+bit)
			b &= b - 1
		}
	}
	return idx
}

// clearTail zeroes the padding bits past n in the last byte.
func (m Mask) clearTail() {
	if rem := m.n % 8; rem != 0 && len(m.bits) > 0 {
		m.bits[len(m.bits)-1] &= byte(1<<rem) - 1
	}
}

// nullMask marks the null entries of an Arrow array by inverting its validity
// bitmap.
func nullMask(arr arrow.Array) Mask {
	n := arr.Len()
	if arr.NullN() == 0 {
		return NewMask(n)
	}
	validity := arr.NullBitmapBytes()
	if len(validity) == 0 {
		return FullMask(n)
	}
	offset := arr.Data().Offset()
	out := NewMask(n)
	if offset%8 == 0 {
		src := validity[offset/8:]
		for i := range out.bits {
			out.bits[i] = ^src[i]
		}
		out.clearTail()
		return out
	}
	for i := 0; i < n; i++ {
		if !bitutil.BitIsSet(validity, offset+i) {
			out.Set(i)
		}
	}
	return out
}
