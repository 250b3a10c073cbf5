package imagedata

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// LUT is a data lookup table in the DICOM style: Data[i] holds the mapped
// value for input FirstValueMapped+i, inputs below the first entry clamp to
// Data[0] and inputs above the last clamp to the final entry. The same
// structure serves both the modality LUT and the VOI LUT attachments of a
// Viewport.
type LUT struct {
	// ID identifies the table for equality checks. Tables carrying the same
	// non-empty ID are treated as interchangeable; see Matches.
	ID string

	// FirstValueMapped is the input value mapped by Data[0].
	FirstValueMapped int

	// BitsPerEntry is the bit depth of the Data entries. VOI LUT entries are
	// shifted down to 8 bits during lookup.
	BitsPerEntry int

	// Data holds the table entries.
	Data []int
}

// NewDataLUT builds a LUT with a content-derived ID, giving value-like tables
// a stable identity: two tables built from identical contents match even when
// they are distinct objects.
func NewDataLUT(firstValueMapped, bitsPerEntry int, data []int) *LUT {
	h := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(firstValueMapped)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(bitsPerEntry)))
	h.Write(buf[:])
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}

	return &LUT{
		ID:               fmt.Sprintf("xxh64:%016x", h.Sum64()),
		FirstValueMapped: firstValueMapped,
		BitsPerEntry:     bitsPerEntry,
		Data:             data,
	}
}

// Matches reports whether two transform references are interchangeable for
// display LUT caching. Two nil references match and a nil reference never
// matches a non-nil one. Beyond that, a reference matches itself, and
// distinct objects match when both carry the same non-empty ID. Objects
// without IDs are handle-like: only identity matches them.
func (l *LUT) Matches(other *LUT) bool {
	if l == nil && other == nil {
		return true
	}
	if l == nil || other == nil {
		return false
	}
	if l == other {
		return true
	}
	return l.ID != "" && l.ID == other.ID
}
