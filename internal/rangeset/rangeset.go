// Copyright (C) 2026  Nexedi SA and Contributors.
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

package rangeset
// set of [lo,hi] Key ranges.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/johncgriffin/overflow"
	"github.com/pkg/errors"
)

const debugRangeSet = false

// RangeSet is set of Keys kept as sorted list of disjoint closed ranges.
//
// Ranges are merged when they overlap, or when a newly added range bridges
// them. Ranges that only touch each other, e.g. [1,3] and [4,6], are kept as
// separate entries.
//
// Zero value represents empty set.
//
// RangeSet is not safe for concurrent use if any of the users is mutating it.
type RangeSet struct {
	// r[i].Hi < r[i+1].Lo for all i
	rangev []Range
}

// New returns new empty set.
func New() *RangeSet {
	return &RangeSet{}
}


// Add adds all keys from [lo, hi] to the set.
//
// Error with ErrInvalidRange cause is returned, and the set is left
// unchanged, if lo > hi.
func (S *RangeSet) Add(lo, hi Key) error {
	return S.AddRange(Range{Lo: lo, Hi: hi})
}

// AddRange adds range r to the set.
func (S *RangeSet) AddRange(r Range) error {
	if !r.Valid() {
		return errors.Wrapf(ErrInvalidRange, "add [%s,%s]", KStr(r.Lo), KStr(r.Hi))
	}
	if debugRangeSet {
		S.verify()
		defer S.verify()
	}
	S.addRange(r)
	return nil
}

// addRange is AddRange for valid r.
func (S *RangeSet) addRange(r Range) {
	lo, hi := r.Lo, r.Hi
	rv := S.rangev

	// first range that starts at or after lo
	i := sort.Search(len(rv), func(j int) bool {
		return rv[j].Lo >= lo
	})

	switch {
	// overlap with the range on the left: extend it
	case i > 0 && rv[i-1].Hi >= lo:
		i--

	// overlap with the range on the right: lower its start
	case i < len(rv) && rv[i].Lo <= hi:
		rv[i].Lo = lo

	// no overlap: insert; nothing can be merged
	default:
		rv = append(rv, Range{})
		copy(rv[i+1:], rv[i:])
		rv[i] = r
		S.rangev = rv
		return
	}

	// rv[i] starts at or before lo
	if hi <= rv[i].Hi {
		return
	}

	// rv[i] grows to hi: absorb following ranges it now overlaps.
	// Since the ranges were disjoint, only the last absorbed range can
	// continue past hi.
	rv[i].Hi = hi
	j := i + 1
	for ; j < len(rv) && rv[j].Lo <= hi; j++ {
		if rv[j].Hi >= hi {
			rv[i].Hi = rv[j].Hi
			j++
			break
		}
	}
	if j > i+1 {
		rv = append(rv[:i+1], rv[j:]...)
	}
	S.rangev = rv
}


// Has returns whether key k belongs to the set.
func (S *RangeSet) Has(k Key) bool {
	rv := S.rangev
	// first range that starts after k
	i := sort.Search(len(rv), func(j int) bool {
		return rv[j].Lo > k
	})
	return i > 0 && rv[i-1].Hi >= k
}

// HasRange returns whether all keys from range r belong to the set.
//
// Empty (invalid) r is always contained.
func (S *RangeSet) HasRange(r Range) bool {
	if !r.Valid() {
		return true
	}
	rv := S.rangev
	i := sort.Search(len(rv), func(j int) bool {
		return rv[j].Lo > r.Lo
	})
	if !(i > 0 && rv[i-1].Hi >= r.Lo) {
		return false
	}

	// r might span several adjacent entries, e.g. [1,3] [4,6] ∋ [2,5]
	hi := rv[i-1].Hi
	for ; hi < r.Hi && i < len(rv) && rv[i].Lo == hi+1; i++ {
		hi = rv[i].Hi
	}
	return hi >= r.Hi
}

// IntersectsRange returns whether some keys from range r belong to the set.
func (S *RangeSet) IntersectsRange(r Range) bool {
	if !r.Valid() {
		return false
	}
	rv := S.rangev
	i := sort.Search(len(rv), func(j int) bool {
		return rv[j].Lo >= r.Lo
	})
	return (i > 0 && rv[i-1].Hi >= r.Lo) || (i < len(rv) && rv[i].Lo <= r.Hi)
}


// RangesBetween returns ranges of the set that intersect [lo, hi], each
// clipped to [lo, hi].
//
// In other words it returns S ∩ [lo, hi]. The result is empty if lo > hi.
func (S *RangeSet) RangesBetween(lo, hi Key) []Range {
	if lo > hi {
		return nil
	}
	rv := S.rangev
	i := sort.Search(len(rv), func(j int) bool {
		return rv[j].Lo >= lo
	})

	var outv []Range
	if i > 0 && rv[i-1].Hi >= lo {
		outv = append(outv, Range{lo, kmin(rv[i-1].Hi, hi)})
	}
	for ; i < len(rv) && rv[i].Lo <= hi; i++ {
		outv = append(outv, Range{rv[i].Lo, kmin(rv[i].Hi, hi)})
	}
	return outv
}

// Count returns number of keys of the set that are inside [lo, hi].
//
// Error with ErrOverflow cause is returned if the number does not fit into Key.
func (S *RangeSet) Count(lo, hi Key) (n Key, err error) {
	for _, r := range S.RangesBetween(lo, hi) {
		l, err := r.Len()
		if err != nil {
			return 0, errors.Wrapf(err, "count [%s,%s]", KStr(lo), KStr(hi))
		}
		var ok bool
		n, ok = overflow.Add64(n, l)
		if !ok {
			return 0, errors.Wrapf(ErrOverflow, "count [%s,%s]", KStr(lo), KStr(hi))
		}
	}
	return n, nil
}

// CountAll returns total number of keys in the set.
func (S *RangeSet) CountAll() (Key, error) {
	if S.Empty() {
		return 0, nil
	}
	return S.Count(S.rangev[0].Lo, S.rangev[len(S.rangev)-1].Hi)
}

// Ranges returns all ranges of the set.
//
// The result is a copy and can be retained by the caller.
func (S *RangeSet) Ranges() []Range {
	if S.Empty() {
		return nil
	}
	return S.RangesBetween(S.rangev[0].Lo, S.rangev[len(S.rangev)-1].Hi)
}

// Invert returns new set with all keys from [lo, hi] that do not belong to S.
//
// S is not modified.
func (S *RangeSet) Invert(lo, hi Key) *RangeSet {
	I := New()
	edge := lo
	for _, r := range S.RangesBetween(lo, hi) {
		if r.Lo > edge {
			I.addRange(Range{edge, r.Lo - 1})
		}
		next, ok := overflow.Add64(r.Hi, 1)
		if !ok {
			// r ends at KeyMax - nothing can be left after it
			return I
		}
		edge = next
	}
	if edge <= hi {
		I.addRange(Range{edge, hi})
	}
	return I
}


// Union returns RangeSet(A.keys | B.keys).
func (A *RangeSet) Union(B *RangeSet) *RangeSet {
	U := A.Clone()
	U.UnionInplace(B)
	return U
}

// UnionInplace adds all keys of B to A.
func (A *RangeSet) UnionInplace(B *RangeSet) {
	if debugRangeSet {
		A.verify()
		B.verify()
		defer A.verify()
	}

	for _, r := range B.rangev {
		A.addRange(r)
	}
}

// Intersection returns RangeSet(A.keys ^ B.keys).
func (A *RangeSet) Intersection(B *RangeSet) *RangeSet {
	I := New()
	for _, b := range B.rangev {
		for _, r := range A.RangesBetween(b.Lo, b.Hi) {
			I.addRange(r)
		}
	}
	return I
}


// --------

// verify checks RangeSet for internal consistency.
func (S *RangeSet) verify() {
	var badv []string
	badf := func(format string, argv ...interface{}) {
		badv = append(badv, fmt.Sprintf(format, argv...))
	}

	for i, r := range S.rangev {
		if !r.Valid() {
			badf("[%d]: invalid range %s", i, r)
		}
		if i > 0 {
			prev := S.rangev[i-1]
			if !(prev.Hi < r.Lo) {
				badf("[%d]: %s overlaps or precedes [%d]: %s", i, r, i-1, prev)
			}
		}
	}

	if badv != nil {
		panicf("RangeSet.verify: fail:\n\n%s\n\nS: %s", strings.Join(badv, "\n"), S)
	}
}

// Len returns number of ranges in the set.
func (S *RangeSet) Len() int {
	return len(S.rangev)
}

// Empty returns whether the set is empty.
func (S *RangeSet) Empty() bool {
	return len(S.rangev) == 0
}

// Clone returns copy of the set.
func (orig *RangeSet) Clone() *RangeSet {
	klon := &RangeSet{}
	if len(orig.rangev) > 0 {
		klon.rangev = append([]Range(nil), orig.rangev...)
	}
	return klon
}

// Equal returns whether A and B have the same keys.
//
// Touching ranges are considered as one, e.g. {[1,3] [4,6]} == {[1,6]}.
func (A *RangeSet) Equal(B *RangeSet) bool {
	av := A.coalesced()
	bv := B.coalesced()
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

// coalesced returns ranges of the set with touching ranges joined together.
func (S *RangeSet) coalesced() []Range {
	var outv []Range
	for _, r := range S.rangev {
		if l := len(outv); l > 0 && outv[l-1].Hi+1 == r.Lo {
			outv[l-1].Hi = r.Hi
			continue
		}
		outv = append(outv, r)
	}
	return outv
}

func (S RangeSet) String() string {
	s := "{"
	for i, r := range S.rangev {
		if i > 0 {
			s += " "
		}
		s += r.String()
	}
	s += "}"
	return s
}

func panicf(format string, argv ...interface{}) {
	panic(fmt.Sprintf(format, argv...))
}
