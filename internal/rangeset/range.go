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

// Package rangeset provides RangeSet - set of integers kept as sorted list of
// disjoint closed ranges.
//
// Storage is O(K), where K is the number of ranges, instead of O(N) for N
// members. This makes it suitable for sets covering huge or unbounded parts
// of the integer domain, as long as the number of ranges stays small.
package rangeset

import (
	"fmt"
	"math"

	"github.com/johncgriffin/overflow"
	"github.com/pkg/errors"
)

type Key = int64

const KeyMax Key = math.MaxInt64
const KeyMin Key = math.MinInt64

var (
	// ErrInvalidRange is the cause of errors returned when adding a range
	// with lo > hi.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverflow is the cause of errors returned when a count does not fit
	// into Key.
	ErrOverflow = errors.New("integer overflow")
)


// Range represents closed [Lo, Hi] range of keys.
//
// Both Lo and Hi are included. Range with Lo > Hi is invalid and is never
// stored in a RangeSet.
type Range struct {
	Lo Key
	Hi Key
}

// Valid returns whether r.Lo <= r.Hi.
func (r Range) Valid() bool {
	return r.Lo <= r.Hi
}

// Has returns whether key k belongs to the range.
func (r Range) Has(k Key) bool {
	return r.Lo <= k && k <= r.Hi
}

// Overlaps returns whether r and b have at least one key in common.
func (r Range) Overlaps(b Range) bool {
	return r.Lo <= b.Hi && b.Lo <= r.Hi
}

// Clip returns r ∩ [lo, hi].
//
// ok=false is returned if the intersection is empty.
func (r Range) Clip(lo, hi Key) (_ Range, ok bool) {
	c := Range{kmax(r.Lo, lo), kmin(r.Hi, hi)}
	if !c.Valid() {
		return Range{}, false
	}
	return c, true
}

// Len returns number of keys in the range.
//
// [KeyMin, KeyMax] has 2^64 keys which does not fit into Key; ErrOverflow is
// returned for such ranges.
func (r Range) Len() (Key, error) {
	if !r.Valid() {
		return 0, nil
	}
	d, ok := overflow.Sub64(r.Hi, r.Lo)
	if ok {
		d, ok = overflow.Add64(d, 1)
	}
	if !ok {
		return 0, errors.Wrapf(ErrOverflow, "len %s", r)
	}
	return d, nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%s,%s]", KStr(r.Lo), KStr(r.Hi))
}


// KStr formats key as string.
func KStr(k Key) string {
	if k == KeyMin {
		return "-∞"
	}
	if k == KeyMax {
		return "∞"
	}
	return fmt.Sprintf("%d", k)
}

// kmin returns min(a,b).
func kmin(a, b Key) Key {
	if a < b {
		return a
	} else {
		return b
	}
}

// kmax returns max(a,b).
func kmax(a, b Key) Key {
	if a > b {
		return a
	} else {
		return b
	}
}
