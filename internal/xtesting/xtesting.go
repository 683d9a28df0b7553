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

// Package xtesting provides knobs shared by randomized tests.
//
// Tests that exercise data structures against brute-force models use N to
// scale the number of iterations and NewRand to get reproducible randomness:
//
//	go test -short			// quick
//	go test				// normal
//	go test -verylong		// exhaustive
//	go test -randseed=1234		// replay a failure
package xtesting

import (
	"flag"
	"math/rand"
	"testing"
	"time"
)

var (
	verylongFlag = flag.Bool("verylong", false, `switch tests to run in "very long" mode`)
	randseedFlag = flag.Int64("randseed", -1, `seed for random number generator`)
)

// N returns short, medium, or long iteration count depending on whether tests
// were ran with -short, normally, or with -verylong.
//
// -short takes priority over -verylong.
func N(short, medium, long int) int {
	if testing.Short() {
		return short
	}
	if *verylongFlag {
		return long
	}
	return medium
}

// NewRand returns new random-number generator and seed that was used to initialize it.
//
// The seed can be controlled via -randseed option.
func NewRand() (rng *rand.Rand, seed int64) {
	seed = *randseedFlag
	if seed == -1 {
		seed = time.Now().UnixNano()
	}
	rng = rand.New(rand.NewSource(seed))
	return rng, seed
}

// RandRange returns random closed range [lo, hi] with both ends inside
// [dlo, dhi].
//
// The length of the range is limited by maxLen; maxLen <= 0 means no limit.
func RandRange(rng *rand.Rand, dlo, dhi, maxLen int64) (lo, hi int64) {
	if dlo > dhi {
		panic("RandRange: dlo > dhi")
	}
	span := dhi - dlo + 1
	lo = dlo + rng.Int63n(span)
	room := dhi - lo + 1
	if maxLen > 0 && maxLen < room {
		room = maxLen
	}
	hi = lo + rng.Int63n(room)
	return lo, hi
}
