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

// Package sensor turns sensor/beacon reports into per-row coverage sets and
// searches them for positions no sensor can see.
//
// Every sensor reports its position and the position of the closest beacon
// by Manhattan distance. The sensor thus sees every position within that
// distance, and on a given row this area is one closed x range. Coverage
// unions those ranges into a rangeset.RangeSet; Locate scans rows of an area
// for the first position that is not covered.
package sensor

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/johncgriffin/overflow"
	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/kirr/rangecov/internal/rangeset"
)

var (
	// ErrBadReport is the cause of errors about malformed sensor reports.
	ErrBadReport = errors.New("bad sensor report")

	// ErrNotFound is returned by Locate when every position is covered.
	ErrNotFound = errors.New("no uncovered position")
)

// Coord is a position on the grid.
type Coord struct {
	X, Y int64
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns |a.X-b.X| + |a.Y-b.Y|.
//
// Error is returned if the distance does not fit into int64.
func Manhattan(a, b Coord) (int64, error) {
	dx, ok1 := absDiff(a.X, b.X)
	dy, ok2 := absDiff(a.Y, b.Y)
	d, ok3 := overflow.Add64(dx, dy)
	if !(ok1 && ok2 && ok3) {
		return 0, errors.Errorf("distance %s..%s: integer overflow", a, b)
	}
	return d, nil
}

// absDiff returns |a-b|.
func absDiff(a, b int64) (int64, bool) {
	d, ok := overflow.Sub64(a, b)
	if !ok {
		return 0, false
	}
	if d < 0 {
		return overflow.Sub64(0, d)
	}
	return d, true
}


// Sensor is one sensor with the closest beacon it detected.
type Sensor struct {
	At     Coord
	Beacon Coord
	radius int64 // Manhattan(At, Beacon)
}

// NewSensor returns sensor at position at that detected beacon.
func NewSensor(at, beacon Coord) (Sensor, error) {
	r, err := Manhattan(at, beacon)
	if err != nil {
		return Sensor{}, errors.Wrapf(ErrBadReport, "sensor %s: %s", at, err)
	}
	return Sensor{At: at, Beacon: beacon, radius: r}, nil
}

// Radius returns how far the sensor sees.
func (s Sensor) Radius() int64 {
	return s.radius
}

func (s Sensor) String() string {
	return fmt.Sprintf("sensor %s beacon %s", s.At, s.Beacon)
}

// Span returns x range that the sensor covers on row y.
//
// ok=false is returned if the row is out of the sensor's reach.
func (s Sensor) Span(y int64) (_ rangeset.Range, ok bool, err error) {
	dy, ok := absDiff(s.At.Y, y)
	if !ok || dy > s.radius {
		return rangeset.Range{}, false, nil
	}
	rem := s.radius - dy
	lo, ok1 := overflow.Sub64(s.At.X, rem)
	hi, ok2 := overflow.Add64(s.At.X, rem)
	if !(ok1 && ok2) {
		return rangeset.Range{}, false, errors.Errorf("%s: span at y=%d: integer overflow", s, y)
	}
	return rangeset.Range{Lo: lo, Hi: hi}, true, nil
}


// Coverage returns set of x positions on row y seen by sensorv.
//
// If includeBeacons=false, positions occupied by known beacons are left out:
// a beacon is known to be there, so the position is not one where a beacon
// cannot be.
func Coverage(sensorv []Sensor, y int64, includeBeacons bool) (_ *rangeset.RangeSet, err error) {
	defer xerr.Contextf(&err, "coverage y=%d", y)

	C := rangeset.New()
	beacons := rangeset.New()
	for _, s := range sensorv {
		r, ok, err := s.Span(y)
		if err != nil {
			return nil, err
		}
		if ok {
			err = C.AddRange(r)
			if err != nil {
				return nil, err
			}
		}
		if s.Beacon.Y == y {
			err = beacons.Add(s.Beacon.X, s.Beacon.X)
			if err != nil {
				return nil, err
			}
		}
	}

	if includeBeacons || C.Empty() || beacons.Empty() {
		return C, nil
	}

	// C \ beacons  =  C ∩ ¬beacons
	rv := C.Ranges()
	notBeacons := beacons.Invert(rv[0].Lo, rv[len(rv)-1].Hi)
	return C.Intersection(notBeacons), nil
}

// TuningFrequency returns c.X*multiplier + c.Y.
func TuningFrequency(c Coord, multiplier int64) (int64, error) {
	f, ok := overflow.Mul64(c.X, multiplier)
	if ok {
		f, ok = overflow.Add64(f, c.Y)
	}
	if !ok {
		return 0, errors.Errorf("tuning frequency %s*%d: integer overflow", c, multiplier)
	}
	return f, nil
}


// reportInt matches integers in a report line.
var reportInt = regexp.MustCompile(`-?\d+`)

// ParseReport reads sensor report.
//
// Every non-empty line of the report describes one sensor with 4 integers -
// sensor x and y, and beacon x and y, e.g.
//
//	Sensor at x=2, y=18: closest beacon is at x=-2, y=15
//
// Text around the integers is ignored.
func ParseReport(r io.Reader) (_ []Sensor, err error) {
	defer xerr.Context(&err, "parse report")

	var sensorv []Sensor
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := s.Text()
		if len(line) == 0 {
			continue
		}

		numv := reportInt.FindAllString(line, -1)
		if len(numv) != 4 {
			return nil, errors.Wrapf(ErrBadReport, "line %d: need 4 integers, have %d", n, len(numv))
		}
		var xv [4]int64
		for i, num := range numv {
			xv[i], err = strconv.ParseInt(num, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrBadReport, "line %d: %s", n, err)
			}
		}

		sensor, err := NewSensor(Coord{xv[0], xv[1]}, Coord{xv[2], xv[3]})
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", n)
		}
		sensorv = append(sensorv, sensor)
	}

	if err := s.Err(); err != nil {
		return nil, err
	}
	return sensorv, nil
}
