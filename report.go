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

package main
// output formatting

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"lab.nexedi.com/kirr/rangecov/internal/rangeset"
)

// rangeRow is one range of positions on a row.
type rangeRow struct {
	Y   int64 `yaml:"y"   csv:"y"`
	Lo  int64 `yaml:"lo"  csv:"lo"`
	Hi  int64 `yaml:"hi"  csv:"hi"`
	Len int64 `yaml:"len" csv:"len"`
}

// coverageReport is the result of count and gaps.
type coverageReport struct {
	What   string     `yaml:"what"`  // covered | uncovered
	Y      int64      `yaml:"y"`
	Count  int64      `yaml:"count"`
	Ranges []rangeRow `yaml:"ranges"`
}

// locateReport is the result of locate.
type locateReport struct {
	X         int64 `yaml:"x"         csv:"x"`
	Y         int64 `yaml:"y"         csv:"y"`
	Frequency int64 `yaml:"frequency" csv:"frequency"`
}

func newCoverageReport(what string, y, count int64, rangev []rangeset.Range) (*coverageReport, error) {
	rep := &coverageReport{What: what, Y: y, Count: count, Ranges: []rangeRow{}}
	for _, r := range rangev {
		l, err := r.Len()
		if err != nil {
			return nil, err
		}
		rep.Ranges = append(rep.Ranges, rangeRow{Y: y, Lo: r.Lo, Hi: r.Hi, Len: l})
	}
	return rep, nil
}

// writeCoverage writes rep to w in format.
//
// text format is
//
//	y=<y> <what>=<count>
//	[lo,hi]
//	...
//
// csv contains only the ranges.
func writeCoverage(w io.Writer, format string, rep *coverageReport) error {
	switch format {
	case "yaml":
		return writeYAML(w, rep)

	case "csv":
		return gocsv.Marshal(rep.Ranges, w)

	case "text":
		_, err := fmt.Fprintf(w, "y=%d %s=%d\n", rep.Y, rep.What, rep.Count)
		for _, r := range rep.Ranges {
			if err != nil {
				break
			}
			_, err = fmt.Fprintf(w, "%s\n", rangeset.Range{Lo: r.Lo, Hi: r.Hi})
		}
		return err
	}
	return eINVALf("unknown format %q", format)
}

// writeLocate writes rep to w in format.
func writeLocate(w io.Writer, format string, rep locateReport) error {
	switch format {
	case "yaml":
		return writeYAML(w, rep)

	case "csv":
		return gocsv.Marshal([]locateReport{rep}, w)

	case "text":
		_, err := fmt.Fprintf(w, "position (%d,%d)\nfrequency %d\n", rep.X, rep.Y, rep.Frequency)
		return err
	}
	return eINVALf("unknown format %q", format)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(v)
	if err != nil {
		return err
	}
	return enc.Close()
}
