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

package sensor
// search for uncovered position

import (
	"context"
	"sync"

	"github.com/johncgriffin/overflow"
	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/go123/xerr"
	"lab.nexedi.com/kirr/go123/xsync"

	"lab.nexedi.com/kirr/rangecov/internal/rangeset"
)

// Locate finds position inside area×area that no sensor sees.
//
// area gives the bounds for both x and y. Rows are split into nworkers bands
// that are scanned in parallel. If several positions are uncovered, the one
// with the smallest y, and then smallest x, is returned. ErrNotFound is
// returned if every position is covered.
//
// Beacons count as covered: the position being searched for is the one of a
// beacon that none of the sensors has detected.
func Locate(ctx context.Context, sensorv []Sensor, area rangeset.Range, nworkers int) (_ Coord, err error) {
	defer xerr.Contextf(&err, "locate in %s", area)

	if !area.Valid() {
		return Coord{}, errors.Wrapf(rangeset.ErrInvalidRange, "area %s", area)
	}
	size, err := area.Len()
	if err != nil {
		return Coord{}, err
	}
	if nworkers < 1 {
		nworkers = 1
	}

	// rows per band
	band := size / int64(nworkers)
	if size%int64(nworkers) != 0 {
		band++
	}

	var (
		mu    sync.Mutex
		found bool
		best  Coord
	)
	// pending returns whether row y can still give better result.
	pending := func(y int64) bool {
		mu.Lock()
		defer mu.Unlock()
		return !found || y < best.Y
	}

	// scan scans rows [lo, hi] in order and stops at the first uncovered one.
	scan := func(ctx context.Context, rows rangeset.Range) error {
		for y := rows.Lo; ; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !pending(y) {
				return nil
			}

			C, err := Coverage(sensorv, y, true)
			if err != nil {
				return err
			}
			n, err := C.Count(area.Lo, area.Hi)
			if err != nil {
				return err
			}
			if n < size {
				x := C.Invert(area.Lo, area.Hi).Ranges()[0].Lo
				mu.Lock()
				if !found || y < best.Y {
					found = true
					best = Coord{x, y}
				}
				mu.Unlock()
				return nil
			}

			if y == rows.Hi {
				return nil
			}
		}
	}

	wg := xsync.NewWorkGroup(ctx)
	for lo := area.Lo; ; {
		hi, ok := overflow.Add64(lo, band-1)
		if !ok || hi > area.Hi {
			hi = area.Hi
		}
		rows := rangeset.Range{Lo: lo, Hi: hi}
		wg.Go(func(ctx context.Context) error {
			return scan(ctx, rows)
		})
		if hi == area.Hi {
			break
		}
		lo = hi + 1
	}

	err = wg.Wait()
	if err != nil {
		return Coord{}, err
	}
	if !found {
		return Coord{}, ErrNotFound
	}
	return best, nil
}
