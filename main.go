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

// Program rangecov reports which grid positions a set of sensors can see.
//
// Intro
//
// Every sensor reports its own position and the position of the closest
// beacon it detected, e.g.
//
//	Sensor at x=2, y=18: closest beacon is at x=-2, y=15
//
// A sensor sees every position within Manhattan distance to its beacon. On a
// single row y the positions seen by one sensor form one closed x range, and
// the positions seen by all sensors are kept in a range set: memory stays
// proportional to the number of ranges, not to the width of the row, so rows
// millions of positions wide are cheap.
//
//
// Commands
//
//	rangecov count  <report>	; positions on row where a beacon cannot be
//	rangecov gaps   <report>	; positions on row in [lo,hi] no sensor sees
//	rangecov locate <report>	; first position in [lo,hi]x[lo,hi] no sensor sees
//
// <report> is a file name, or - for stdin.
//
//
// Configuration
//
// Parameters come from command-line flags, RANGECOV_* environment variables
// and an optional YAML file given via --config, in that order of priority:
//
//	row:        2000000		; row for count and gaps
//	lo:         0			; search area
//	hi:         4000000
//	multiplier: 4000000		; tuning frequency = x*multiplier + y
//	workers:    <ncpu>		; parallel row bands for locate
//	format:     text		; text | yaml | csv
//
// glog flags (-v, -logtostderr, ...) are accepted as well.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lab.nexedi.com/kirr/go123/xerr"
	"lab.nexedi.com/kirr/go123/xruntime/race"

	"lab.nexedi.com/kirr/rangecov/internal/rangeset"
	"lab.nexedi.com/kirr/rangecov/internal/sensor"
)

func main() {
	log.CopyStandardLogTo("WARNING")
	// glog complains when logging happens before flag.CommandLine is parsed;
	// the real parsing is done by cobra.
	flag.CommandLine.Parse(nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCommand().ExecuteContext(ctx)
	cancel()

	code := err2ExitCode(err)
	log.Flush()
	os.Exit(code)
}

// app is the state shared by rangecov commands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        Config
}

// newCommand returns rangecov command with all subcommands attached.
func newCommand() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:   "rangecov",
		Short: "report positions covered by sensors",

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, argv []string) (err error) {
			a.cfg, err = loadConfig(a.v, a.configFile)
			if err != nil {
				return err
			}
			gover := "(built with " + runtime.Version()
			if race.Enabled {
				gover += " -race"
			}
			gover += ")"
			log.V(1).Infof("%s %+v %s", cmd.Name(), a.cfg, gover)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML configuration file")
	pf.Int64("row", defaultRow, "row for count and gaps")
	pf.Int64("lo", defaultLo, "lower bound of the search area")
	pf.Int64("hi", defaultHi, "upper bound of the search area")
	pf.Int64("multiplier", defaultMultiplier, "tuning frequency multiplier")
	pf.Int("workers", runtime.NumCPU(), "parallel row bands for locate")
	pf.String("format", "text", "output format: text, yaml or csv")
	for _, key := range configKeys {
		err := a.v.BindPFlag(key, pf.Lookup(key))
		if err != nil {
			panic(err) // flags are defined right above
		}
	}
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		&cobra.Command{
			Use:   "count <report>",
			Short: "count positions on row where a beacon cannot be",
			Args:  exactArgs(1),
			RunE:  a.runCount,
		},
		&cobra.Command{
			Use:   "gaps <report>",
			Short: "list positions on row inside [lo,hi] that no sensor sees",
			Args:  exactArgs(1),
			RunE:  a.runGaps,
		},
		&cobra.Command{
			Use:   "locate <report>",
			Short: "find the first position inside [lo,hi]x[lo,hi] that no sensor sees",
			Args:  exactArgs(1),
			RunE:  a.runLocate,
		},
	)
	return root
}

// exactArgs is like cobra.ExactArgs but reports invalid argument.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, argv []string) error {
		if len(argv) != n {
			return eINVALf("%s: accepts %d arg(s), received %d", cmd.CommandPath(), n, len(argv))
		}
		return nil
	}
}

// runCount handles `rangecov count`.
func (a *app) runCount(cmd *cobra.Command, argv []string) (err error) {
	defer xerr.Contextf(&err, "count %s", argv[0])

	sensorv, err := a.readReport(cmd, argv[0])
	if err != nil {
		return err
	}
	C, err := sensor.Coverage(sensorv, a.cfg.Row, false)
	if err != nil {
		return err
	}
	n, err := C.CountAll()
	if err != nil {
		return err
	}
	rep, err := newCoverageReport("covered", a.cfg.Row, n, C.Ranges())
	if err != nil {
		return err
	}
	return writeCoverage(cmd.OutOrStdout(), a.cfg.Format, rep)
}

// runGaps handles `rangecov gaps`.
func (a *app) runGaps(cmd *cobra.Command, argv []string) (err error) {
	defer xerr.Contextf(&err, "gaps %s", argv[0])

	sensorv, err := a.readReport(cmd, argv[0])
	if err != nil {
		return err
	}
	C, err := sensor.Coverage(sensorv, a.cfg.Row, true)
	if err != nil {
		return err
	}
	I := C.Invert(a.cfg.Lo, a.cfg.Hi)
	n, err := I.CountAll()
	if err != nil {
		return err
	}
	rep, err := newCoverageReport("uncovered", a.cfg.Row, n, I.Ranges())
	if err != nil {
		return err
	}
	return writeCoverage(cmd.OutOrStdout(), a.cfg.Format, rep)
}

// runLocate handles `rangecov locate`.
func (a *app) runLocate(cmd *cobra.Command, argv []string) (err error) {
	defer xerr.Contextf(&err, "locate %s", argv[0])

	sensorv, err := a.readReport(cmd, argv[0])
	if err != nil {
		return err
	}
	area := rangeset.Range{Lo: a.cfg.Lo, Hi: a.cfg.Hi}
	log.V(1).Infof("locate: %d sensors, area %s, %d workers", len(sensorv), area, a.cfg.Workers)

	c, err := sensor.Locate(cmd.Context(), sensorv, area, a.cfg.Workers)
	if err != nil {
		return err
	}
	f, err := sensor.TuningFrequency(c, a.cfg.Multiplier)
	if err != nil {
		return err
	}
	return writeLocate(cmd.OutOrStdout(), a.cfg.Format, locateReport{X: c.X, Y: c.Y, Frequency: f})
}

// readReport reads sensor report from file name, or from stdin if name is "-".
func (a *app) readReport(cmd *cobra.Command, name string) (_ []sensor.Sensor, err error) {
	if name == "-" {
		return sensor.ParseReport(cmd.InOrStdin())
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	xclose := func(c io.Closer) {
		err = xerr.First(err, c.Close())
	}
	defer xclose(f)

	return sensor.ParseReport(f)
}
