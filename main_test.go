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

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"lab.nexedi.com/kirr/rangecov/internal/sensor"
)

const exampleReport = "testdata/example.txt"

// run runs rangecov with argv and returns its output.
func run(stdin string, argv ...string) (string, error) {
	cmd := newCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(argv)
	err := cmd.Execute()
	return out.String(), err
}

// writeFile writes data to file name inside t.TempDir and returns its path.
func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(data), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommands(t *testing.T) {
	testv := []struct {
		argv []string
		out  string
	}{
		{
			[]string{"count", "--row", "10", exampleReport},
			"y=10 covered=26\n[-2,1]\n[3,24]\n",
		},
		{
			[]string{"count", "--row", "1000", exampleReport},
			"y=1000 covered=0\n",
		},
		{
			[]string{"gaps", "--row", "11", "--lo", "0", "--hi", "20", exampleReport},
			"y=11 uncovered=1\n[14,14]\n",
		},
		{
			[]string{"gaps", "--row", "10", "--lo", "0", "--hi", "20", exampleReport},
			"y=10 uncovered=0\n",
		},
		{
			[]string{"gaps", "--row", "10", "--lo", "-5", "--hi", "30", exampleReport},
			"y=10 uncovered=9\n[-5,-3]\n[25,30]\n",
		},
		{
			[]string{"locate", "--lo", "0", "--hi", "20", "--workers", "3", exampleReport},
			"position (14,11)\nfrequency 56000011\n",
		},
		{
			[]string{"locate", "--lo", "0", "--hi", "20", "--multiplier", "10", exampleReport},
			"position (14,11)\nfrequency 151\n",
		},
		{
			[]string{"count", "--row", "10", "--format", "csv", exampleReport},
			"y,lo,hi,len\n10,-2,1,4\n10,3,24,22\n",
		},
		{
			[]string{"locate", "--lo", "0", "--hi", "20", "--format", "csv", exampleReport},
			"x,y,frequency\n14,11,56000011\n",
		},
	}

	for _, tt := range testv {
		out, err := run("", tt.argv...)
		if err != nil {
			t.Errorf("rangecov %s: %s", strings.Join(tt.argv, " "), err)
			continue
		}
		if out != tt.out {
			t.Errorf("rangecov %s:\nhave: %q\nwant: %q", strings.Join(tt.argv, " "), out, tt.out)
		}
	}
}

func TestCommandStdin(t *testing.T) {
	assert := require.New(t)
	report, err := os.ReadFile(exampleReport)
	assert.NoError(err)

	out, err := run(string(report), "count", "--row", "10", "-")
	assert.NoError(err)
	assert.Equal("y=10 covered=26\n[-2,1]\n[3,24]\n", out)
}

func TestCommandYAML(t *testing.T) {
	assert := require.New(t)

	out, err := run("", "count", "--row", "10", "--format", "yaml", exampleReport)
	assert.NoError(err)
	var rep coverageReport
	assert.NoError(yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(coverageReport{
		What:  "covered",
		Y:     10,
		Count: 26,
		Ranges: []rangeRow{
			{Y: 10, Lo: -2, Hi: 1, Len: 4},
			{Y: 10, Lo: 3, Hi: 24, Len: 22},
		},
	}, rep)

	out, err = run("", "locate", "--lo", "0", "--hi", "20", "--format", "yaml", exampleReport)
	assert.NoError(err)
	var loc locateReport
	assert.NoError(yaml.Unmarshal([]byte(out), &loc))
	assert.Equal(locateReport{X: 14, Y: 11, Frequency: 56000011}, loc)
}

func TestCommandConfig(t *testing.T) {
	assert := require.New(t)

	config := writeFile(t, "rangecov.yaml", "row: 11\nlo: 0\nhi: 20\nformat: csv\n")

	// config file
	out, err := run("", "gaps", "--config", config, exampleReport)
	assert.NoError(err)
	assert.Equal("y,lo,hi,len\n11,14,14,1\n", out)

	// flags override config file
	out, err = run("", "gaps", "--config", config, "--row", "10", "--format", "text", exampleReport)
	assert.NoError(err)
	assert.Equal("y=10 uncovered=0\n", out)

	// environment overrides config file
	t.Setenv("RANGECOV_FORMAT", "text")
	out, err = run("", "gaps", "--config", config, exampleReport)
	assert.NoError(err)
	assert.Equal("y=11 uncovered=1\n[14,14]\n", out)

	// ... and flags override environment
	t.Setenv("RANGECOV_ROW", "1000")
	out, err = run("", "count", exampleReport)
	assert.NoError(err)
	assert.Equal("y=1000 covered=0\n", out)
	out, err = run("", "count", "--row", "10", exampleReport)
	assert.NoError(err)
	assert.Equal("y=10 covered=26\n[-2,1]\n[3,24]\n", out)
}

func TestCommandErrors(t *testing.T) {
	badReport := writeFile(t, "bad.txt", "Sensor at x=1, y=2: closest beacon is at x=3\n")
	badConfig := writeFile(t, "bad.yaml", "row: [1, 2\n")

	testv := []struct {
		argv []string
		code int
	}{
		{[]string{"count"}, exitInvalid},
		{[]string{"count", "a", "b"}, exitInvalid},
		{[]string{"gaps", "--lo", "5", "--hi", "4", exampleReport}, exitInvalid},
		{[]string{"locate", "--workers", "0", exampleReport}, exitInvalid},
		{[]string{"count", "--format", "xml", exampleReport}, exitInvalid},
		{[]string{"count", "--config", badConfig, exampleReport}, exitInvalid},
		{[]string{"count", badReport}, exitInvalid},
		{[]string{"count", filepath.Join(t.TempDir(), "nonexistent")}, exitFailure},
		{[]string{"locate", "--lo", "-1", "--hi", "0", exampleReport}, exitFailure}, // everything is covered
	}

	for _, tt := range testv {
		_, err := run("", tt.argv...)
		if err == nil {
			t.Errorf("rangecov %s: no error", strings.Join(tt.argv, " "))
			continue
		}
		if code := err2ExitCode(err); code != tt.code {
			t.Errorf("rangecov %s: %s\nexit code: %d  ; want %d", strings.Join(tt.argv, " "), err, code, tt.code)
		}
	}
}

func TestErr2ExitCode(t *testing.T) {
	testv := []struct {
		err  error
		code int
	}{
		{nil, exitOK},
		{context.Canceled, exitCanceled},
		{errors.Wrap(context.Canceled, "locate"), exitCanceled},
		{eINVALf("bad %d", 1), exitInvalid},
		{errors.WithMessage(eINVALf("bad"), "context"), exitInvalid},
		{errors.Wrap(sensor.ErrBadReport, "line 3"), exitInvalid},
		{sensor.ErrNotFound, exitFailure},
		{errors.New("disk on fire"), exitFailure},
	}
	for _, tt := range testv {
		if code := err2ExitCode(tt.err); code != tt.code {
			t.Errorf("err2ExitCode(%v) = %d  ; want %d", tt.err, code, tt.code)
		}
	}
}
