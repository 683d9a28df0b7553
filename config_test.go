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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	assert := require.New(t)

	v := newViper()
	v.SetDefault("workers", 4)
	cfg, err := loadConfig(v, "")
	assert.NoError(err)
	assert.Equal(Config{
		Row:        2000000,
		Lo:         0,
		Hi:         4000000,
		Multiplier: 4000000,
		Workers:    4,
		Format:     "text",
	}, cfg)
}

func TestConfigValidate(t *testing.T) {
	ok := Config{Lo: 0, Hi: 20, Workers: 1, Format: "text"}

	testv := []struct {
		modify func(cfg *Config)
		ok     bool
	}{
		{func(cfg *Config) {}, true},
		{func(cfg *Config) { cfg.Lo, cfg.Hi = 7, 7 }, true},
		{func(cfg *Config) { cfg.Lo, cfg.Hi = 8, 7 }, false},
		{func(cfg *Config) { cfg.Workers = 0 }, false},
		{func(cfg *Config) { cfg.Format = "yaml" }, true},
		{func(cfg *Config) { cfg.Format = "csv" }, true},
		{func(cfg *Config) { cfg.Format = "" }, false},
		{func(cfg *Config) { cfg.Format = "json" }, false},
	}

	for _, tt := range testv {
		cfg := ok
		tt.modify(&cfg)
		err := cfg.validate()
		if tt.ok {
			if err != nil {
				t.Errorf("%+v: unexpected error: %s", cfg, err)
			}
			continue
		}

		var einval *eInvalError
		if !errors.As(err, &einval) {
			t.Errorf("%+v: error %v  ; want invalid argument", cfg, err)
		}
	}
}

func TestConfigFile(t *testing.T) {
	assert := require.New(t)

	config := writeFile(t, "rangecov.yaml", "row: 10\nworkers: 2\nmultiplier: 10\n")
	cfg, err := loadConfig(newViper(), config)
	assert.NoError(err)
	assert.Equal(Config{Row: 10, Lo: 0, Hi: 4000000, Multiplier: 10, Workers: 2, Format: "text"}, cfg)

	_, err = loadConfig(newViper(), config+".nonexistent")
	var einval *eInvalError
	assert.True(errors.As(err, &einval), "err: %v", err)
}
