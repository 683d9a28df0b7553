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
// configuration

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultRow        = 2000000
	defaultLo         = 0
	defaultHi         = 4000000
	defaultMultiplier = 4000000
)

// configKeys lists keys that can be set via flags, environment and config file.
var configKeys = []string{"row", "lo", "hi", "multiplier", "workers", "format"}

// Config is rangecov configuration.
type Config struct {
	Row        int64  `mapstructure:"row"`
	Lo         int64  `mapstructure:"lo"`
	Hi         int64  `mapstructure:"hi"`
	Multiplier int64  `mapstructure:"multiplier"`
	Workers    int    `mapstructure:"workers"`
	Format     string `mapstructure:"format"`
}

// newViper returns viper preset with defaults and RANGECOV_* environment.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("row", defaultRow)
	v.SetDefault("lo", defaultLo)
	v.SetDefault("hi", defaultHi)
	v.SetDefault("multiplier", defaultMultiplier)
	v.SetDefault("format", "text")

	v.SetEnvPrefix("rangecov")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads configuration from v, after loading configFile into it if
// configFile != "".
func loadConfig(v *viper.Viper, configFile string) (cfg Config, err error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		err = v.ReadInConfig()
		if err != nil {
			return Config{}, eINVALf("config %s: %s", configFile, err)
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return Config{}, eINVALf("config: %s", err)
	}
	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks configuration for consistency.
func (cfg *Config) validate() error {
	if cfg.Lo > cfg.Hi {
		return eINVALf("config: lo (%d) > hi (%d)", cfg.Lo, cfg.Hi)
	}
	if cfg.Workers < 1 {
		return eINVALf("config: workers must be >= 1, have %d", cfg.Workers)
	}
	switch cfg.Format {
	case "text", "yaml", "csv":
	default:
		return eINVALf("config: unknown format %q", cfg.Format)
	}
	return nil
}
