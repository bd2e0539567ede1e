// cmd/atlasd/config.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import "github.com/spf13/viper"

// fileConfig is the shape of an optional atlasd config file (YAML,
// TOML, or JSON; viper infers the format from the file extension). Any
// field left unset falls back to whatever the corresponding command
// line flag already defaulted to.
type fileConfig struct {
	NavData       string `mapstructure:"navdata"`
	Scenery       string `mapstructure:"scenery"`
	RsyncServer   string `mapstructure:"rsync_server"`
	MapExecutable string `mapstructure:"map_bin"`
	FGRoot        string `mapstructure:"fg_root"`
	AtlasRoot     string `mapstructure:"atlas_root"`
	MapSize       int    `mapstructure:"map_size"`
	LowresMapSize int    `mapstructure:"lowres_map_size"`
	LogLevel      string `mapstructure:"log_level"`
	LogDir        string `mapstructure:"log_dir"`
}

// loadFileConfig reads path (if non-empty) into a fileConfig. A zero
// value is returned, not an error, for an empty path so callers can
// unconditionally call this and only check the error when a path was
// actually given.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
