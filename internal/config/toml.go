// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/salesdash/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data      DataConfig      `toml:"data"`
	Filters   FiltersConfig   `toml:"filters"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// DataConfig selects where records are loaded from.
type DataConfig struct {
	Path   *string `toml:"path"`
	Source *string `toml:"source"`
	DB     *string `toml:"db"`
}

// FiltersConfig holds the criteria applied when no flag overrides them.
type FiltersConfig struct {
	Year     *int     `toml:"year"`
	Month    []string `toml:"month"`
	Quarter  *string  `toml:"quarter"`
	Day      []string `toml:"day"`
	Season   *string  `toml:"season"`
	Category []string `toml:"category"`
	Size     []string `toml:"size"`
}

// DashboardConfig maps display settings.
type DashboardConfig struct {
	Page *string `toml:"page"`
	View *string `toml:"view"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Inputs returns the configured filters as raw control input keyed by dimension.
func (f FiltersConfig) Inputs() map[model.Dimension][]string {
	out := make(map[model.Dimension][]string)
	if f.Year != nil {
		out[model.DimYear] = []string{strconv.Itoa(*f.Year)}
	}
	if f.Quarter != nil {
		out[model.DimQuarter] = []string{*f.Quarter}
	}
	if f.Season != nil {
		out[model.DimSeason] = []string{*f.Season}
	}
	lists := map[model.Dimension][]string{
		model.DimMonth:    f.Month,
		model.DimDay:      f.Day,
		model.DimCategory: f.Category,
		model.DimSize:     f.Size,
	}
	for d, values := range lists {
		if len(values) > 0 {
			out[d] = values
		}
	}
	return out
}
