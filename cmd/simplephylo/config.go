package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// defaultConfigFile is read when --config isn't given. It's fine if it
// doesn't exist.
const defaultConfigFile = "simplephylo.toml"

type config struct {
	Aligner alignerConfig `toml:"aligner"`
	Output  outputConfig  `toml:"output"`

	// Goroutines used to compute distances.
	Workers int `toml:"workers"`
}

type alignerConfig struct {
	Path    string   `toml:"path"`
	Args    []string `toml:"args"`
	Timeout duration `toml:"timeout"`
}

type outputConfig struct {
	Dir       string `toml:"dir"`
	Precision int    `toml:"precision"`
	Columns   int    `toml:"columns"`

	// Columns of tree drawings.
	Width int `toml:"width"`
}

// duration is a time.Duration written as a string like "90s" in TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() config {
	return config{
		Aligner: alignerConfig{
			Path:    "muscle",
			Timeout: duration{5 * time.Minute},
		},
		Output: outputConfig{
			Dir:       "output",
			Precision: -1,
			Columns:   60,
			Width:     80,
		},
		Workers: 1,
	}
}

// loadConfig reads a TOML configuration file on top of the defaults. When
// path is empty, the default file is read if it exists. Unknown keys are
// an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return config{}, fmt.Errorf("config %s: unknown keys: %s",
			path, strings.Join(keys, ", "))
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Output.Width < 1 {
		return config{}, fmt.Errorf("config %s: drawing width must be "+
			"positive", path)
	}
	if cfg.Aligner.Timeout.Duration < 0 {
		return config{}, fmt.Errorf("config %s: negative aligner timeout",
			path)
	}
	return cfg, nil
}
