package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/digital-codex/jlox/lox"
)

const configFileName = "lox.toml"

// fileConfig mirrors lox.toml.
type fileConfig struct {
	Interpreter interpreterConfig `toml:"interpreter"`
	Log         logConfig         `toml:"log"`
	REPL        replConfig        `toml:"repl"`

	// source is the file the configuration was read from, empty for
	// defaults.
	source string
}

type interpreterConfig struct {
	RecursionLimit int `toml:"recursion_limit"`
	StepQuota      int `toml:"step_quota"`
}

type logConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type replConfig struct {
	Prompt      string `toml:"prompt"`
	HistorySize int    `toml:"history_size"`
}

func defaultConfig() fileConfig {
	return fileConfig{
		REPL: replConfig{Prompt: "> ", HistorySize: 200},
	}
}

// loadConfig reads a lox.toml file. Keys the file does not set keep their
// defaults; unknown keys are rejected.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return fileConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.source = path
	return cfg, nil
}

// findAndLoadConfig walks up from startDir looking for lox.toml. Without
// one the defaults are returned.
func findAndLoadConfig(startDir string) (fileConfig, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return fileConfig{}, err
	}
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return loadConfig(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return defaultConfig(), nil
		}
		dir = parent
	}
}

func (c fileConfig) validate() error {
	if c.Interpreter.RecursionLimit < 0 {
		return fmt.Errorf("interpreter.recursion_limit must not be negative")
	}
	if c.Interpreter.RecursionLimit > lox.MaxRecursionLimit {
		return fmt.Errorf("interpreter.recursion_limit must not exceed %d", lox.MaxRecursionLimit)
	}
	if c.Interpreter.StepQuota < 0 {
		return fmt.Errorf("interpreter.step_quota must not be negative")
	}
	if c.REPL.HistorySize < 0 {
		return fmt.Errorf("repl.history_size must not be negative")
	}
	return nil
}

func (c fileConfig) engineConfig(stdout io.Writer, reporter lox.Reporter) lox.Config {
	return lox.Config{
		RecursionLimit: c.Interpreter.RecursionLimit,
		StepQuota:      c.Interpreter.StepQuota,
		Stdout:         stdout,
		Reporter:       reporter,
	}
}
