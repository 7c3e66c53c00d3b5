package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/digital-codex/jlox/lox"
)

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), configFileName), `
[interpreter]
recursion_limit = 64

[log]
verbosity = 2
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Interpreter.RecursionLimit != 64 || cfg.Interpreter.StepQuota != 0 {
		t.Fatalf("unexpected interpreter config: %#v", cfg.Interpreter)
	}
	if cfg.Log.Verbosity != 2 {
		t.Fatalf("unexpected log config: %#v", cfg.Log)
	}
	if cfg.REPL.Prompt != "> " || cfg.REPL.HistorySize != 200 {
		t.Fatalf("repl defaults lost: %#v", cfg.REPL)
	}
	if cfg.source != path {
		t.Fatalf("source = %q, want %q", cfg.source, path)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), configFileName), "[interpreter]\nrecursion_depth = 3\n")

	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "interpreter.recursion_depth") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigRejectsNegativeLimits(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), configFileName), "[interpreter]\nstep_quota = -1\n")

	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "step_quota") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadConfigRejectsRecursionLimitAboveMaximum(t *testing.T) {
	content := fmt.Sprintf("[interpreter]\nrecursion_limit = %d\n", lox.MaxRecursionLimit+1)
	path := writeFile(t, filepath.Join(t.TempDir(), configFileName), content)

	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "recursion_limit must not exceed") {
		t.Fatalf("expected maximum recursion limit error, got %v", err)
	}
}

func TestRunCommandRejectsRecursionLimitFlagAboveMaximum(t *testing.T) {
	scriptPath := writeScript(t, `print 1;`)
	limit := strconv.Itoa(lox.MaxRecursionLimit + 1)

	err := runCommand([]string{"-recursion-limit", limit, scriptPath})
	if code := exitCode(err); code != exitUsage {
		t.Fatalf("expected exit code %d, got %d (%v)", exitUsage, code, err)
	}
}

func TestLoadConfigSyntaxError(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), configFileName), "[interpreter\n")

	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestFindAndLoadConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configFileName), "[repl]\nprompt = \"lox> \"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, err := findAndLoadConfig(nested)
	if err != nil {
		t.Fatalf("findAndLoadConfig: %v", err)
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Fatalf("unexpected prompt %q", cfg.REPL.Prompt)
	}
}

func TestCommonFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "custom.toml"), "[log]\nverbosity = 2\nfile = \"from-file.log\"\n")
	logPath := filepath.Join(dir, "flag.log")

	common := commonFlags{configPath: path, verbosity: 0, logFile: logPath}
	cfg, err := common.load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Verbosity != 0 || cfg.Log.File != logPath {
		t.Fatalf("flags did not override file: %#v", cfg.Log)
	}
}

func TestEngineConfigCarriesBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Interpreter.RecursionLimit = 7
	cfg.Interpreter.StepQuota = 9
	var out bytes.Buffer

	engineCfg := cfg.engineConfig(&out, nil)
	if engineCfg.RecursionLimit != 7 || engineCfg.StepQuota != 9 || engineCfg.Stdout != &out {
		t.Fatalf("unexpected engine config: %#v", engineCfg)
	}
}
