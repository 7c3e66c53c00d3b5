package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/digital-codex/jlox/scriptindex"
)

func fmtCommand(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	write := fs.Bool("w", false, "write result to source files instead of stdout")
	check := fs.Bool("check", false, "fail if any source file needs formatting")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox fmt: %v", err)
	}

	targets := fs.Args()
	if len(targets) == 0 {
		return usageErrorf("lox fmt: path required")
	}

	files, err := collectLoxFiles(targets)
	if err != nil {
		return err
	}

	changedCount := 0
	for _, path := range files {
		originalBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		original := string(originalBytes)
		formatted := formatLoxSource(original)
		changed := formatted != original
		if changed {
			changedCount++
			log.Debugf("%s needs formatting", path)
		}

		switch {
		case *write && changed:
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		case !*write && !*check:
			fmt.Print(formatted)
		}
	}

	if *check && changedCount > 0 {
		return fmt.Errorf("lox fmt: %d file(s) need formatting", changedCount)
	}
	return nil
}

// collectLoxFiles expands targets into a sorted, de-duplicated list of
// absolute .lox paths.
func collectLoxFiles(targets []string) ([]string, error) {
	found, err := scriptindex.FindScripts(targets...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(found))
	files := make([]string, 0, len(found))
	for _, path := range found {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

// formatLoxSource normalizes line endings, strips trailing blanks and
// leaves exactly one final newline.
func formatLoxSource(source string) string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	joined := strings.Join(lines, "\n")
	joined = strings.TrimRight(joined, "\n")
	return joined + "\n"
}
