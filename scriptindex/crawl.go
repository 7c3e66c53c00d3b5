package scriptindex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lox.index")

// MatchFunc decides whether a regular file found by Crawl is kept.
type MatchFunc func(path string) bool

// IsScript matches files with a .lox extension.
func IsScript(path string) bool {
	return filepath.Ext(path) == ".lox"
}

// Crawl walks root breadth-first and returns the files accepted by match.
// A root that is itself a file is tested directly. Entries within a
// directory are visited in lexical order, so the result is stable.
// Symbolic links below root are followed to files but never to
// directories.
func Crawl(root string, match MatchFunc) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scriptindex: %w", err)
	}
	if !info.IsDir() {
		if match(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var matches []string
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != root {
			info, err = os.Lstat(current)
			if err != nil {
				return nil, fmt.Errorf("scriptindex: %w", err)
			}
			if info.Mode()&os.ModeSymlink != 0 {
				target, err := os.Stat(current)
				if err != nil {
					log.Warningf("skipping broken link %s: %v", current, err)
					continue
				}
				if target.IsDir() {
					log.Debugf("skipping linked directory %s", current)
					continue
				}
				info = target
			}
		}
		if !info.IsDir() {
			if match(current) {
				log.Debugf("matched %s", current)
				matches = append(matches, current)
			}
			continue
		}

		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, fmt.Errorf("scriptindex: %w", err)
		}
		for _, entry := range entries {
			queue = append(queue, filepath.Join(current, entry.Name()))
		}
	}
	return matches, nil
}

// FindScripts crawls every root for Lox scripts, preserving root order.
func FindScripts(roots ...string) ([]string, error) {
	var paths []string
	for _, root := range roots {
		found, err := Crawl(root, IsScript)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
