package conformance

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/digital-codex/jlox/scriptindex"
)

// Case is one program together with what running it must produce.
type Case struct {
	Name         string        `yaml:"name"`
	Source       string        `yaml:"source"`
	Stdout       []string      `yaml:"stdout,omitempty"`
	RuntimeError *RuntimeError `yaml:"runtime_error,omitempty"`
	StaticErrors []string      `yaml:"static_errors,omitempty"`

	// Path is the file the case was loaded from.
	Path string `yaml:"-"`
}

type RuntimeError struct {
	Message string `yaml:"message"`
	Line    int    `yaml:"line"`
}

type suiteFile struct {
	Cases []Case `yaml:"cases"`
}

var (
	expectOutputPattern  = regexp.MustCompile(`// expect: ?(.*)`)
	expectRuntimePattern = regexp.MustCompile(`// expect runtime error: (.+)`)
	expectLinePattern    = regexp.MustCompile(`// \[(?:java )?line (\d+)\] (Error.*)`)
	expectErrorPattern   = regexp.MustCompile(`// (Error.*)`)
)

// LoadScript reads a .lox file whose expectations are written as
// comments on the lines that produce them.
func LoadScript(path string) (Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Case{}, fmt.Errorf("conformance: %w", err)
	}
	c, err := ParseScript(filepath.ToSlash(path), string(data))
	if err != nil {
		return Case{}, err
	}
	c.Path = path
	return c, nil
}

// ParseScript extracts expectations from source. Static errors without an
// explicit line take the line of their comment.
func ParseScript(name, source string) (Case, error) {
	c := Case{Name: name, Source: source}

	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		if m := expectOutputPattern.FindStringSubmatch(text); m != nil {
			c.Stdout = append(c.Stdout, m[1])
			continue
		}
		if m := expectRuntimePattern.FindStringSubmatch(text); m != nil {
			if c.RuntimeError != nil {
				return Case{}, fmt.Errorf("conformance: %s:%d: more than one expected runtime error", name, line)
			}
			c.RuntimeError = &RuntimeError{Message: m[1], Line: line}
			continue
		}
		if m := expectLinePattern.FindStringSubmatch(text); m != nil {
			c.StaticErrors = append(c.StaticErrors, fmt.Sprintf("[line %s] %s", m[1], m[2]))
			continue
		}
		if m := expectErrorPattern.FindStringSubmatch(text); m != nil {
			c.StaticErrors = append(c.StaticErrors, fmt.Sprintf("[line %d] %s", line, m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		return Case{}, fmt.Errorf("conformance: %s: %w", name, err)
	}
	if c.RuntimeError != nil && len(c.StaticErrors) > 0 {
		return Case{}, fmt.Errorf("conformance: %s: cannot expect both static and runtime errors", name)
	}
	return c, nil
}

// LoadSuite reads a YAML suite. Unknown keys are rejected so typos in
// expectations do not silently pass.
func LoadSuite(path string) ([]Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conformance: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var suite suiteFile
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("conformance: parse %s: %w", path, err)
	}
	for i := range suite.Cases {
		c := &suite.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("%s#%d", filepath.Base(path), i+1)
		}
		if c.RuntimeError != nil && c.RuntimeError.Message == "" {
			return nil, fmt.Errorf("conformance: %s: runtime_error needs a message", c.Name)
		}
		c.Path = path
	}
	return suite.Cases, nil
}

// Load gathers cases from a suite file, a script, or a directory crawled
// for scripts.
func Load(path string) ([]Case, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadSuite(path)
	}

	paths, err := scriptindex.Crawl(path, scriptindex.IsScript)
	if err != nil {
		return nil, err
	}
	cases := make([]Case, 0, len(paths))
	for _, p := range paths {
		c, err := LoadScript(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	log.Debugf("loaded %d cases from %s", len(cases), path)
	return cases, nil
}
