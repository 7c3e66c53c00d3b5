package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/digital-codex/jlox/conformance"
	"github.com/digital-codex/jlox/scriptindex"
)

var (
	testPassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	testFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// testCommand runs conformance cases from .lox scripts, directories of
// scripts, YAML suites or a script index.
func testCommand(args []string) error {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	indexPath := fs.String("index", "", "run the scripts listed in this index file")
	pattern := fs.String("run", "", "only run cases whose name matches this regular expression")
	verbose := fs.Bool("verbose", false, "list passing cases too")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox test: %v", err)
	}

	var filter *regexp.Regexp
	if *pattern != "" {
		re, err := regexp.Compile(*pattern)
		if err != nil {
			return usageErrorf("lox test: invalid -run pattern: %v", err)
		}
		filter = re
	}

	cfg, err := common.load(".")
	if err != nil {
		return err
	}

	cases, err := collectCases(fs.Args(), *indexPath)
	if err != nil {
		return err
	}
	if filter != nil {
		kept := cases[:0]
		for _, c := range cases {
			if filter.MatchString(c.Name) {
				kept = append(kept, c)
			}
		}
		cases = kept
	}
	if len(cases) == 0 {
		return usageErrorf("lox test: no cases found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := conformance.RunAll(ctx, cfg.engineConfig(nil, nil), cases)
	if err := report.Write(os.Stdout, *verbose); err != nil {
		return err
	}
	if !report.OK() {
		fmt.Println(testFailStyle.Render("FAIL"))
		return &exitError{code: 1, err: fmt.Errorf("%d case(s) failed", report.Failed), reported: true}
	}
	fmt.Println(testPassStyle.Render("ok"))
	return nil
}

func collectCases(targets []string, indexPath string) ([]conformance.Case, error) {
	if indexPath != "" {
		idx, err := scriptindex.Read(indexPath)
		if err != nil {
			return nil, err
		}
		targets = append(targets, idx.Paths()...)
	}
	if len(targets) == 0 {
		return nil, usageErrorf("Usage: lox test [flags] <path>...")
	}
	var cases []conformance.Case
	for _, target := range targets {
		loaded, err := conformance.Load(target)
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}
	log.Infof("loaded %d case(s)", len(cases))
	return cases, nil
}
