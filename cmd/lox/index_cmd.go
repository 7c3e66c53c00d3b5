package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/digital-codex/jlox/scriptindex"
)

// indexCommand writes a CBOR index of the scripts under the given roots,
// or with -list prints an existing one.
func indexCommand(args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	output := fs.String("o", "", "index file to write")
	list := fs.String("list", "", "print the entries of an existing index file")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox index: %v", err)
	}
	if _, err := common.load("."); err != nil {
		return err
	}

	if *list != "" {
		idx, err := scriptindex.Read(*list)
		if err != nil {
			return err
		}
		for _, entry := range idx.Entries {
			fmt.Printf("%s\t%s\n", entry.Name, entry.Path)
		}
		return nil
	}

	roots := fs.Args()
	if *output == "" || len(roots) == 0 {
		return usageErrorf("Usage: lox index -o <file> <dir>...")
	}
	paths, err := scriptindex.FindScripts(roots...)
	if err != nil {
		return err
	}
	idx := scriptindex.Build(paths)
	if err := scriptindex.Write(*output, idx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "indexed %d script(s)\n", len(idx.Entries))
	return nil
}
