package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/digital-codex/jlox/lox"
)

// Exit codes follow the sysexits convention used by the classic jlox
// driver.
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
)

var log = commonlog.GetLogger("lox.cli")

// exitError carries a process exit code. Errors already shown to the user
// through the Reporter are marked reported so main does not print them
// twice.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func main() {
	if err := runCLI(os.Args); err != nil {
		code := 1
		var exit *exitError
		if errors.As(err, &exit) {
			code = exit.code
			if exit.reported {
				os.Exit(code)
			}
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return replCommand(nil)
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "ast":
		return astCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "test":
		return testCommand(args[2:])
	case "index":
		return indexCommand(args[2:])
	case "lsp":
		return lspCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		if len(args) == 2 && strings.HasSuffix(args[1], ".lox") {
			return runCommand(args[1:])
		}
		return usageError()
	}
}

// commonFlags are accepted by every subcommand that executes or inspects
// scripts.
type commonFlags struct {
	configPath string
	verbosity  int
	logFile    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to lox.toml (default: search upward from the script)")
	fs.IntVar(&c.verbosity, "v", -1, "log verbosity, 2 for debug (default: from config)")
	fs.StringVar(&c.logFile, "log", "", "write logs to this file instead of stderr")
}

// load resolves the effective configuration for a script in dir and
// configures logging from it. Flags win over file values.
func (c *commonFlags) load(dir string) (fileConfig, error) {
	var cfg fileConfig
	var err error
	if c.configPath != "" {
		cfg, err = loadConfig(c.configPath)
	} else {
		cfg, err = findAndLoadConfig(dir)
	}
	if err != nil {
		return fileConfig{}, err
	}
	if c.verbosity >= 0 {
		cfg.Log.Verbosity = c.verbosity
	}
	if c.logFile != "" {
		cfg.Log.File = c.logFile
	}
	configureLogging(cfg.Log)
	if cfg.source != "" {
		log.Debugf("loaded config %s", cfg.source)
	}
	return cfg, nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	recursionLimit := fs.Int("recursion-limit", 0, "maximum call depth before a stack overflow")
	stepQuota := fs.Int("step-quota", 0, "maximum executed statements (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox run: %v", err)
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		return usageErrorf("Usage: lox run [flags] <script>")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	cfg, err := common.load(filepath.Dir(scriptPath))
	if err != nil {
		return err
	}
	if *recursionLimit > 0 {
		cfg.Interpreter.RecursionLimit = *recursionLimit
	}
	if *stepQuota > 0 {
		cfg.Interpreter.StepQuota = *stepQuota
	}
	if err := cfg.validate(); err != nil {
		return usageErrorf("lox run: %v", err)
	}

	engine, err := lox.NewEngine(cfg.engineConfig(os.Stdout, lox.WriterReporter{W: os.Stderr}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runSource(ctx, engine, string(input))
}

// runSource maps the outcome of a run onto the driver's exit codes.
func runSource(ctx context.Context, engine *lox.Engine, source string) error {
	log.Debugf("compiling %d bytes", len(source))
	script, err := engine.Compile(source)
	if err != nil {
		if lox.IsCompileError(err) {
			return &exitError{code: exitDataErr, err: err, reported: true}
		}
		return err
	}
	log.Debugf("interpreting %d statements", len(script.Program))
	if err := engine.NewInterpreter().Interpret(ctx, script); err != nil {
		if lox.IsRuntimeError(err) {
			return &exitError{code: exitSoftware, err: err, reported: true}
		}
		return &exitError{code: exitSoftware, err: err}
	}
	return nil
}

func readScriptArg(command string, args []string) (string, string, error) {
	if len(args) != 1 {
		return "", "", usageErrorf("Usage: lox %s [flags] <script>", command)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return "", "", fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return path, string(input), nil
}

func usageError() error {
	printUsage()
	return usageErrorf("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run <script>            run a script (also: lox <script>.lox)")
	fmt.Fprintln(os.Stderr, "  check <script>          report static errors without running")
	fmt.Fprintln(os.Stderr, "  ast <script>            print the parsed syntax tree")
	fmt.Fprintln(os.Stderr, "  fmt <path>...           normalize whitespace in .lox files")
	fmt.Fprintln(os.Stderr, "  repl                    start an interactive session (default)")
	fmt.Fprintln(os.Stderr, "  test <path>...          run conformance scripts or YAML suites")
	fmt.Fprintln(os.Stderr, "  index -o <file> <dir>   write a named index of .lox scripts")
	fmt.Fprintln(os.Stderr, "  lsp                     serve the language server over stdio")
	fmt.Fprintln(os.Stderr, "Common flags:")
	fmt.Fprintln(os.Stderr, "  -config <file>   configuration file (default: nearest lox.toml)")
	fmt.Fprintln(os.Stderr, "  -v <n>           log verbosity")
	fmt.Fprintln(os.Stderr, "  -log <file>      log file")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
