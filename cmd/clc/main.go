// Command clc implements §6's CLI contract: read a source file, run the
// lex -> parse -> lower pipeline over it, and write the two IR modules the
// lowerer produces. Structured levelled logging via -debug is grounded in
// qjcg-driving/main.go's logutils.LevelFilter idiom; byte-size reporting
// and TTY-aware output follow the teacher's cmd/funxy/main.go, which reads
// a source file, runs its own pipeline, and reports the bytes written.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/logutils"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/clc/internal/config"
	"github.com/funvibe/clc/internal/lexer"
	"github.com/funvibe/clc/internal/lowerer"
	"github.com/funvibe/clc/internal/parser"
	"github.com/funvibe/clc/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("clc", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "print debugging output")
	outDir := fs.String("o", "", "output directory (default: alongside the source file)")
	listOps := fs.Bool("ops", false, "list every operator clc recognizes and exit")
	opLookup := fs.String("op", "", "print documentation for a single operator symbol and exit")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: clc [-debug] [-o dir] [-ops] [-op symbol] <source.c>")
	}
	if err := fs.Parse(args); err != nil {
		return config.ExitUsageError
	}

	if *listOps {
		printOperators()
		return config.ExitOK
	}
	if *opLookup != "" {
		return printOperator(*opLookup)
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: logutils.LogLevel("INFO"),
		Writer:   os.Stderr,
	}
	if *debug {
		filter.MinLevel = logutils.LogLevel("DEBUG")
	}
	log.SetOutput(filter)
	log.SetFlags(0)

	if fs.NArg() != 1 {
		fs.Usage()
		return config.ExitUsageError
	}
	sourcePath := fs.Arg(0)

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clc: %s\n", err)
		return config.ExitIOError
	}

	dir := *outDir
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}

	// §6: the verbatim source is mirrored to a debug sidecar before
	// lexing even starts, so a failed compile still leaves behind exactly
	// what was fed to the pipeline.
	sidecarPath := filepath.Join(dir, config.SidecarFileName)
	if err := os.WriteFile(sidecarPath, source, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "clc: writing %s: %s\n", sidecarPath, err)
		return config.ExitIOError
	}
	log.Printf("[DEBUG] wrote sidecar %s", sidecarPath)

	ctx := pipeline.NewContext(sourcePath, string(source))
	p := pipeline.New(lexer.Processor{}, parser.Processor{}, lowerer.Processor{})
	result := p.Run(ctx)
	if result.Err != nil {
		printDiagnostic(result.Err.Error())
		return config.ExitCompileFail
	}

	compiledPath := filepath.Join(dir, config.CompiledIRFileName)
	builtinPath := filepath.Join(dir, config.BuiltinIRFileName)

	if err := os.WriteFile(compiledPath, []byte(result.CompiledIR), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "clc: writing %s: %s\n", compiledPath, err)
		return config.ExitIOError
	}
	if err := os.WriteFile(builtinPath, []byte(result.BuiltinIR), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "clc: writing %s: %s\n", builtinPath, err)
		return config.ExitIOError
	}

	report(sourcePath, compiledPath, len(result.CompiledIR))
	report(sourcePath, builtinPath, len(result.BuiltinIR))
	return config.ExitOK
}

// printOperators dumps config.AllOperators as a fixed-width table, serving
// as the CLI's -ops help output.
func printOperators() {
	for _, op := range config.AllOperators {
		fmt.Printf("%-4s %-18s %-10s %s\n", op.Symbol, op.Signature, op.Category, op.Description)
	}
}

// printOperator backs -op, looking up a single symbol via config.GetOperator.
func printOperator(symbol string) int {
	op := config.GetOperator(symbol)
	if op == nil {
		fmt.Fprintf(os.Stderr, "clc: unknown operator %q\n", symbol)
		return config.ExitUsageError
	}
	fmt.Printf("%-4s %-18s %-10s %s\n", op.Symbol, op.Signature, op.Category, op.Description)
	return config.ExitOK
}

// report mirrors the teacher's "Compiled X -> Y" + byte-size print, using
// humanize for a reader-friendly size.
func report(src, out string, n int) {
	fmt.Printf("Compiled %s -> %s (%s)\n", src, out, humanize.Bytes(uint64(n)))
}

// printDiagnostic writes a fatal diagnostic to stderr, highlighting it red
// when stderr is a terminal (isatty.IsTerminal) and leaving it plain for
// piped/redirected output, which would otherwise carry raw escape codes.
func printDiagnostic(msg string) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}
