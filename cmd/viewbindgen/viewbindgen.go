// Command viewbindgen generates view bindings for the packages named on its
// command line. It is typically invoked from a go:generate directive:
//
//    //go:generate viewbindgen github.com/foo/bar
//
// Diagnostics and a trace line for each processing round are printed to
// stderr. The exit code is 1 if the packages could
// not be loaded. Bindings that could not be generated only affect the exit
// code when -strict is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "github.com/zakli/viewbind/binding"
	"github.com/zakli/viewbind/processor"
)

func main() {
	test := flag.Bool("include_tests", false, "Indicates whether to process test files.")
	outputDir := flag.String("output_dir", "", "Indicates the root directory where generated files are written."+
		" Files are created under this directory, organized by package path. If blank, files are written to the"+
		" source directory of each package.")
	strict := flag.Bool("strict", false, "Indicates whether error diagnostics cause a non-zero exit code.")
	verbose := flag.Bool("v", false, "Indicates whether to print informational diagnostics and the names of generated files.")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Must supply at least one package name")
		os.Exit(1)
	}

	if *outputDir != "" {
		_, err := os.Stat(*outputDir)
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Specified directory, %s, does not exist!\n", *outputDir)
			os.Exit(1)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to check specified directory, %s: %s!\n", *outputDir, err.Error())
			os.Exit(1)
		}
	}

	cfg := newConfig(flag.Args(), *test, *outputDir, os.Stderr)
	report, err := cfg.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	os.Exit(exitCode(report, *strict, *verbose, os.Stderr))
}

// newConfig returns the configuration for processing the given packages. Trace
// output goes to w.
func newConfig(pkgs []string, test bool, outputDir string, w io.Writer) processor.Config {
	importPkgs := map[string]bool{}
	for _, pkg := range pkgs {
		importPkgs[pkg] = test
	}
	return processor.Config{
		ImportPkgs:    importPkgs,
		Processors:    processor.AllRegisteredProcessors(),
		OutputFactory: processor.DefaultOutputFactory(outputDir),
		Logger:        log.New(w, "viewbindgen: ", 0),
	}
}

// exitCode prints the report's diagnostics to w and returns the exit code for
// it.
func exitCode(report *processor.Report, strict, verbose bool, w io.Writer) int {
	sev := processor.SeverityWarning
	if verbose {
		sev = processor.SeverityInfo
	}
	for _, d := range report.Diagnostics(sev) {
		fmt.Fprintln(w, d)
	}
	if verbose {
		for _, out := range report.Outputs() {
			fmt.Fprintf(w, "wrote %s\n", out)
		}
	}
	if strict && report.HasErrors() {
		return 1
	}
	return 0
}
