// Command cthulhuc drives the compiler core's pipeline end to end: SSA
// lowering, the constant-fold/DCE fixed point, and C89 emission, against
// either the built-in demo modules or a `.cthulhu.yaml` build manifest.
// No front-end parser lives here (spec §9 names front-end parsing and CLI
// argument parsing as an external collaborator's concern) - this binary is
// only the driver's command-line face.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/cthulhu-go/cthulhu/internal/diagnostics"
	"github.com/cthulhu-go/cthulhu/internal/driver"
	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/vfs"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "build" {
		usage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outDir := fs.String("out", ".", "output directory for include/ and src/ trees")
	dce := fs.Bool("dce", true, "run dead-code elimination after constant folding")
	foldIter := fs.Int("fold-iterations", 0, "max constant-fold/DCE iterations (0 = symbol-count default)")
	manifestPath := fs.String("manifest", "", "path to a .cthulhu.yaml build manifest (demo modules run if unset)")
	verbose := fs.Bool("verbose", false, "print every diagnostic, not just the summary")
	fs.Parse(os.Args[2:])

	if *manifestPath != "" {
		m, err := driver.LoadManifest(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
			os.Exit(1)
		}
		// Building real modules from a manifest still needs a front end to
		// turn each listed file into HLIR; until one exists, a manifest
		// only names what *would* be built, so report its shape and fall
		// back to the demo modules for this invocation.
		fmt.Printf("%s manifest names %d module(s); no front end is wired yet, running the built-in demo instead\n",
			yellow("note:"), len(m.Modules))
	}

	mods := demoModules()

	sink := diagnostics.NewCollectingSink()
	_, err := driver.Build(mods, driver.Options{
		OutDir:         *outDir,
		DCE:            *dce,
		FoldIterations: *foldIter,
		Verbose:        *verbose,
	}, vfs.OS{}, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}

	printSummary(mods, sink, *verbose)
	if sink.HasFatal() {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "%s\n\n", bold("cthulhuc - the Cthulhu compiler core driver"))
	fmt.Fprintf(os.Stderr, "usage: cthulhuc build [-out DIR] [-dce] [-fold-iterations N] [-manifest FILE] [-verbose]\n")
}

func printSummary(mods []*hlir.Module, sink *diagnostics.CollectingSink, verbose bool) {
	if verbose {
		for _, r := range sink.Reports {
			fmt.Println(formatReport(r))
		}
	}

	counts := sink.CountByLevel()
	fmt.Printf("\n%s %d module(s) compiled\n", cyan("summary:"), len(mods))
	if n := counts[diagnostics.Fatal] + counts[diagnostics.Sorry]; n > 0 {
		fmt.Printf("  %s %d fatal\n", red("x"), n)
	}
	if n := counts[diagnostics.Warn]; n > 0 {
		fmt.Printf("  %s %d warning(s)\n", yellow("!"), n)
	}
	if n := counts[diagnostics.Info]; n > 0 {
		fmt.Printf("  %s %d note(s)\n", cyan("i"), n)
	}
	if !sink.HasFatal() {
		fmt.Printf("  %s build succeeded\n", green("✓"))
	}
}

func formatReport(r diagnostics.Report) string {
	switch r.Level {
	case diagnostics.Fatal, diagnostics.Sorry, diagnostics.Internal:
		return fmt.Sprintf("%s [%s] %s: %s", red(r.Level.String()), r.Phase, r.Code, r.Message)
	case diagnostics.Warn:
		return fmt.Sprintf("%s [%s] %s: %s", yellow(r.Level.String()), r.Phase, r.Code, r.Message)
	default:
		return fmt.Sprintf("%s [%s] %s: %s", cyan(r.Level.String()), r.Phase, r.Code, r.Message)
	}
}
